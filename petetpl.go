// Package petetpl is the engine facade: it ties the build phase (package
// parser) and render phase (package render) together behind the two
// operations external callers need, mirroring the thin top-level
// Engine/Instance wrapper cue/cue.go keeps over its own internal
// compiler/evaluator split.
package petetpl

import (
	"strings"

	"github.com/kr/pretty"

	"github.com/pete-tpl/pete-core/ast"
	"github.com/pete-tpl/pete-core/parser"
	"github.com/pete-tpl/pete-core/render"
	"github.com/pete-tpl/pete-core/value"
)

// Engine is a stateless template processor: it holds no configuration of its
// own today, but exists (rather than exposing Build/Render as bare package
// functions) so configuration knobs — a function registry, autoescape mode —
// have somewhere to live once §9's open questions are settled.
type Engine struct{}

// New returns a ready-to-use Engine.
func New() *Engine {
	return &Engine{}
}

// Render builds template and immediately renders it against vars, per §5's
// "Render(template, vars) -> Result<String, Error>" contract. Each call is
// independent: there is no cross-call cache of the built tree.
func (e *Engine) Render(template string, vars value.Store) (string, error) {
	root, err := parser.Build(template)
	if err != nil {
		return "", err
	}
	return render.Render(template, root, vars)
}

// DebugPrintStructure builds template and returns an indented dump of its
// node tree, for diagnosing build-phase behaviour without rendering it.
func (e *Engine) DebugPrintStructure(template string) (string, error) {
	root, err := parser.Build(template)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	dumpNode(&sb, root, 0)
	return sb.String(), nil
}

func dumpNode(sb *strings.Builder, n ast.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch node := n.(type) {
	case *ast.Container:
		sb.WriteString(indent)
		sb.WriteString(pretty.Sprintf("Container[%d..%d]\n", node.Pos(), node.End()))
		for _, child := range node.Children {
			dumpNode(sb, child, depth+1)
		}
	case *ast.Static:
		sb.WriteString(indent)
		sb.WriteString(pretty.Sprintf("Static[%d..%d] %q\n", node.Pos(), node.End(), node.Content))
	case *ast.Comment:
		sb.WriteString(indent)
		sb.WriteString(pretty.Sprintf("Comment[%d..%d] %q\n", node.Pos(), node.End(), node.Text))
	case *ast.Expression:
		sb.WriteString(indent)
		sb.WriteString(pretty.Sprintf("Expression[%d..%d]\n", node.Pos(), node.End()))
	case *ast.If:
		sb.WriteString(indent)
		sb.WriteString(pretty.Sprintf("If[%d..%d] (%d branches)\n", node.Pos(), node.End(), len(node.Branches)))
		for i, branch := range node.Branches {
			sb.WriteString(indent)
			sb.WriteString(pretty.Sprintf("  branch %d:\n", i))
			dumpNode(sb, branch, depth+2)
		}
	default:
		sb.WriteString(indent)
		sb.WriteString(pretty.Sprintf("%T[%d..%d]\n", n, n.Pos(), n.End()))
	}
}
