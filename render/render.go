// Package render implements the render walker (§4.5): a recursive tree
// walk that evaluates expressions against a variable store, applies the
// Twig-style "nolinebreak" whitespace-control rules, and emits the final
// string. Grounded in original_source/src/nodes/container.rs's
// accumulate-children-in-order, abort-on-first-error loop, generalized with
// the neighbour-trim bookkeeping §4.5 adds on top of it.
package render

import (
	"errors"
	"fmt"

	"github.com/pete-tpl/pete-core/ast"
	"github.com/pete-tpl/pete-core/tplerr"
	"github.com/pete-tpl/pete-core/value"
)

// Render walks root, evaluating expressions against vars, and returns the
// rendered output. template is needed only to annotate evaluation errors
// with an accurate source position.
func Render(template string, root *ast.Container, vars value.Store) (string, error) {
	ctx := &ast.EvalContext{Vars: vars}
	return renderContainer(template, ctx, root, false)
}

// renderContainer implements §4.5's "Container render" rule. initialTrim
// seeds previousHasNolinebreakEnd for this container's first child — true
// when this container is an If branch whose opening tag (if/elseif/else)
// itself closed with a trailing trim marker, since that tag sits outside
// this container's own child list and so cannot be seen any other way.
//
// Each boundary between two children is trimmed by exactly one side: a
// static node strips its own trailing '\n' when the next node's tag opened
// with a leading trim marker, and a static node strips its own leading '\n'
// when the previous node's tag closed with a trailing trim marker. These are
// the same rule seen from its two neighbours, not two independent trims —
// applying both would strip two newlines from a single marker.
func renderContainer(template string, ctx *ast.EvalContext, c *ast.Container, initialTrim bool) (string, error) {
	var buf []byte
	previousHasNolinebreakEnd := initialTrim

	for i, child := range c.Children {
		nextHasNolinebreakBeginning := i+1 < len(c.Children) && c.Children[i+1].HasNolinebreakBeginning()

		out, err := renderNode(template, ctx, child, previousHasNolinebreakEnd)
		if err != nil {
			return "", err
		}

		if child.IsStatic() && nextHasNolinebreakBeginning {
			out = string(stripTrailingNewline([]byte(out)))
		}

		buf = append(buf, out...)
		previousHasNolinebreakEnd = child.HasNolinebreakEnd()
	}
	return string(buf), nil
}

// renderNode dispatches a single node per its kind. previousHasNolinebreakEnd
// is consulted by Static, per §4.5's "Static render" rule, and is passed on
// to a nested Container as its initial trim.
func renderNode(template string, ctx *ast.EvalContext, n ast.Node, previousHasNolinebreakEnd bool) (string, error) {
	switch node := n.(type) {
	case *ast.Static:
		content := node.Content
		if previousHasNolinebreakEnd {
			content = string(stripLeadingNewline([]byte(content)))
		}
		return content, nil

	case *ast.Comment:
		return "", nil

	case *ast.Expression:
		v, err := node.Expr.Evaluate(ctx)
		if err != nil {
			return "", tplerr.Newf(template, node.Expr.Pos(), evaluationCause(err), "failed to evaluate an expression: %v", err)
		}
		s, err := v.AsString()
		if err != nil {
			return "", tplerr.Newf(template, node.Pos(), tplerr.UnsupportedOperandTypes, "failed to render an expression: %v", err)
		}
		return s, nil

	case *ast.If:
		return renderIf(template, ctx, node)

	case *ast.Container:
		return renderContainer(template, ctx, node, previousHasNolinebreakEnd)

	default:
		return "", fmt.Errorf("render: unhandled node type %T", n)
	}
}

// renderIf implements §4.5's "If render" rule: scan guards in order and
// render the first truthy branch, or the empty string if none match.
func renderIf(template string, ctx *ast.EvalContext, n *ast.If) (string, error) {
	for i, guard := range n.Guards {
		v, err := guard.Evaluate(ctx)
		if err != nil {
			return "", tplerr.Newf(template, guard.Pos(), evaluationCause(err), "failed to evaluate an expression: %v", err)
		}
		truthy, err := v.Truthy()
		if err != nil {
			return "", tplerr.Newf(template, guard.Pos(), tplerr.UnsupportedOperandTypes, "failed to evaluate a guard: %v", err)
		}
		if truthy {
			out, err := renderContainer(template, ctx, n.Branches[i], n.BranchOpenTrailingTrim[i])
			if err != nil {
				return "", err
			}
			if n.BranchCloseLeadingTrim[i] {
				out = string(stripTrailingNewline([]byte(out)))
			}
			return out, nil
		}
	}
	return "", nil
}

// evaluationCause recovers the §7 evaluation-error Cause an Expr.Evaluate
// error actually carries — VarRef/BinOp wrap one of the four evaluation
// Causes directly (see ast/expr.go), never a *tplerr.Error — so callers
// downstream of Render can still discriminate them with errors.Is once this
// package re-wraps the error with a source position.
func evaluationCause(err error) *tplerr.Cause {
	switch {
	case errors.Is(err, tplerr.VariableNotFound):
		return tplerr.VariableNotFound
	case errors.Is(err, tplerr.OperandMissing):
		return tplerr.OperandMissing
	case errors.Is(err, tplerr.ModuloConstraint):
		return tplerr.ModuloConstraint
	default:
		return tplerr.UnsupportedOperandTypes
	}
}

// stripTrailingNewline removes a single trailing '\n' from buf, if present —
// the whitespace-control rule's "at most one \n is stripped per marker".
func stripTrailingNewline(buf []byte) []byte {
	if len(buf) > 0 && buf[len(buf)-1] == '\n' {
		return buf[:len(buf)-1]
	}
	return buf
}

func stripLeadingNewline(buf []byte) []byte {
	if len(buf) > 0 && buf[0] == '\n' {
		return buf[1:]
	}
	return buf
}
