package parser_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"

	"github.com/pete-tpl/pete-core/ast"
	"github.com/pete-tpl/pete-core/parser"
	"github.com/pete-tpl/pete-core/tplerr"
)

// nodeShape is a comparable, exported-fields-only projection of a node
// subtree's kind structure — enough to diff with cmp.Diff without reaching
// into ast's unexported fields, the way cue/ast/ident_test.go diffs parsed
// trees against a literal expected shape.
type nodeShape struct {
	Kind     string
	Children []nodeShape
}

func shapeOf(n ast.Node) nodeShape {
	switch node := n.(type) {
	case *ast.Container:
		return nodeShape{Kind: "Container", Children: shapesOf(node.Children)}
	case *ast.Static:
		return nodeShape{Kind: "Static"}
	case *ast.Comment:
		return nodeShape{Kind: "Comment"}
	case *ast.Expression:
		return nodeShape{Kind: "Expression"}
	case *ast.If:
		var children []nodeShape
		for _, branch := range node.Branches {
			children = append(children, shapeOf(branch))
		}
		return nodeShape{Kind: "If", Children: children}
	default:
		return nodeShape{Kind: fmt.Sprintf("%T", n)}
	}
}

func shapesOf(nodes []ast.Node) []nodeShape {
	var shapes []nodeShape
	for _, n := range nodes {
		shapes = append(shapes, shapeOf(n))
	}
	return shapes
}

func TestBuildStaticOnly(t *testing.T) {
	root, err := parser.Build("Hello, World!")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(root.Children), 1))
	static, ok := root.Children[0].(*ast.Static)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(static.Content, "Hello, World!"))
}

func TestBuildCommentCarriesTrimFlags(t *testing.T) {
	root, err := parser.Build("a{#- x -#}b")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(root.Children), 3))
	comment, ok := root.Children[1].(*ast.Comment)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsTrue(comment.HasNolinebreakBeginning()))
	qt.Assert(t, qt.IsTrue(comment.HasNolinebreakEnd()))
}

func TestBuildUnclosedCommentIsAnError(t *testing.T) {
	_, err := parser.Build("a{# never closed")
	qt.Assert(t, qt.IsTrue(errors.Is(err, tplerr.CommentNotClosed)))
}

func TestBuildIfElseNestedIf(t *testing.T) {
	root, err := parser.Build(`{% if myvar - 2 %}Hidden{% else %}TEST{% if 1 %}!!!{% endif %} Displayed{% endif %}`)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(root.Children), 1))
	ifNode, ok := root.Children[0].(*ast.If)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(len(ifNode.Branches), 2))
	qt.Assert(t, qt.Equals(len(ifNode.Guards), 2))

	elseBranch := ifNode.Branches[1]
	// TEST, a nested If, " Displayed"
	qt.Assert(t, qt.Equals(len(elseBranch.Children), 3))
	_, ok = elseBranch.Children[1].(*ast.If)
	qt.Assert(t, qt.IsTrue(ok))
}

func TestBuildIfElseNestedIfTreeShape(t *testing.T) {
	root, err := parser.Build(`{% if myvar - 2 %}Hidden{% else %}TEST{% if 1 %}!!!{% endif %} Displayed{% endif %}`)
	qt.Assert(t, qt.IsNil(err))

	want := nodeShape{
		Kind: "Container",
		Children: []nodeShape{
			{
				Kind: "If",
				Children: []nodeShape{
					{Kind: "Container", Children: []nodeShape{{Kind: "Static"}}},
					{Kind: "Container", Children: []nodeShape{
						{Kind: "Static"},
						{Kind: "If", Children: []nodeShape{
							{Kind: "Container", Children: []nodeShape{{Kind: "Static"}}},
						}},
						{Kind: "Static"},
					}},
				},
			},
		},
	}

	if diff := cmp.Diff(want, shapeOf(root)); diff != "" {
		t.Fatalf("tree shape mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildIfBranchBoundaryTrimFlags(t *testing.T) {
	root, err := parser.Build("A{% if 1 -%}B{%- elseif 2 %}C{%- else -%}D{% endif %}")
	qt.Assert(t, qt.IsNil(err))
	ifNode, ok := root.Children[1].(*ast.If)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(len(ifNode.Branches), 3))

	// branch 0 ("if ... -%}"): opened with trailing trim, closed by an
	// elseif whose own leading trim ("{%-") is set.
	qt.Assert(t, qt.IsTrue(ifNode.BranchOpenTrailingTrim[0]))
	qt.Assert(t, qt.IsTrue(ifNode.BranchCloseLeadingTrim[0]))

	// branch 1 ("elseif 2 %}", no trailing trim): opened without trailing
	// trim, closed by an else whose own leading trim ("{%-") is set.
	qt.Assert(t, qt.IsFalse(ifNode.BranchOpenTrailingTrim[1]))
	qt.Assert(t, qt.IsTrue(ifNode.BranchCloseLeadingTrim[1]))

	// branch 2 ("else -%}"): opened with trailing trim, closed by endif
	// with no leading trim.
	qt.Assert(t, qt.IsTrue(ifNode.BranchOpenTrailingTrim[2]))
	qt.Assert(t, qt.IsFalse(ifNode.BranchCloseLeadingTrim[2]))
}

func TestBuildUnknownTagIsAnError(t *testing.T) {
	_, err := parser.Build("Hello{% unknown %}x{% endunknown %}")
	qt.Assert(t, qt.IsTrue(errors.Is(err, tplerr.CannotRecognizeNode)))
}

func TestBuildUnclosedIfIsAnError(t *testing.T) {
	_, err := parser.Build("{% if 1 %}no endif")
	qt.Assert(t, qt.IsTrue(errors.Is(err, tplerr.UnclosedBlock)))
}

func TestBuildStrayElseifIsAnError(t *testing.T) {
	_, err := parser.Build("{% elseif 1 %}x{% endif %}")
	qt.Assert(t, qt.IsTrue(errors.Is(err, tplerr.CannotRecognizeNode)))
}

func TestBuildElseWithExtraCharsIsAnError(t *testing.T) {
	_, err := parser.Build("{% if 1 %}a{% else garbage %}b{% endif %}")
	qt.Assert(t, qt.IsTrue(errors.Is(err, tplerr.UnexpectedCharsInElse)))
}

func TestBuildNodeOffsetsAreOrderedAndInBounds(t *testing.T) {
	template := "Hello, {{ user }}! {# note #}"
	root, err := parser.Build(template)
	qt.Assert(t, qt.IsNil(err))
	var prevEnd ast.Node
	for _, child := range root.Children {
		qt.Assert(t, qt.IsTrue(int(child.Pos()) <= int(child.End())))
		qt.Assert(t, qt.IsTrue(int(child.End()) < len(template)))
		if prevEnd != nil {
			qt.Assert(t, qt.IsTrue(child.Pos() > prevEnd.End()))
		}
		prevEnd = child
	}
}
