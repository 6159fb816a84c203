// Package parser implements the template build phase: the top-level loop
// over node recognisers, the explicit nesting stack, and continuation
// dispatch for the if/elseif/else/endif family (§4.4, §4.6).
//
// The loop shape — a single current-parent pointer, an explicit stack
// pushed on nesting and popped on a terminal continuation, an
// infinite-loop guard comparing remainder length across iterations — is
// carried over directly from original_source/src/engine.rs's Engine::render
// build loop and original_source/src/nodes/tags/condition.rs's
// ConditionNode, translated from recursion-free Rust ownership into Go
// interface values.
package parser

import (
	"strings"

	"github.com/pete-tpl/pete-core/ast"
	"github.com/pete-tpl/pete-core/exprparser"
	"github.com/pete-tpl/pete-core/scan"
	"github.com/pete-tpl/pete-core/token"
	"github.com/pete-tpl/pete-core/tplerr"
	"github.com/pete-tpl/pete-core/value"
)

// Build parses template into a frozen node tree rooted at a Container, per
// §4.6. It returns a *tplerr.Error on any structural or expression parse
// failure.
func Build(template string) (*ast.Container, error) {
	root := ast.NewContainer(0)
	var stack []ast.Node
	var current ast.Node = root

	cursor := token.Pos(0)
	remainLen := len(template)
	prevRemainLen := remainLen + 1

	for remainLen > 0 {
		if remainLen >= prevRemainLen {
			return nil, tplerr.New(template, cursor, tplerr.InfiniteLoopDetected, "the build loop made no progress")
		}
		prevRemainLen = remainLen

		ctx := &buildContext{Template: template, Remain: template[cursor:], Offset: cursor}

		var end int
		var nestingStarted bool
		var err error

		if ifNode, ok := current.(*ast.If); ok && isContinuationTag(ctx) {
			end, nestingStarted, err = continueIf(ifNode, ctx)
			if err != nil {
				return nil, err
			}
			if !nestingStarted {
				if len(stack) == 0 {
					return nil, tplerr.New(template, ctx.Offset, tplerr.UnclosedBlock, "unmatched endif")
				}
				parent := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				parent.AddChild(current)
				current = parent
			}
		} else {
			var node ast.Node
			node, end, nestingStarted, err = recognizeAndBuild(ctx)
			if err != nil {
				return nil, err
			}
			if nestingStarted {
				stack = append(stack, current)
				current = node
			} else {
				current.AddChild(node)
			}
		}

		cursor += token.Pos(end) + 1
		remainLen = len(template) - int(cursor)
	}

	if len(stack) != 0 {
		return nil, tplerr.New(template, cursor, tplerr.UnclosedBlock, "unclosed block: missing endif")
	}
	return root, nil
}

// buildContext mirrors original_source's BuildContext: the full template
// (for error messages), the unparsed remainder, and that remainder's
// absolute starting offset.
type buildContext struct {
	Template string
	Remain   string
	Offset   token.Pos
}

func (ctx *buildContext) errf(cause *tplerr.Cause, format string, args ...interface{}) error {
	return tplerr.Newf(ctx.Template, ctx.Offset, cause, format, args...)
}

// recognizeAndBuild tries the node recognisers in §4.6's fixed order —
// Comment, Expression, If (new-node case only), Static — and builds the
// first match.
func recognizeAndBuild(ctx *buildContext) (ast.Node, int, bool, error) {
	switch {
	case strings.HasPrefix(ctx.Remain, scan.CommentStart):
		node, end, err := buildComment(ctx)
		return node, end, false, err
	case strings.HasPrefix(ctx.Remain, scan.ExpressionStart):
		node, end, err := buildExpression(ctx)
		return node, end, false, err
	case strings.HasPrefix(ctx.Remain, scan.TagStart) && tagKeyword(ctx.Remain) == "if":
		node, end, err := buildIf(ctx)
		return node, end, true, err
	case !scan.StartsDynamic(ctx.Remain):
		node, end, err := buildStatic(ctx)
		return node, end, false, err
	default:
		return nil, 0, false, ctx.errf(tplerr.CannotRecognizeNode, "cannot recognize a node")
	}
}

// tagKeyword extracts the keyword of a "{%...%}" tag body, e.g.
// tagKeyword("{% elseif 1 %}") == "elseif".
func tagKeyword(remain string) string {
	kw, _ := scan.Keyword(strings.TrimPrefix(remain, scan.TagStart))
	return kw
}

func isContinuationTag(ctx *buildContext) bool {
	if !strings.HasPrefix(ctx.Remain, scan.TagStart) {
		return false
	}
	switch tagKeyword(ctx.Remain) {
	case "elseif", "else", "endif":
		return true
	}
	return false
}

// --- Static -----------------------------------------------------------

func buildStatic(ctx *buildContext) (*ast.Static, int, error) {
	end := scan.NextDynamicMarker(ctx.Remain)
	if end < 0 {
		end = len(ctx.Remain)
	}
	content := ctx.Remain[:end]
	node := &ast.Static{
		Base: ast.Base{
			StartOffset: ctx.Offset,
			EndOffset:   ctx.Offset + token.Pos(end) - 1,
		},
		Content: content,
	}
	return node, end - 1, nil
}

// --- Comment ------------------------------------------------------------

func buildComment(ctx *buildContext) (*ast.Comment, int, error) {
	leading := scan.HasLeadingTrim(ctx.Remain, len(scan.CommentStart))
	closeEnd, ok := scan.FindClosing(ctx.Remain, scan.CommentEnd)
	if !ok {
		return nil, 0, ctx.errf(tplerr.CommentNotClosed, "comment is not closed")
	}
	markerStart := closeEnd - len(scan.CommentEnd) + 1
	trailing := scan.HasTrailingTrim(ctx.Remain, markerStart)
	node := &ast.Comment{
		Base: ast.Base{
			StartOffset:          ctx.Offset,
			EndOffset:             ctx.Offset + token.Pos(closeEnd),
			NolinebreakBeginning: leading,
			NolinebreakEnd:       trailing,
		},
		Text: ctx.Remain[len(scan.CommentStart):markerStart],
	}
	return node, closeEnd, nil
}

// --- Expression -----------------------------------------------------------

func buildExpression(ctx *buildContext) (*ast.Expression, int, error) {
	leading := scan.HasLeadingTrim(ctx.Remain, len(scan.ExpressionStart))
	closeEnd, ok := scan.FindClosing(ctx.Remain, scan.ExpressionEnd)
	if !ok {
		return nil, 0, ctx.errf(tplerr.ExpressionNotClosed, "expression is not closed")
	}
	markerStart := closeEnd - len(scan.ExpressionEnd) + 1
	trailing := scan.HasTrailingTrim(ctx.Remain, markerStart)

	innerEnd := markerStart
	if trailing {
		innerEnd--
	}
	inner := ctx.Remain[len(scan.ExpressionStart):innerEnd]

	expr, err := exprparser.Parse(ctx.Template, inner, ctx.Offset+token.Pos(len(scan.ExpressionStart)))
	if err != nil {
		return nil, 0, err
	}

	node := &ast.Expression{
		Base: ast.Base{
			StartOffset:          ctx.Offset,
			EndOffset:             ctx.Offset + token.Pos(closeEnd),
			NolinebreakBeginning: leading,
			NolinebreakEnd:       trailing,
		},
		Expr: expr,
	}
	return node, closeEnd, nil
}

// --- If -------------------------------------------------------------------

// parseTagSlot locates a tag's closing "%}" and returns the expression text
// between the keyword-and-remainder position given by afterKeyword and the
// closing marker, along with the marker's end offset (relative to
// ctx.Remain) and whether the tag closed with a trim marker.
func parseTagSlot(ctx *buildContext, afterKeyword string) (exprSrc string, closeEnd int, trailingTrim bool, err error) {
	closeEnd, ok := scan.FindClosing(ctx.Remain, scan.TagEnd)
	if !ok {
		return "", 0, false, ctx.errf(tplerr.TagNotClosed, "cannot find closing tag")
	}
	markerStart := closeEnd - len(scan.TagEnd) + 1
	trailingTrim = scan.HasTrailingTrim(ctx.Remain, markerStart)

	// afterKeyword is a suffix of ctx.Remain; its own start offset within
	// ctx.Remain is len(ctx.Remain) - len(afterKeyword).
	exprStart := len(ctx.Remain) - len(afterKeyword)
	exprEnd := markerStart
	if trailingTrim {
		exprEnd--
	}
	if exprEnd < exprStart {
		exprEnd = exprStart
	}
	return ctx.Remain[exprStart:exprEnd], closeEnd, trailingTrim, nil
}

// buildIf handles the "if" keyword when it introduces a brand-new If node
// (§4.4.4's "if" row).
func buildIf(ctx *buildContext) (*ast.If, int, error) {
	leading := scan.HasLeadingTrim(ctx.Remain, len(scan.TagStart))
	_, rest := scan.Keyword(strings.TrimPrefix(ctx.Remain, scan.TagStart))

	exprSrc, closeEnd, openTrailingTrim, err := parseTagSlot(ctx, rest)
	if err != nil {
		return nil, 0, err
	}
	guard, err := exprparser.Parse(ctx.Template, exprSrc, ctx.Offset+token.Pos(len(ctx.Remain)-len(rest)))
	if err != nil {
		return nil, 0, err
	}

	node := &ast.If{
		Base: ast.Base{
			StartOffset:          ctx.Offset,
			NolinebreakBeginning: leading,
		},
	}
	branchStart := ctx.Offset + token.Pos(closeEnd) + 1
	node.OpenBranch(guard, branchStart, openTrailingTrim)
	return node, closeEnd, nil
}

// continueIf handles the elseif/else/endif keywords on an already-open If
// node (§4.4.4's remaining rows, and the continuation-dispatch step of
// §4.6). It returns the relative end offset of the tag and whether the
// node remains open (true for elseif/else, false for endif).
func continueIf(node *ast.If, ctx *buildContext) (int, bool, error) {
	leading := scan.HasLeadingTrim(ctx.Remain, len(scan.TagStart))
	keyword, rest := scan.Keyword(strings.TrimPrefix(ctx.Remain, scan.TagStart))
	switch keyword {
	case "elseif":
		exprSrc, closeEnd, openTrailingTrim, err := parseTagSlot(ctx, rest)
		if err != nil {
			return 0, false, err
		}
		guard, err := exprparser.Parse(ctx.Template, exprSrc, ctx.Offset+token.Pos(len(ctx.Remain)-len(rest)))
		if err != nil {
			return 0, false, err
		}
		node.CloseLastBranch(leading)
		node.OpenBranch(guard, ctx.Offset+token.Pos(closeEnd)+1, openTrailingTrim)
		return closeEnd, true, nil

	case "else":
		exprSrc, closeEnd, openTrailingTrim, err := parseTagSlot(ctx, rest)
		if err != nil {
			return 0, false, err
		}
		if strings.TrimSpace(exprSrc) != "" {
			return 0, false, ctx.errf(tplerr.UnexpectedCharsInElse, "unexpected characters in else block: %s", exprSrc)
		}
		node.CloseLastBranch(leading)
		node.OpenBranch(&ast.Literal{ValuePos: ctx.Offset, Value: value.Bool(true)}, ctx.Offset+token.Pos(closeEnd)+1, openTrailingTrim)
		return closeEnd, true, nil

	case "endif":
		closeEnd, ok := scan.FindClosing(ctx.Remain, scan.TagEnd)
		if !ok {
			return 0, false, ctx.errf(tplerr.TagNotClosed, "cannot find closing tag")
		}
		markerStart := closeEnd - len(scan.TagEnd) + 1
		node.CloseLastBranch(leading)
		node.EndOffset = ctx.Offset + token.Pos(closeEnd)
		node.NolinebreakEnd = scan.HasTrailingTrim(ctx.Remain, markerStart)
		return closeEnd, false, nil

	default:
		return 0, false, ctx.errf(tplerr.UnknownKeyword, "unknown keyword %q in if block; expected if|elseif|else|endif", keyword)
	}
}
