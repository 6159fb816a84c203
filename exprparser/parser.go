// Package exprparser implements §4.3's expression grammar: a left-to-right,
// equal-precedence, one-slot-stack algorithm over literals, variable
// references, and arithmetic/logic operators. The sub-parser priority order
// and the infinite-loop guard are load-bearing parts of the contract and
// are reproduced exactly as specified, not as a conventional
// precedence-climbing parser — cue/parser.go's own expression parser *is*
// precedence-climbing, but §4.3/§9 explicitly mandate the flatter algorithm
// here, so only the "small typed sub-parsers tried in sequence" discipline
// is carried over from it, not its precedence logic.
package exprparser

import (
	"strings"

	"github.com/pete-tpl/pete-core/ast"
	"github.com/pete-tpl/pete-core/token"
	"github.com/pete-tpl/pete-core/tplerr"
	"github.com/pete-tpl/pete-core/value"
)

// Parse parses exprSrc (the raw text between a tag or expression slot's
// markers) into an expression tree. template is the full template string
// and base is exprSrc's absolute starting offset within it, both needed
// only so any resulting error carries an accurate source position.
func Parse(template string, exprSrc string, base token.Pos) (ast.Expr, error) {
	var stack []ast.Expr
	remaining := exprSrc
	offset := 0 // relative to exprSrc

	for {
		trimmed := strings.TrimLeft(remaining, " ")
		if trimmed == "" {
			break
		}
		spaces := len(remaining) - len(trimmed)
		pos := base + token.Pos(offset+spaces)

		node, consumed, err := parseOne(template, trimmed, pos)
		if err != nil {
			return nil, err
		}
		if consumed <= 0 {
			return nil, tplerr.New(template, pos, tplerr.InfiniteLoopDetected, "expression parser made no progress")
		}

		total := spaces + consumed
		remaining = remaining[total:]
		offset += total

		if !node.IsOperator() && len(stack) >= 2 {
			top := stack[len(stack)-1]
			op, ok := top.(*ast.BinOp)
			if !ok || !op.IsOperator() {
				return nil, tplerr.New(template, pos, tplerr.ExpressionSyntax, "operand encountered without a preceding operator")
			}
			operand := stack[len(stack)-2]
			op.Attach(operand, node)
			stack = stack[:len(stack)-2]
			stack = append(stack, op)
		} else {
			stack = append(stack, node)
		}
	}

	if len(stack) == 0 {
		return nil, tplerr.New(template, base, tplerr.ExpressionSyntax, "empty expression")
	}
	if len(stack) != 1 {
		return nil, tplerr.New(template, base, tplerr.ExpressionSyntax, "incomplete expression: operator missing an operand")
	}
	return stack[0], nil
}

// parseOne tries the sub-parsers in §4.3's fixed priority order and returns
// the first match. An error here always means a hard failure (e.g. an
// unterminated string literal), not merely "try the next sub-parser".
func parseOne(template, s string, pos token.Pos) (ast.Expr, int, error) {
	if node, n, ok := tryLogicOp(s, pos); ok {
		return node, n, nil
	}
	if node, n, ok := tryArithmeticOp(s, pos); ok {
		return node, n, nil
	}
	if node, n, ok := tryVariable(s, pos); ok {
		return node, n, nil
	}
	if node, n, ok := tryNumber(s, pos); ok {
		return node, n, nil
	}
	if node, n, ok, err := tryString(template, s, pos); err != nil {
		return nil, 0, err
	} else if ok {
		return node, n, nil
	}
	return nil, 0, tplerr.New(template, pos, tplerr.CannotParseFragment, "cannot parse expression fragment: "+snippet(s))
}

func snippet(s string) string {
	const max = 20
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

func tryLogicOp(s string, pos token.Pos) (ast.Expr, int, bool) {
	switch {
	case strings.HasPrefix(s, "&&"):
		return bareOp(ast.And, pos), 2, true
	case strings.HasPrefix(s, "||"):
		return bareOp(ast.Or, pos), 2, true
	}
	if n, ok := matchWord(s, "and"); ok {
		return bareOp(ast.And, pos), n, true
	}
	if n, ok := matchWord(s, "or"); ok {
		return bareOp(ast.Or, pos), n, true
	}
	return nil, 0, false
}

// matchWord matches word at the start of s, requiring that the following
// character (if any) is not alphabetic — so "and" matches in "and 1" but not
// in "andrew", per §4.3.
func matchWord(s, word string) (int, bool) {
	if !strings.HasPrefix(s, word) {
		return 0, false
	}
	if len(s) > len(word) && isAlpha(rune(s[len(word)])) {
		return 0, false
	}
	return len(word), true
}

func bareOp(kind ast.OpKind, pos token.Pos) *ast.BinOp {
	return &ast.BinOp{OpPos: pos, Kind: kind}
}

func tryArithmeticOp(s string, pos token.Pos) (ast.Expr, int, bool) {
	if len(s) == 0 {
		return nil, 0, false
	}
	var kind ast.OpKind
	switch s[0] {
	case '/':
		kind = ast.Div
	case '%':
		kind = ast.Mod
	case '*':
		kind = ast.Mul
	case '-':
		kind = ast.Sub
	case '+':
		kind = ast.Add
	default:
		return nil, 0, false
	}
	return bareOp(kind, pos), 1, true
}

func tryVariable(s string, pos token.Pos) (ast.Expr, int, bool) {
	if len(s) == 0 || !isAlpha(rune(s[0])) {
		return nil, 0, false
	}
	i := 1
	for i < len(s) && isIdentChar(rune(s[i])) {
		i++
	}
	if i < len(s) && s[i] == '(' {
		// Reserved for future function-call support (§9).
		return nil, 0, false
	}
	return &ast.VarRef{NamePos: pos, Name: s[:i]}, i, true
}

func tryNumber(s string, pos token.Pos) (ast.Expr, int, bool) {
	i := 0
	for i < len(s) && isDigit(rune(s[i])) {
		i++
	}
	if i == 0 {
		return nil, 0, false
	}
	v, ok := value.IntFromString(s[:i])
	if !ok {
		return nil, 0, false
	}
	return &ast.Literal{ValuePos: pos, Value: v}, i, true
}

func tryString(template, s string, pos token.Pos) (ast.Expr, int, bool, error) {
	if len(s) == 0 || s[0] != '"' {
		return nil, 0, false, nil
	}
	end := strings.IndexByte(s[1:], '"')
	if end < 0 {
		return nil, 0, false, tplerr.New(template, pos, tplerr.StringLiteralNotClosed, "string literal is not closed")
	}
	content := s[1 : 1+end]
	return &ast.Literal{ValuePos: pos, Value: value.Str(content)}, 1 + end + 1, true, nil
}

func isAlpha(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isIdentChar(r rune) bool {
	return isAlpha(r) || isDigit(r) || r == '_' || r == '-'
}
