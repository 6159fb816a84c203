// Package ast declares the node types used to represent both expression
// trees and template trees, following the Node/Expr interface split used by
// cue/ast.go (Pos()/End() on a shared Node, exprNode()-style marker methods
// distinguishing expression nodes) — generalized from CUE's own grammar to
// the much smaller one this engine needs.
package ast

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"github.com/pete-tpl/pete-core/token"
	"github.com/pete-tpl/pete-core/tplerr"
	"github.com/pete-tpl/pete-core/value"
)

// exprCtx is a package-level apd.Context sized for the "signed 128-bit"
// range the spec describes for Int (roughly 39 decimal digits) plus
// headroom for intermediate Add/Sub/Mul results, mirroring the single
// package-level apd.Context cue/internal/core/adt keeps for all of its
// arithmetic (see apdCtx in binop.go).
var exprCtx = apd.BaseContext.WithPrecision(60)

// OpKind enumerates the binary operators §3 defines on Expr.
type OpKind int

const (
	Add OpKind = iota
	Sub
	Mul
	Div
	Mod
	And
	Or
)

func (k OpKind) String() string {
	switch k {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Mod:
		return "%"
	case And:
		return "and"
	case Or:
		return "or"
	default:
		return "?"
	}
}

// EvalContext is the abstract evaluation environment an Expr is evaluated
// against: the read-only variable store for this render call.
type EvalContext struct {
	Vars value.Store
}

// Expr is implemented by every expression node: Literal, VarRef, BinOp.
type Expr interface {
	// Pos is the absolute offset of the node's own token — a literal's or
	// variable's first character, a BinOp's operator — used to annotate
	// evaluation errors with a source location.
	Pos() token.Pos
	// IsOperator reports whether this node is still a bare operator
	// awaiting operands (true) or a complete, value-producing node
	// (false) — the distinction the expression parser's one-slot-stack
	// algorithm dispatches on at each step.
	IsOperator() bool
	// Evaluate computes this expression's value against ctx.
	Evaluate(ctx *EvalContext) (value.Value, error)
}

// Literal is a parsed constant: a number, string, or (for an else branch's
// implicit guard) boolean literal.
type Literal struct {
	ValuePos token.Pos
	Value    value.Value
}

func (l *Literal) Pos() token.Pos { return l.ValuePos }
func (l *Literal) IsOperator() bool { return false }
func (l *Literal) Evaluate(*EvalContext) (value.Value, error) { return l.Value, nil }

// VarRef looks up a variable by name in the render context.
type VarRef struct {
	NamePos token.Pos
	Name    string
}

func (r *VarRef) Pos() token.Pos { return r.NamePos }
func (r *VarRef) IsOperator() bool { return false }

func (r *VarRef) Evaluate(ctx *EvalContext) (value.Value, error) {
	v, ok := ctx.Vars[r.Name]
	if !ok {
		return value.Value{}, fmt.Errorf("%w: %s", tplerr.VariableNotFound, r.Name)
	}
	return v, nil
}

// BinOp is a binary operator node. It starts out with LHS and RHS nil — in
// that state IsOperator reports true and the node is a bare operator
// awaiting operands, exactly the state the expression parser's stack holds
// an operator in between recognizing it and recognizing its right operand.
// Once both operands are attached (see Attach), IsOperator reports false and
// the node behaves as a normal value-producing Expr.
type BinOp struct {
	OpPos token.Pos
	Kind  OpKind
	LHS   Expr
	RHS   Expr
}

func (b *BinOp) Pos() token.Pos { return b.OpPos }

func (b *BinOp) IsOperator() bool { return b.LHS == nil || b.RHS == nil }

// Attach fills in this operator's operands, turning it from a bare operator
// into a complete expression node.
func (b *BinOp) Attach(lhs, rhs Expr) {
	b.LHS = lhs
	b.RHS = rhs
}

func (b *BinOp) Evaluate(ctx *EvalContext) (value.Value, error) {
	if b.LHS == nil {
		return value.Value{}, fmt.Errorf("%w: index 0 (left operand) of %s", tplerr.OperandMissing, b.Kind)
	}
	if b.RHS == nil {
		return value.Value{}, fmt.Errorf("%w: index 1 (right operand) of %s", tplerr.OperandMissing, b.Kind)
	}
	lhs, err := b.LHS.Evaluate(ctx)
	if err != nil {
		return value.Value{}, err
	}
	rhs, err := b.RHS.Evaluate(ctx)
	if err != nil {
		return value.Value{}, err
	}
	switch b.Kind {
	case Add:
		return b.numeric(lhs, rhs, exprCtx.Add)
	case Sub:
		return b.numeric(lhs, rhs, exprCtx.Sub)
	case Mul:
		return b.numeric(lhs, rhs, exprCtx.Mul)
	case Div:
		return b.divide(lhs, rhs)
	case Mod:
		return b.modulo(lhs, rhs)
	case And:
		return b.logical(lhs, rhs, func(a, c bool) bool { return a && c })
	case Or:
		return b.logical(lhs, rhs, func(a, c bool) bool { return a || c })
	default:
		return value.Value{}, fmt.Errorf("%w: unknown operator", tplerr.UnsupportedOperandTypes)
	}
}

type apdBinFunc func(z, x, y *apd.Decimal) (apd.Condition, error)

// numeric implements Add/Sub/Mul: both Int yields Int, else both coercible
// to Float yields Float, else UnsupportedOperandTypes — per §4.2.
func (b *BinOp) numeric(lhs, rhs value.Value, fn apdBinFunc) (value.Value, error) {
	if li, lok := lhs.IntValue(); lok {
		if ri, rok := rhs.IntValue(); rok {
			var z apd.Decimal
			if _, err := fn(&z, li, ri); err != nil {
				return value.Value{}, fmt.Errorf("%w: %s on int operands: %v", tplerr.UnsupportedOperandTypes, b.Kind, err)
			}
			return intFromDecimal(&z), nil
		}
	}
	lf, lok := lhs.FloatValue()
	rf, rok := rhs.FloatValue()
	if !lok || !rok {
		return value.Value{}, fmt.Errorf("%w: %s requires numeric operands, got %s and %s", tplerr.UnsupportedOperandTypes, b.Kind, lhs.Kind(), rhs.Kind())
	}
	var z apd.Decimal
	if _, err := fn(&z, lf, rf); err != nil {
		return value.Value{}, fmt.Errorf("%w: %s on float operands: %v", tplerr.UnsupportedOperandTypes, b.Kind, err)
	}
	return floatFromDecimal(&z), nil
}

// divide implements §4.2's Div: coerce both operands to Float and divide via
// apd.Context.Quo, the same entry point pkg/math/manual.go uses for exact
// decimal division.
func (b *BinOp) divide(lhs, rhs value.Value) (value.Value, error) {
	lf, lok := lhs.FloatValue()
	rf, rok := rhs.FloatValue()
	if !lok || !rok {
		return value.Value{}, fmt.Errorf("%w: / requires numeric operands, got %s and %s", tplerr.UnsupportedOperandTypes, lhs.Kind(), rhs.Kind())
	}
	var z apd.Decimal
	if _, err := exprCtx.Quo(&z, lf, rf); err != nil {
		return value.Value{}, fmt.Errorf("%w: division failed: %v", tplerr.UnsupportedOperandTypes, err)
	}
	return floatFromDecimal(&z), nil
}

// modulo implements §4.2's Mod: both operands must be Int, the dividend must
// be >= 0, and the divisor must be > 0.
func (b *BinOp) modulo(lhs, rhs value.Value) (value.Value, error) {
	li, lok := lhs.IntValue()
	ri, rok := rhs.IntValue()
	if !lok || !rok {
		return value.Value{}, fmt.Errorf("%w: %% requires int operands, got %s and %s", tplerr.UnsupportedOperandTypes, lhs.Kind(), rhs.Kind())
	}
	if li.Sign() < 0 {
		return value.Value{}, fmt.Errorf("%w: dividend must be >= 0, got %s", tplerr.ModuloConstraint, li.Text('f'))
	}
	if ri.Sign() <= 0 {
		return value.Value{}, fmt.Errorf("%w: divisor must be > 0, got %s", tplerr.ModuloConstraint, ri.Text('f'))
	}
	var z apd.Decimal
	if _, err := exprCtx.Rem(&z, li, ri); err != nil {
		return value.Value{}, fmt.Errorf("%w: modulo failed: %v", tplerr.ModuloConstraint, err)
	}
	return intFromDecimal(&z), nil
}

// logical implements And/Or: both operands are coerced to bool (§3) and
// combined with fn. Short-circuiting is not required by §4.2 and is not
// implemented — both operands are always evaluated.
func (b *BinOp) logical(lhs, rhs value.Value, fn func(a, c bool) bool) (value.Value, error) {
	lb, err := lhs.Truthy()
	if err != nil {
		return value.Value{}, err
	}
	rb, err := rhs.Truthy()
	if err != nil {
		return value.Value{}, err
	}
	return value.Bool(fn(lb, rb)), nil
}

func intFromDecimal(d *apd.Decimal) value.Value {
	var rounded apd.Decimal
	rounded.Set(d)
	v, _ := value.IntFromString(rounded.Text('f'))
	return v
}

func floatFromDecimal(d *apd.Decimal) value.Value {
	f, _ := d.Float64()
	return value.Float(f)
}
