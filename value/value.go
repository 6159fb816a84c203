// Package value implements the Value variant and VariableStore described in
// the data model: a tagged union over Bool/Int/Float/Str/Struct plus the
// coercions operators and render use.
//
// The numeric payload for both Int and Float is a single *apd.Decimal,
// shared the way cue/internal/core/adt backs all of CUE's numeric kinds with
// one apd.Decimal and distinguishes them only by a separate Kind tag (see
// cue/binop.go). This stores any Int exactly, and the evaluator's arithmetic
// on it (ast's 60-digit exprCtx) is exact for every result within the
// "signed 128-bit" range, without a hand-rolled int128 type; results longer
// than 60 digits are rounded. It also gives Div "coerce both to float, then divide"
// semantics for free via apd.Context.Quo.
package value

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"github.com/pete-tpl/pete-core/tplerr"
)

// Kind tags which alternative of the Value variant is populated.
type Kind int

const (
	BoolKind Kind = iota
	IntKind
	FloatKind
	StrKind
	StructKind
)

func (k Kind) String() string {
	switch k {
	case BoolKind:
		return "bool"
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	case StrKind:
		return "string"
	case StructKind:
		return "struct"
	default:
		return "unknown"
	}
}

// Value is the tagged-union value container. The zero Value has BoolKind
// (the first Kind) and holds false.
type Value struct {
	kind  Kind
	boo   bool
	num   *apd.Decimal
	str   string
	strct Store
}

// Store is the VariableStore: an unordered, read-only-during-render mapping
// from variable name to Value.
type Store map[string]Value

// Bool constructs a Bool value.
func Bool(b bool) Value { return Value{kind: BoolKind, boo: b} }

// Str constructs a Str value.
func Str(s string) Value { return Value{kind: StrKind, str: s} }

// Int constructs an Int value from an int64.
func Int(n int64) Value { return Value{kind: IntKind, num: apd.New(n, 0)} }

// IntFromString constructs an Int value from a decimal digit string with an
// optional leading '-', used by the expression parser's numeric literal
// sub-parser ([0-9]+) and by the evaluator for integer results. Returns
// false if s is not a valid integer literal.
func IntFromString(s string) (Value, bool) {
	digits := s
	if len(digits) > 0 && digits[0] == '-' {
		digits = digits[1:]
	}
	if digits == "" {
		return Value{}, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Value{}, false
		}
	}
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Value{}, false
	}
	return Value{kind: IntKind, num: d}, true
}

// Float constructs a Float value from a float64.
func Float(f float64) Value {
	d := new(apd.Decimal)
	d.SetFloat64(f)
	return Value{kind: FloatKind, num: d}
}

// Struct constructs a Struct value, taking ownership of fields. Callers that
// need an independent copy should call Clone first.
func Struct(fields Store) Value { return Value{kind: StructKind, strct: fields} }

// Kind reports the active variant.
func (v Value) Kind() Kind { return v.kind }

// BoolValue returns the stored boolean and true, iff Kind() == BoolKind.
func (v Value) BoolValue() (bool, bool) {
	if v.kind != BoolKind {
		return false, false
	}
	return v.boo, true
}

// IntValue returns the stored decimal and true, iff Kind() == IntKind. Per
// §4.1 "to int: only Int", there is no widening here.
func (v Value) IntValue() (*apd.Decimal, bool) {
	if v.kind != IntKind {
		return nil, false
	}
	return v.num, true
}

// FloatValue returns the stored decimal and true, iff Kind() is FloatKind or
// IntKind (which widens into Float per §3).
func (v Value) FloatValue() (*apd.Decimal, bool) {
	if v.kind != FloatKind && v.kind != IntKind {
		return nil, false
	}
	return v.num, true
}

// StrValue returns the stored string and true, iff Kind() == StrKind.
func (v Value) StrValue() (string, bool) {
	if v.kind != StrKind {
		return "", false
	}
	return v.str, true
}

// StructValue returns the stored fields and true, iff Kind() == StructKind.
func (v Value) StructValue() (Store, bool) {
	if v.kind != StructKind {
		return nil, false
	}
	return v.strct, true
}

// Truthy applies the §3 boolean coercion rules. Struct's coercion is
// intentionally unspecified by the spec; per §9's guidance this raises a
// clean error instead of guessing.
func (v Value) Truthy() (bool, error) {
	switch v.kind {
	case BoolKind:
		return v.boo, nil
	case IntKind, FloatKind:
		return v.num.Sign() != 0, nil
	case StrKind:
		return v.str != "", nil
	case StructKind:
		return false, fmt.Errorf("%w: cannot coerce a struct to bool", tplerr.UnsupportedOperandTypes)
	default:
		return false, fmt.Errorf("%w: unknown value kind", tplerr.UnsupportedOperandTypes)
	}
}

// AsString renders the canonical string form used by value expression
// output: the decimal form for numerics, "true"/"false" (lower case,
// preserved from the source) for Bool, identity for Str. Struct has no
// defined string form and returns an error rather than an
// implementation-defined placeholder.
func (v Value) AsString() (string, error) {
	switch v.kind {
	case BoolKind:
		if v.boo {
			return "true", nil
		}
		return "false", nil
	case IntKind, FloatKind:
		return v.num.Text('f'), nil
	case StrKind:
		return v.str, nil
	case StructKind:
		return "", fmt.Errorf("%w: cannot render a struct as a string", tplerr.UnsupportedOperandTypes)
	default:
		return "", fmt.Errorf("%w: unknown value kind", tplerr.UnsupportedOperandTypes)
	}
}

// Clone returns an independent copy of v. Only Struct needs a deep copy;
// every other variant is already immutable value data.
func (v Value) Clone() Value {
	if v.kind != StructKind {
		return v
	}
	cloned := make(Store, len(v.strct))
	for k, field := range v.strct {
		cloned[k] = field.Clone()
	}
	return Struct(cloned)
}
