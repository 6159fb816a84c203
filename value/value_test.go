package value_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/pete-tpl/pete-core/value"
)

func TestTruthy(t *testing.T) {
	cases := []struct {
		name string
		v    value.Value
		want bool
	}{
		{"empty string is false", value.Str(""), false},
		{"non-empty string is true", value.Str("x"), true},
		{"zero int is false", value.Int(0), false},
		{"non-zero int is true", value.Int(-3), true},
		{"zero float is false", value.Float(0), false},
		{"non-zero float is true", value.Float(0.5), true},
		{"bool true", value.Bool(true), true},
		{"bool false", value.Bool(false), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.v.Truthy()
			qt.Assert(t, qt.IsNil(err))
			qt.Assert(t, qt.Equals(got, tc.want))
		})
	}
}

func TestTruthyStructIsAnError(t *testing.T) {
	_, err := value.Struct(value.Store{}).Truthy()
	qt.Assert(t, qt.IsNotNil(err))
}

func TestAsString(t *testing.T) {
	cases := []struct {
		name string
		v    value.Value
		want string
	}{
		{"bool true lowercase", value.Bool(true), "true"},
		{"bool false lowercase", value.Bool(false), "false"},
		{"string identity", value.Str("John"), "John"},
		{"int", value.Int(42), "42"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.v.AsString()
			qt.Assert(t, qt.IsNil(err))
			qt.Assert(t, qt.Equals(got, tc.want))
		})
	}
}

func TestAsStringStructIsAnError(t *testing.T) {
	_, err := value.Struct(value.Store{}).AsString()
	qt.Assert(t, qt.IsNotNil(err))
}

func TestIntValueDoesNotWidenFromFloat(t *testing.T) {
	_, ok := value.Float(1.5).IntValue()
	qt.Assert(t, qt.IsFalse(ok))
}

func TestFloatValueWidensFromInt(t *testing.T) {
	_, ok := value.Int(7).FloatValue()
	qt.Assert(t, qt.IsTrue(ok))
}

func TestIntFromString(t *testing.T) {
	v, ok := value.IntFromString("123")
	qt.Assert(t, qt.IsTrue(ok))
	s, err := v.AsString()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(s, "123"))

	_, ok = value.IntFromString("12x")
	qt.Assert(t, qt.IsFalse(ok))
}

func TestCloneDeepCopiesStructOnly(t *testing.T) {
	inner := value.Struct(value.Store{"x": value.Int(1)})
	outer := value.Struct(value.Store{"inner": inner})

	cloned := outer.Clone()
	clonedFields, _ := cloned.StructValue()
	clonedInner, _ := clonedFields["inner"].StructValue()
	clonedInner["x"] = value.Int(99)

	originalFields, _ := outer.StructValue()
	originalInner, _ := originalFields["inner"].StructValue()
	got, _ := originalInner["x"].AsString()
	qt.Assert(t, qt.Equals(got, "1"))
}
