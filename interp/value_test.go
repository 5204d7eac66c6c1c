package interp

import (
	"testing"

	"github.com/glintlang/glint/compiler"
)

func TestValueTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"zero", FromNumber(0), false},
		{"nonzero", FromNumber(3), true},
		{"negative", FromNumber(-1), true},
		{"empty string", FromString(""), false},
		{"string", FromString("a"), true},
		{"false", False, false},
		{"true", True, true},
		{"null", Null, false},
		{"undefined", Undefined, false},
		{"zero handle", FromHandle(0), false},
		{"handle", FromHandle(7), true},
		{"callable", FromCallable(&Callable{Name: "f"}), true},
	}
	for _, tt := range tests {
		if got := tt.v.Truthy(); got != tt.want {
			t.Errorf("Truthy(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestValueEquals(t *testing.T) {
	fn := &Callable{Name: "f"}
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"numbers equal", FromNumber(2), FromNumber(2), true},
		{"numbers differ", FromNumber(2), FromNumber(3), false},
		{"strings equal", FromString("x"), FromString("x"), true},
		{"strings differ", FromString("x"), FromString("y"), false},
		{"bools", True, True, true},
		{"null null", Null, Null, true},
		{"null undefined", Null, Undefined, true},
		{"number vs handle", FromNumber(5), FromHandle(5), true},
		{"bool vs number", True, FromNumber(1), true},
		{"string vs number", FromString("5"), FromNumber(5), false},
		{"same callable", FromCallable(fn), FromCallable(fn), true},
		{"different callables", FromCallable(fn), FromCallable(&Callable{Name: "g"}), false},
	}
	for _, tt := range tests {
		if got := tt.a.Equals(tt.b); got != tt.want {
			t.Errorf("Equals(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestValueDisplay(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{FromNumber(5), "5"},
		{FromNumber(3.14), "3.14"},
		{FromNumber(-0.5), "-0.5"},
		{FromString("hi"), "hi"},
		{True, "true"},
		{False, "false"},
		{Null, "null"},
		{Undefined, "undefined"},
		{FromHandle(12), "12"},
		{FromCallable(&Callable{Name: "main"}), "<function main>"},
	}
	for _, tt := range tests {
		if got := tt.v.Display(); got != tt.want {
			t.Errorf("Display() = %q, want %q", got, tt.want)
		}
	}
}

func TestValueTypeOf(t *testing.T) {
	tests := []struct {
		v    Value
		want compiler.Type
	}{
		{FromNumber(1), compiler.TypeNumber},
		{True, compiler.TypeBool},
		{FromString("s"), compiler.TypeString},
		{FromHandle(3), compiler.TypeObj},
		{FromCallable(&Callable{}), compiler.TypeFunction},
		{Null, ""},
		{Undefined, ""},
	}
	for _, tt := range tests {
		if got := tt.v.TypeOf(); got != tt.want {
			t.Errorf("TypeOf(%s) = %q, want %q", tt.v.KindName(), got, tt.want)
		}
	}
}
