package gameerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, ""},
		{"configuration", Configuration("bad size"), CodeConfiguration},
		{"illegal", IllegalActionf("cannot move %s", "north"), CodeIllegalAction},
		{"plain", errors.New("boom"), CodeUnknown},
		{"wrapped with fmt", fmt.Errorf("outer: %w", NotFoundf("save %s", "x")), CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCodeAndMeta(t *testing.T) {
	inner := Configuration("width must be positive").WithMeta("width", 0)
	outer := Wrap(inner, "generate dungeon")

	if !IsConfiguration(outer) {
		t.Errorf("wrapped error lost its code: %q", outer.Code)
	}
	if outer.Meta["width"] != 0 {
		t.Errorf("wrapped error lost metadata: %v", outer.Meta)
	}
	if !errors.Is(outer, inner) {
		t.Error("errors.Is(outer, inner) = false, want true")
	}
	if outer.Error() != "generate dungeon: width must be positive" {
		t.Errorf("Error() = %q", outer.Error())
	}

	if Wrap(nil, "nothing") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrapForeignError(t *testing.T) {
	wrapped := Wrap(errors.New("disk full"), "save")
	if wrapped.Code != CodeUnknown {
		t.Errorf("Code = %q, want %q", wrapped.Code, CodeUnknown)
	}
}

func TestViolationLenient(t *testing.T) {
	SetStrict(false)
	// Must not panic
	Violation("hp below zero", "hp", -3)
}

func TestViolationStrict(t *testing.T) {
	SetStrict(true)
	defer SetStrict(false)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Violation did not panic in strict mode")
		}
		err, ok := r.(*Error)
		if !ok {
			t.Fatalf("panic value = %T, want *Error", r)
		}
		if err.Code != CodeInvariantViolation {
			t.Errorf("Code = %q, want %q", err.Code, CodeInvariantViolation)
		}
		if err.Meta["pillar"] != "A" {
			t.Errorf("Meta = %v, want pillar=A", err.Meta)
		}
	}()

	Violation("pillar placed twice", "pillar", "A")
}
