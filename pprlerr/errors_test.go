package pprlerr

import (
	"errors"
	"testing"
)

func TestConfigErrorUnwraps(t *testing.T) {
	cause := errors.New("bad size")
	err := WrapConfigError(cause, "clk layout")

	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is did not find the wrapped cause")
	}
	if err.Error() == "" {
		t.Fatalf("expected non-empty error message")
	}
}

func TestNewConfigErrorHasNoWrappedCause(t *testing.T) {
	err := NewConfigError("attribute %q: q must be > 0", "firstname")
	if err.Unwrap() != nil {
		t.Fatalf("expected no wrapped cause for NewConfigError")
	}
}

func TestInputErrorIncludesEntityAndAttribute(t *testing.T) {
	err := &InputError{EntityID: "e1", Attribute: "birthdate", Msg: "unparseable date"}
	msg := err.Error()
	if msg == "" {
		t.Fatalf("expected non-empty message")
	}
	if err.Unwrap() != nil {
		t.Fatalf("expected nil Unwrap when Err is unset")
	}
}

func TestDecodeErrorUnwraps(t *testing.T) {
	cause := errors.New("illegal base64 data")
	err := &DecodeError{EntityID: "e1", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is did not find the wrapped cause")
	}
}
