// Package pprlerr defines the error kinds named in spec §7: configuration
// errors (surfaced before processing begins), per-entity input errors
// (policy-controlled), empty-value errors, length mismatches (a programming
// error: a broken invariant rather than bad input), and decode failures
// (malformed base64 input).
package pprlerr

import "fmt"

// ConfigError reports an invalid configuration, detected once before any
// entity is processed: a bad filter/attribute combination, a missing
// required field, contradictory options, or an attribute referenced by
// configuration but absent from an entity.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Msg)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError constructs a ConfigError with no wrapped cause.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// WrapConfigError constructs a ConfigError wrapping an underlying cause.
func WrapConfigError(err error, format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...), Err: err}
}

// InputError reports that a single entity's value failed a transform's
// contract (non-numeric input to `number`, an unparseable date, a mapping
// miss with no default). It is scoped to one entity; whether it aborts the
// whole batch is a policy decision made by the caller.
type InputError struct {
	EntityID  string
	Attribute string
	Msg       string
	Err       error
}

func (e *InputError) Error() string {
	base := fmt.Sprintf("input error: entity %q attribute %q: %s", e.EntityID, e.Attribute, e.Msg)
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", base, e.Err)
	}
	return base
}

func (e *InputError) Unwrap() error { return e.Err }

// EmptyValueError reports that an attribute value was empty after
// pre-transforms and the configured EmptyValueHandling policy is "error".
type EmptyValueError struct {
	EntityID  string
	Attribute string
}

func (e *EmptyValueError) Error() string {
	return fmt.Sprintf("empty value error: entity %q attribute %q is empty", e.EntityID, e.Attribute)
}

// LengthMismatchError reports that a bitwise binary op or similarity
// measure was invoked on vectors of unequal length. This is a programming
// error per spec §7 and should halt execution; it is still returned as an
// error value here (rather than only panicking) so callers operating on
// untrusted wire input can convert it into a diagnostic instead of a crash.
type LengthMismatchError struct {
	Want, Got int
	Context   string
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("length mismatch in %s: want %d, got %d", e.Context, e.Want, e.Got)
}

// DecodeError reports malformed base64 input. Fatal for the entity it
// belongs to.
type DecodeError struct {
	EntityID string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: entity %q: %v", e.EntityID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
