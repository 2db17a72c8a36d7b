// Package ierr gives the backend's fatal conditions a coded, wrapped
// error shape: an invariant violated inside the core (which by design
// never retries or downgrades an error — see wf, subst, commute) becomes
// a coded, wrapped error by the time it reaches the CLI layer.
package ierr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error codes for the backend. Ranges follow a dense, reserved-block
// style scaled down to this backend's much smaller surface.
const (
	// CodeIRInvariant marks a well-formedness violation: an undefined
	// register reference, a jump to a missing label or a jump whose
	// target's needed registers are not defined. See package wf.
	CodeIRInvariant = "B0001"

	// CodeSubstShape marks a substitution-shape error: composing or
	// applying a Subst in a way its invariants forbid (e.g. ApplyPattern
	// meeting a non-register value at a register position, reported as
	// subst.ErrPatternShape). See package subst.
	CodeSubstShape = "B0002"

	// CodeDifferentialMismatch marks a sentence on which the reference
	// interpreter and the compiled program disagree. See package diff.
	CodeDifferentialMismatch = "B0003"

	// CodeAssertion marks an internal assertion failure: a pass produced
	// a program shape its own postcondition forbids. Always a bug in the
	// backend itself, never a malformed input.
	CodeAssertion = "B0004"

	// CodeTextFormat marks a parse failure in the textual snippet format
	// read by the CLI's -from-text flag. See package textfmt.
	CodeTextFormat = "B0005"

	// CodeConfig marks a malformed Settings file.
	CodeConfig = "B0006"
)

var descriptions = map[string]string{
	CodeIRInvariant:          "an IR well-formedness invariant was violated",
	CodeSubstShape:           "a substitution was applied or composed in a shape its invariants forbid",
	CodeDifferentialMismatch: "the reference interpreter and the compiled program disagreed on a sentence",
	CodeAssertion:            "an internal pass postcondition was violated",
	CodeTextFormat:           "the textual snippet format could not be parsed",
	CodeConfig:               "the settings file could not be loaded",
}

// Describe returns a human-readable description of code, or "unknown
// error code" if code is not one of this package's constants.
func Describe(code string) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return "unknown error code"
}

// CodedError is a fatal, coded backend error. Its cause (if any) is
// wrapped with github.com/pkg/errors so the causal chain survives crossing
// a pass boundary; Unwrap exposes it to errors.Is/errors.As.
type CodedError struct {
	Code    string
	Message string
	cause   error
}

func (e *CodedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error { return e.cause }

// New builds a coded error with no prior cause.
func New(code, message string) *CodedError {
	return &CodedError{Code: code, Message: message, cause: errors.New(message)}
}

// Wrap attaches code and message to cause, preserving cause's stack trace
// (or attaching one, if cause doesn't already carry one) via
// github.com/pkg/errors.
func Wrap(cause error, code, message string) *CodedError {
	return &CodedError{Code: code, Message: message, cause: errors.Wrap(cause, message)}
}

// StackTrace exposes the wrapped cause's stack trace when cause was
// produced (directly or transitively) by github.com/pkg/errors, letting
// a CLI print a verbose trace on request.
func (e *CodedError) StackTrace() errors.StackTrace {
	type stackTracer interface{ StackTrace() errors.StackTrace }
	if st, ok := e.cause.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}
