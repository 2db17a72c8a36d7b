package ierr

import (
	"errors"
	"strings"
	"testing"
)

func TestDescribeKnownAndUnknownCodes(t *testing.T) {
	if Describe(CodeIRInvariant) == "unknown error code" {
		t.Fatalf("expected a real description for %s", CodeIRInvariant)
	}
	if Describe("B9999") != "unknown error code" {
		t.Fatalf("expected unknown-code fallback for an unregistered code")
	}
}

func TestWrapPreservesCauseForUnwrap(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Wrap(cause, CodeAssertion, "pass postcondition failed")

	if !strings.Contains(wrapped.Error(), "B0004") {
		t.Fatalf("expected code in message, got %q", wrapped.Error())
	}
	if !strings.Contains(wrapped.Error(), "boom") {
		t.Fatalf("expected cause text in message, got %q", wrapped.Error())
	}
	if errors.Unwrap(wrapped) == nil {
		t.Fatalf("expected Unwrap to expose a non-nil cause")
	}
}

func TestNewCarriesNoPriorCauseButStillErrors(t *testing.T) {
	err := New(CodeConfig, "missing required field")
	if err.Code != CodeConfig {
		t.Fatalf("expected code %s, got %s", CodeConfig, err.Code)
	}
	if !strings.Contains(err.Error(), "missing required field") {
		t.Fatalf("expected message in Error(), got %q", err.Error())
	}
}

func TestStackTraceAvailableOnWrappedError(t *testing.T) {
	wrapped := Wrap(errors.New("boom"), CodeIRInvariant, "bad block")
	if wrapped.StackTrace() == nil {
		t.Fatalf("expected a stack trace from a pkg/errors-wrapped cause")
	}
}
