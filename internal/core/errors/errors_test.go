package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDomainErrorMessage(t *testing.T) {
	err := New(CodeParseError, "malformed source")
	if !strings.Contains(err.Error(), "PARSE_ERROR") {
		t.Errorf("expected code in message, got %q", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk gone")
	err := Wrap(cause, CodeInternal, "write failed")
	if !errors.Is(err, cause) {
		t.Error("wrapped error should unwrap to cause")
	}
	if !IsCode(err, CodeInternal) {
		t.Error("expected CodeInternal")
	}
}

func TestAddContextOnPlainError(t *testing.T) {
	err := AddContext(fmt.Errorf("boom"), CtxPath, "src/a.ts")
	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatal("expected DomainError")
	}
	if de.Context[CtxPath] != "src/a.ts" {
		t.Errorf("context not attached: %v", de.Context)
	}
}

func TestValidationErrorsAggregate(t *testing.T) {
	var ve ValidationErrors
	if ve.HasErrors() {
		t.Error("fresh ValidationErrors should be empty")
	}
	ve.Add("paths.project_root does not exist: %s", "/nope")
	ve.Add("naming.interface is not a valid regex")
	if len(ve.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(ve.Messages))
	}
	if !strings.Contains(ve.Error(), "2 validation error(s)") {
		t.Errorf("unexpected summary: %q", ve.Error())
	}
}
