package application

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"field": "invalid"}}
	if got := withFields.Error(); got != "validation failed" {
		t.Fatalf("expected consistent message for populated error, got %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if (&ValidationError{}).HasErrors() {
		t.Fatalf("expected HasErrors to report false for empty error")
	}

	if !(&ValidationError{FieldErrors: map[string]string{"field": "bad"}}).HasErrors() {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestValidationError_AddKeepsFirstMessage(t *testing.T) {
	t.Parallel()

	vErr := &ValidationError{}
	vErr.add("name", "name is required")
	vErr.add("name", "name must be at most 100 characters")

	if got := vErr.Field("name"); got != "name is required" {
		t.Fatalf("expected first message to win, got %q", got)
	}
	if got := vErr.Field("missing"); got != "" {
		t.Fatalf("expected empty message for unknown field, got %q", got)
	}
}

func TestAsValidationError(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("create: %w", &ValidationError{FieldErrors: map[string]string{"email": "bad"}})
	vErr, ok := AsValidationError(wrapped)
	if !ok || vErr.Field("email") != "bad" {
		t.Fatalf("expected wrapped validation error to be extracted, got %v", vErr)
	}

	if _, ok := AsValidationError(errors.New("boom")); ok {
		t.Fatalf("expected plain errors not to match")
	}
}
