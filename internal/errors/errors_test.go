package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrInternalServer, cause)

	if err.Code != "INTERNAL_ERROR" || err.StatusCode != http.StatusInternalServerError {
		t.Errorf("unexpected wrapped error %+v", err)
	}
	if err.Error() != ErrInternalServer.Message {
		t.Errorf("wrapped error must not leak the cause, got %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if ErrInternalServer.Internal != nil {
		t.Error("sentinel must not be mutated")
	}
}

func TestWithMessage(t *testing.T) {
	err := WithMessage(ErrInvalidInput, "amount must be greater than zero")

	if err.Message != "amount must be greater than zero" {
		t.Errorf("expected custom message, got %q", err.Message)
	}
	if err.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", err.StatusCode)
	}
	if ErrInvalidInput.Message != "Invalid input" {
		t.Error("sentinel must not be mutated")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{name: "sentinel", err: ErrCategoryNotFound, target: ErrCategoryNotFound, want: true},
		{name: "wrapped_copy", err: Wrap(ErrInternalServer, errors.New("boom")), target: ErrInternalServer, want: true},
		{name: "custom_message", err: WithMessage(ErrInvalidInput, "bad"), target: ErrInvalidInput, want: true},
		{name: "behind_fmt_wrap", err: fmt.Errorf("check: %w", ErrAccountNotFound), target: ErrAccountNotFound, want: true},
		{name: "different_code", err: ErrAccountNotFound, target: ErrCategoryNotFound, want: false},
		{name: "plain_error", err: errors.New("x"), target: ErrNotFound, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorsAs(t *testing.T) {
	err := fmt.Errorf("import: %w", Wrap(ErrInvalidStatement, errors.New("eof")))

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("expected errors.As to find the AppError")
	}
	if appErr.Code != "INVALID_STATEMENT" {
		t.Errorf("expected INVALID_STATEMENT, got %s", appErr.Code)
	}
}
