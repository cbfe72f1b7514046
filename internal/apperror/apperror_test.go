package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("film", int64(7)),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("login", "login must not contain spaces"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "NotFound survives fmt.Errorf wrapping",
			err:       fmt.Errorf("loading feed: %w", NotFound("user", int64(3))),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("user", int64(1)),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "plain error matches nothing",
			err:       errors.New("disk full"),
			target:    ErrNotFound,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{"NotFound formats int ids", NotFound("director", int64(42)), "director not found with id 42"},
		{"ValidationFailed uses custom message", ValidationFailed("name", "name is required"), "name is required"},
		{"NotFound formats string ids", NotFound("review", "abc"), "review not found with id abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ValidationFailed("count", "count must be positive"))

	if !IsValidation(wrapped) {
		t.Error("IsValidation() = false for wrapped validation error")
	}
	if IsNotFound(wrapped) {
		t.Error("IsNotFound() = true for a validation error")
	}
	if !IsNotFound(NotFound("mpa", 9)) {
		t.Error("IsNotFound() = false for NotFound")
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("email", "invalid email format")

	if err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
}
