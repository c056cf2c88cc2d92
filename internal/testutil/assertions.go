package testutil

import (
	"errors"
	"testing"

	apperrors "moneta/internal/errors"
)

// AssertAppError checks that err unwraps to an *AppError with the expected
// error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertAmount fails the test when a money amount differs from what was
// expected. Amounts are integer cents throughout.
func AssertAmount(t *testing.T, want, got int64) {
	t.Helper()

	if want != got {
		t.Errorf("expected amount %d, got %d", want, got)
	}
}
