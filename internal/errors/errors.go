// Package errors provides custom error types for the Moneta API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Entity errors.
var (
	ErrAccountNotFound      = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	ErrContactNotFound      = &AppError{Code: "CONTACT_NOT_FOUND", Message: "Contact not found", StatusCode: http.StatusNotFound}
	ErrContactGroupNotFound = &AppError{Code: "CONTACT_GROUP_NOT_FOUND", Message: "Contact group not found", StatusCode: http.StatusNotFound}
	ErrSavingsPlanNotFound  = &AppError{Code: "SAVINGS_PLAN_NOT_FOUND", Message: "Savings plan not found", StatusCode: http.StatusNotFound}
	ErrSecurityNotFound     = &AppError{Code: "SECURITY_NOT_FOUND", Message: "Security not found", StatusCode: http.StatusNotFound}
	ErrCategoryNotFound     = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryKindMismatch = &AppError{Code: "CATEGORY_KIND_MISMATCH", Message: "Category belongs to a different posting kind", StatusCode: http.StatusBadRequest}
)

// Posting errors.
var (
	ErrPostingNotFound    = &AppError{Code: "POSTING_NOT_FOUND", Message: "Posting not found", StatusCode: http.StatusNotFound}
	ErrInvalidPostingKind = &AppError{Code: "INVALID_POSTING_KIND", Message: "Unsupported posting kind", StatusCode: http.StatusBadRequest}
	ErrPostingReference   = &AppError{Code: "INVALID_POSTING_REFERENCE", Message: "Posting references do not match its kind", StatusCode: http.StatusBadRequest}
)

// Budget errors.
var (
	ErrPurposeNotFound        = &AppError{Code: "PURPOSE_NOT_FOUND", Message: "Budget purpose not found", StatusCode: http.StatusNotFound}
	ErrRuleNotFound           = &AppError{Code: "RULE_NOT_FOUND", Message: "Budget rule not found", StatusCode: http.StatusNotFound}
	ErrOverrideNotFound       = &AppError{Code: "OVERRIDE_NOT_FOUND", Message: "Budget override not found", StatusCode: http.StatusNotFound}
	ErrBudgetCategoryNotFound = &AppError{Code: "BUDGET_CATEGORY_NOT_FOUND", Message: "Budget category not found", StatusCode: http.StatusNotFound}
	ErrInvalidMonthStep       = &AppError{Code: "INVALID_MONTH_STEP", Message: "Custom month step must be between 1 and 120", StatusCode: http.StatusBadRequest}
	ErrInvalidRuleWindow      = &AppError{Code: "INVALID_RULE_WINDOW", Message: "End date must not precede start date", StatusCode: http.StatusBadRequest}
	ErrInvalidPeriod          = &AppError{Code: "INVALID_PERIOD", Message: "Period month must be between 1 and 12", StatusCode: http.StatusBadRequest}
)

// Aggregate and report errors.
var (
	ErrRebuildInProgress = &AppError{Code: "REBUILD_IN_PROGRESS", Message: "An aggregate rebuild is already running for this user", StatusCode: http.StatusConflict}
	ErrTransient         = &AppError{Code: "TRANSIENT_CONFLICT", Message: "A transient conflict occurred, try again", StatusCode: http.StatusConflict}
)
