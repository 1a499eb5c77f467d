package httpx

import (
	"fmt"
	"net/http"
)

// Stable machine-readable error codes surfaced to clients. Auth failures are
// deliberately coarse: a revoked refresh token and one that never existed
// share INVALID_REFRESH_TOKEN so the response is not an existence oracle.
const (
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeBadCredentials      = "BAD_CREDENTIALS"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeRefreshExpired      = "REFRESH_EXPIRED"
	CodeAlreadyInUse        = "ALREADY_IN_USE"
	CodeValidation          = "VALIDATION_ERROR"
	CodeExpenseNotFound     = "EXPENSE_NOT_FOUND"
	CodeInternal            = "INTERNAL_ERROR"
)

// Error is a client-facing API error. It implements the error interface and
// knows how to render itself, so handlers map service errors to exactly one
// of these in a central switch instead of ad-hoc status writing.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WriteError writes this Error to an HTTP response writer.
func (e *Error) WriteError(w http.ResponseWriter) {
	WriteJSON(w, e.Status, e)
}

var (
	ErrUnauthorized = &Error{
		Status:  http.StatusUnauthorized,
		Code:    CodeUnauthorized,
		Message: "Authentication required.",
	}

	ErrTokenExpired = &Error{
		Status:  http.StatusUnauthorized,
		Code:    CodeTokenExpired,
		Message: "Session expired. Please log in again.",
	}

	ErrBadCredentials = &Error{
		Status:  http.StatusUnauthorized,
		Code:    CodeBadCredentials,
		Message: "Invalid email or password.",
	}

	ErrInvalidRefreshToken = &Error{
		Status:  http.StatusUnauthorized,
		Code:    CodeInvalidRefreshToken,
		Message: "Invalid refresh token.",
	}

	ErrRefreshExpired = &Error{
		Status:  http.StatusUnauthorized,
		Code:    CodeRefreshExpired,
		Message: "Session expired. Please log in again.",
	}

	ErrAlreadyInUse = &Error{
		Status:  http.StatusConflict,
		Code:    CodeAlreadyInUse,
		Message: "Email is already in use.",
	}

	ErrExpenseNotFound = &Error{
		Status:  http.StatusNotFound,
		Code:    CodeExpenseNotFound,
		Message: "Expense not found.",
	}

	ErrInternal = &Error{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: "Internal server error.",
	}
)

// NewValidationError reports a malformed or invalid request body.
func NewValidationError(msg string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    CodeValidation,
		Message: msg,
	}
}
