package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError. The API layer maps each code to exactly one HTTP status.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeTokenInvalid = "TOKEN_INVALID"
	CodeInternal     = "INTERNAL_ERROR"
)

// Reasons attached to TOKEN_INVALID errors.
const (
	TokenReasonInvalid = "invalid"
	TokenReasonUsed    = "used"
	TokenReasonExpired = "expired"
)

// Reasons attached to CONFLICT errors raised by enrollment and wishlist writes.
const (
	ConflictReasonInactive  = "workshop_inactive"
	ConflictReasonFull      = "workshop_full"
	ConflictReasonDuplicate = "duplicate"
)

// ErrorCodeLocal is the fiber.Ctx local holding the AppError code of an error response.
const ErrorCodeLocal = "errorCode"

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Reason  string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports a missing resource by its identifier.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

// NewConflictErrorWithReason is NewConflictError with a machine-readable reason.
func NewConflictErrorWithReason(reason, message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Reason:  reason,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

// NewTokenInvalidError reports an unusable password-reset token. reason is one of
// TokenReasonInvalid, TokenReasonUsed or TokenReasonExpired.
func NewTokenInvalidError(reason, message string) *AppError {
	return &AppError{
		Code:    CodeTokenInvalid,
		Message: message,
		Reason:  reason,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// ErrorCode returns the AppError code wrapped in err, or CodeInternal.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ErrorReason returns the reason of the AppError wrapped in err, if any.
func ErrorReason(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}

// IsCode reports whether err wraps an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error:  appErr.Message,
			Code:   appErr.Code,
			Reason: appErr.Reason,
		}
		c.Locals(ErrorCodeLocal, appErr.Code)
		if appErr.Err != nil && appErr.Code != CodeInternal {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
