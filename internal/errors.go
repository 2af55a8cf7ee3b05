package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidTitle     ErrorCode = "INVALID_TITLE"
	ErrCodeInvalidCategory  ErrorCode = "INVALID_CATEGORY"
	ErrCodeInvalidPriority  ErrorCode = "INVALID_PRIORITY"

	ErrCodeComplaintNotFound    ErrorCode = "COMPLAINT_NOT_FOUND"
	ErrCodeUnauthorizedAccess   ErrorCode = "UNAUTHORIZED_ACCESS"
	ErrCodeInvalidTransition    ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrCodeComplaintNotEditable ErrorCode = "COMPLAINT_NOT_EDITABLE"
	ErrCodeAlreadyAssigned      ErrorCode = "COMPLAINT_ALREADY_ASSIGNED"
	ErrCodeAssigneeNotStaff     ErrorCode = "ASSIGNEE_NOT_STAFF"
	ErrCodeDeleteNotConfirmed   ErrorCode = "DELETE_NOT_CONFIRMED"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeEmailTaken         ErrorCode = "EMAIL_ALREADY_REGISTERED"
	ErrCodeEmailDomain        ErrorCode = "EMAIL_DOMAIN_NOT_ALLOWED"

	ErrCodeUploadTooLarge  ErrorCode = "UPLOAD_TOO_LARGE"
	ErrCodeUploadExtension ErrorCode = "UPLOAD_EXTENSION_NOT_ALLOWED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	return &AppError{
		Type:       e.Type,
		Code:       e.Code,
		Message:    e.Message,
		Details:    e.Details,
		StatusCode: e.StatusCode,
		Cause:      cause,
	}
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrComplaintNotFound = NewNotFoundError("complaint not found", ErrCodeComplaintNotFound)
	// ErrUnauthorizedAccess covers both role and ownership mismatches so the
	// response never reveals whether the resource exists for someone else.
	ErrUnauthorizedAccess   = NewForbiddenError("you do not have permission to access this complaint", ErrCodeUnauthorizedAccess)
	ErrInvalidTransition    = NewValidationError("status transition is not allowed", ErrCodeInvalidTransition)
	ErrComplaintNotEditable = NewValidationError("only pending complaints can be edited", ErrCodeComplaintNotEditable)
	ErrAlreadyAssigned      = NewConflictError("complaint is already assigned", ErrCodeAlreadyAssigned)
	ErrAssigneeNotStaff     = NewValidationError("assignee must be a staff member", ErrCodeAssigneeNotStaff)
	ErrDeleteNotConfirmed   = NewValidationError("deletion requires confirmation", ErrCodeDeleteNotConfirmed)

	// ErrInvalidCredentials is deliberately generic: it never says whether the
	// email or the password was wrong.
	ErrInvalidCredentials = NewUnauthorizedError("invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("user account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
	ErrEmailTaken         = NewConflictError("email already registered", ErrCodeEmailTaken)
	ErrEmailDomain        = NewValidationError("email domain is not allowed for registration", ErrCodeEmailDomain)

	ErrUploadTooLarge  = NewValidationError("uploaded file exceeds the maximum size", ErrCodeUploadTooLarge)
	ErrUploadExtension = NewValidationError("file type is not allowed", ErrCodeUploadExtension)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
