package shared

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to clients alongside the HTTP status.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidState        = "INVALID_STATE"
	CodeInsufficientData    = "INSUFFICIENT_DATA"
	CodeGenerationParse     = "GENERATION_PARSE_ERROR"
	CodeProviderError       = "PROVIDER_ERROR"
	CodeBadRequest          = "BAD_REQUEST"
	CodeConflict            = "CONFLICT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInternal            = "INTERNAL_ERROR"
)

type AppError struct {
	StatusCode int         `json:"-"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Err        error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func NewNotFoundError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Code: CodeNotFound, Message: message, Err: err}
}

func NewInvalidStateError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Code: CodeInvalidState, Message: message, Err: err}
}

func NewInsufficientDataError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Code: CodeInsufficientData, Message: message, Err: err}
}

func NewGenerationParseError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusBadGateway, Code: CodeGenerationParse, Message: message, Err: err}
}

func NewProviderError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusBadGateway, Code: CodeProviderError, Message: message, Err: err}
}

func NewBadRequestError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Code: CodeBadRequest, Message: message, Err: err}
}

func NewConflictError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusConflict, Code: CodeConflict, Message: message, Err: err}
}

func NewUnauthorizedError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusUnauthorized, Code: CodeUnauthorized, Message: message, Err: err}
}

func NewForbiddenError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusForbidden, Code: CodeForbidden, Message: message, Err: err}
}

func NewInternalError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Code: CodeInternal, Message: message, Err: err}
}
