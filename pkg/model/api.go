package model

import (
	"fmt"
	"time"
)

// Response is the standard envelope for all trace viewer API responses.
type Response struct {
	Status    string    `json:"status"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Error     *APIError `json:"error"`
}

// ErrorCode identifies a class of API error.
type ErrorCode string

const (
	ErrNotFound ErrorCode = "not_found"
	ErrInternal ErrorCode = "internal"
	ErrBadInput ErrorCode = "bad_input"
)

// APIError is the machine-readable error payload of a failed response.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(what, id string) *APIError {
	return &APIError{Code: ErrNotFound, Message: fmt.Sprintf("%s %s not found", what, id)}
}

// NewInternalError wraps an unexpected server-side failure.
func NewInternalError(err error) *APIError {
	return &APIError{Code: ErrInternal, Message: err.Error()}
}
