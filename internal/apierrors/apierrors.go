// Package apierrors maps record store errors onto HTTP statuses and error codes.
package apierrors

import (
	"context"
	"errors"
	"net/http"

	"github.com/celerix-dev/celerix-grid/pkg/schema"
)

// ErrorCode represents application-specific error codes.
type ErrorCode string

const (
	ErrorCodeNotFound            ErrorCode = "NOT_FOUND"
	ErrorCodeInvalidField        ErrorCode = "INVALID_FIELD"
	ErrorCodeValidation          ErrorCode = "VALIDATION_ERROR"
	ErrorCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrorCodeTimeout             ErrorCode = "TIMEOUT"
	ErrorCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON error body of the record service.
type ErrorResponse struct {
	Error string    `json:"error"`
	Code  ErrorCode `json:"code"`
}

// Classify returns the HTTP status and error code for err.
func Classify(err error) (int, ErrorCode) {
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, schema.ErrNotFound):
		return http.StatusNotFound, ErrorCodeNotFound
	case errors.Is(err, schema.ErrInvalidField):
		return http.StatusUnprocessableEntity, ErrorCodeInvalidField
	case errors.Is(err, schema.ErrValidation):
		return http.StatusBadRequest, ErrorCodeValidation
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorCodeTimeout
	case errors.Is(err, schema.ErrUpstreamUnavailable):
		return http.StatusBadGateway, ErrorCodeUpstreamUnavailable
	default:
		return http.StatusInternalServerError, ErrorCodeInternal
	}
}

// StatusFor is Classify without the code.
func StatusFor(err error) int {
	status, _ := Classify(err)
	return status
}

// FromStatus maps a record service error status back onto the schema sentinel it came from.
// It returns nil for statuses that do not correspond to a store error kind.
func FromStatus(status int) error {
	switch status {
	case http.StatusNotFound:
		return schema.ErrNotFound
	case http.StatusUnprocessableEntity:
		return schema.ErrInvalidField
	case http.StatusBadRequest:
		return schema.ErrValidation
	}
	return nil
}

// Message is the user-facing text for err.
func Message(err error) string {
	switch _, code := Classify(err); code {
	case ErrorCodeNotFound:
		return "Record not found"
	case ErrorCodeInvalidField:
		return "That field cannot be edited"
	case ErrorCodeValidation:
		return "Invalid input: " + err.Error()
	case ErrorCodeTimeout:
		return "The record service timed out"
	case ErrorCodeUpstreamUnavailable:
		return "The record service is unavailable"
	default:
		return "Something went wrong"
	}
}
