// Package apierror defines the error taxonomy surfaced to API clients.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for clients
type Kind string

const (
	KindValidation              Kind = "ValidationError"
	KindUnauthenticated         Kind = "Unauthenticated"
	KindInsufficientTokens      Kind = "InsufficientTokens"
	KindProviderAuthFailed      Kind = "ProviderAuthFailed"
	KindTranscriptNotFound      Kind = "TranscriptNotFound"
	KindTranscriptFetchFailed   Kind = "TranscriptFetchFailed"
	KindContentGenerationFailed Kind = "ContentGenerationFailed"
	KindRateLimited             Kind = "RateLimited"
	KindNotFound                Kind = "NotFound"
	KindInternal                Kind = "Internal"
)

// GenericMessage replaces 500 messages in production
const GenericMessage = "An unexpected error occurred"

// Error is an error with an HTTP status code and a client-safe message
type Error struct {
	Code    int
	Kind    Kind
	Message string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Public returns the message to show a client. Server errors are masked
// in production.
func (e *Error) Public(production bool) string {
	if production && e.Code >= http.StatusInternalServerError {
		return GenericMessage
	}
	return e.Message
}

func newError(code int, kind Kind, op string, err error, message string) *Error {
	return &Error{
		Code:    code,
		Kind:    kind,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func Validation(op string, err error, message string) *Error {
	return newError(http.StatusBadRequest, KindValidation, op, err, message)
}

func Unauthenticated(op string, err error, message string) *Error {
	return newError(http.StatusUnauthorized, KindUnauthenticated, op, err, message)
}

func InsufficientTokens(op string, err error) *Error {
	return newError(http.StatusPaymentRequired, KindInsufficientTokens, op, err, "Insufficient tokens")
}

func ProviderAuthFailed(op string, err error) *Error {
	return newError(http.StatusForbidden, KindProviderAuthFailed, op, err, "Authentication failed with transcript service")
}

func TranscriptNotFound(op string, err error) *Error {
	return newError(http.StatusNotFound, KindTranscriptNotFound, op, err, "Transcript not found for this video")
}

func TranscriptFetchFailed(op string, err error) *Error {
	return newError(http.StatusInternalServerError, KindTranscriptFetchFailed, op, err, "Failed to fetch transcript")
}

func ContentGenerationFailed(op string, err error, message string) *Error {
	return newError(http.StatusInternalServerError, KindContentGenerationFailed, op, err, message)
}

func Internal(op string, err error, message string) *Error {
	return newError(http.StatusInternalServerError, KindInternal, op, err, message)
}

// From returns err as an *Error, wrapping unknown errors as Internal
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("", err, "Internal server error")
}
