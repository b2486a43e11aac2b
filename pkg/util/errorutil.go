package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ticketdesk/transcript-ledger/internal/ledger"
	"github.com/ticketdesk/transcript-ledger/internal/store"
	"github.com/ticketdesk/transcript-ledger/internal/transcript"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying later could succeed.
func (e *DomainError) Transient() bool {
	return e.Code == CodeStoreUnavailable || e.Code == CodeStoreRateLimited
}

// Error codes surfaced to operators and API callers.
const (
	CodeValidation          = "VALIDATION_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeMalformedTranscript = "MALFORMED_TRANSCRIPT"
	CodeRowMoved            = "ROW_MOVED"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
	CodeStoreRateLimited    = "STORE_RATE_LIMITED"
	CodeInternal            = "INTERNAL_ERROR"
)

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts ledger, parser and store errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	switch {
	case errors.Is(err, store.ErrStoreRateLimited):
		return &DomainError{Code: CodeStoreRateLimited, Message: "record store rate limited", HTTPStatus: http.StatusServiceUnavailable, Err: err}
	case errors.Is(err, store.ErrStoreUnavailable):
		return &DomainError{Code: CodeStoreUnavailable, Message: "record store unavailable", HTTPStatus: http.StatusServiceUnavailable, Err: err}
	case errors.Is(err, ledger.ErrNotFound):
		return &DomainError{Code: CodeNotFound, Message: "ticket not found", HTTPStatus: http.StatusNotFound, Err: err}
	case errors.Is(err, ledger.ErrRowMoved):
		return &DomainError{Code: CodeRowMoved, Message: "ticket row moved", HTTPStatus: http.StatusConflict, Err: err}
	case errors.Is(err, transcript.ErrMalformedTranscript):
		return &DomainError{Code: CodeMalformedTranscript, Message: "malformed transcript", HTTPStatus: http.StatusUnprocessableEntity, Err: err}
	case errors.Is(err, ledger.ErrInvalidValue):
		return &DomainError{Code: CodeValidation, Message: "invalid ledger value", HTTPStatus: http.StatusBadRequest, Err: err}
	}
	return NewInternalError(err).(*DomainError)
}

// MapError converts generic errors to DomainError.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
