// Package apperr defines the structured errors surfaced at the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeProposalNotFound = "PROPOSAL_NOT_FOUND"
	CodeAlreadyResolved  = "ALREADY_RESOLVED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternal         = "INTERNAL_ERROR"
)

var statusByCode = map[string]int{
	CodeValidation:       http.StatusBadRequest,
	CodeNotFound:         http.StatusNotFound,
	CodeProposalNotFound: http.StatusNotFound,
	CodeAlreadyResolved:  http.StatusConflict,
	CodeUnauthorized:     http.StatusUnauthorized,
	CodeForbidden:        http.StatusForbidden,
	CodeRateLimited:      http.StatusTooManyRequests,
	CodeInternal:         http.StatusInternalServerError,
}

// Sentinels for errors.Is. Matching is by code, so any *Error with the same code matches.
var (
	ErrValidation       = &Error{Code: CodeValidation}
	ErrNotFound         = &Error{Code: CodeNotFound}
	ErrProposalNotFound = &Error{Code: CodeProposalNotFound}
	ErrAlreadyResolved  = &Error{Code: CodeAlreadyResolved}
	ErrUnauthorized     = &Error{Code: CodeUnauthorized}
	ErrForbidden        = &Error{Code: CodeForbidden}
)

type Error struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Status returns the HTTP status associated with the error code.
func (e *Error) Status() int {
	if s, ok := statusByCode[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// WithDetails returns a copy of e carrying the given machine-readable details.
func (e *Error) WithDetails(details map[string]any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

func New(code, message string) *Error {
	return &Error{Code: code, Message: message, Details: map[string]any{}}
}

func Validation(format string, args ...any) *Error {
	return New(CodeValidation, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) *Error {
	return New(CodeNotFound, fmt.Sprintf(format, args...))
}

func ProposalNotFound(id string) *Error {
	return New(CodeProposalNotFound, fmt.Sprintf("Proposal %s not found", id)).
		WithDetails(map[string]any{"id": id})
}

func AlreadyResolved(id, status string) *Error {
	return New(CodeAlreadyResolved, fmt.Sprintf("Proposal %s is already %s", id, status)).
		WithDetails(map[string]any{"id": id, "status": status})
}

func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(CodeForbidden, message)
}

// RateLimited is the only retryable error.
func RateLimited() *Error {
	e := New(CodeRateLimited, "Rate limit exceeded")
	e.Retryable = true
	return e
}

// Internal is the generic error returned to clients for unexpected failures.
func Internal() *Error {
	return New(CodeInternal, "An unexpected error occurred")
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
