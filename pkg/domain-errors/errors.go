// Package domainerrors defines the typed error taxonomy returned by services.
//
// Services never panic or throw across actor boundaries: every failure is a
// *Error carrying a stable Code. The transport layer maps codes to HTTP
// statuses with ToHTTPStatus and never inspects messages.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error identifier.
type Code string

const (
	// Validation family: malformed input, rejected at the boundary.
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"

	// Lookup family.
	CodeNotFound Code = "not_found"

	// Conflict family: duplicate registration, already-decided document,
	// resubmission of a consumed code.
	CodeConflict Code = "conflict"

	// Permission family: reviewer-only transition attempted by an applicant,
	// or applicant action on a non-active account.
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"

	// Workflow outcomes.
	CodeInvalidCode     Code = "invalid_code"
	CodeInvalidState    Code = "invalid_state"
	CodeTooManyRequests Code = "too_many_requests"

	CodeTimeout  Code = "timeout"
	CodeInternal Code = "internal_error"
)

// Error is the concrete domain error type.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error without an underlying cause.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether any domain error in err's chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	for err != nil {
		if errors.As(err, &de) {
			if de.Code == code {
				return true
			}
			err = de.Err
			continue
		}
		return false
	}
	return false
}

// Is is shorthand for HasCode, mirroring errors.Is call sites.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost domain code, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost domain message, or a generic message.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a code to the status the transport layer should use.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidInput, CodeInvalidCode:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvalidState:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
