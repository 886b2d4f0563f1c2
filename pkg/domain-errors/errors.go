// Package domainerrors provides coded errors for domain logic. Services
// return these (or wrap store sentinels into them) so the transport layer can
// translate outcomes into HTTP responses without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	// CodeMissingInput marks a required field that was absent from a request.
	CodeMissingInput Code = "missing_input"
	// CodeConflict marks an operation rejected because the resource already exists.
	CodeConflict Code = "conflict"
	// CodeUnauthorized marks a denied proof, an unregistered account, or a
	// wrong/missing validation code.
	CodeUnauthorized Code = "unauthorized"
	// CodeBadRequest marks a request that is structurally unusable, such as an
	// authorization attempt carrying no proof at all.
	CodeBadRequest Code = "bad_request"
	CodeNotFound   Code = "not_found"
	CodeInternal   Code = "internal"
)

// Error is a domain error carrying a classification code. The wrapped cause,
// when present, stays reachable through errors.Is/As chains.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is a readability alias for HasCode at call sites shaped like errors.Is.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// produced outside the domain layer.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the HTTP status this service responds with.
// Denials deliberately collapse to 401: the API reports missing fields,
// duplicate keys, and failed proofs uniformly as unauthorized, keeps 400 for
// requests carrying no usable proof, and reserves 404/500 for routing and
// internal faults.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeMissingInput, CodeConflict, CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
