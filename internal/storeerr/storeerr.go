// Package storeerr defines the typed error family returned by
// internal/store and internal/reconciler, following the
// code+message shape of the teacher's internal/shared/errors package.
package storeerr

import "fmt"

// Code identifies the kind of store-level failure.
type Code string

const (
	// InvalidPrefix is raised when a Format prefix contains characters
	// outside the URL-unreserved set (spec §3).
	InvalidPrefix Code = "INVALID_PREFIX"
	// InvalidSpec is raised when a Set spec does not match the
	// colon-segment grammar (spec §3).
	InvalidSpec Code = "INVALID_SPEC"
	// UnknownFormat is raised when a Record references a Format prefix
	// that does not exist.
	UnknownFormat Code = "UNKNOWN_FORMAT"
	// UnknownIdentifier is raised when a Record references an Item
	// identifier that does not exist.
	UnknownIdentifier Code = "UNKNOWN_IDENTIFIER"
	// XMLInvalid is raised when Record XML fails validation (spec §4.2).
	XMLInvalid Code = "XML_INVALID"
	// InvalidArgument is raised on malformed query arguments, e.g. a
	// negative Record.list limit.
	InvalidArgument Code = "INVALID_ARGUMENT"
)

// Error is a typed store failure carrying a Code and a diagnostic
// message, inspected at call sites with errors.As.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
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

// HarvestError wraps a failure encountered during a Reconciler step. It
// is never surfaced as an OAI-PMH protocol error (spec §7) -- it aborts
// the importer's exit code instead.
type HarvestError struct {
	Step string
	Err  error
}

func NewHarvestError(step string, err error) *HarvestError {
	return &HarvestError{Step: step, Err: err}
}

func (e *HarvestError) Error() string {
	return fmt.Sprintf("harvest failed during %s: %v", e.Step, e.Err)
}

func (e *HarvestError) Unwrap() error {
	return e.Err
}
