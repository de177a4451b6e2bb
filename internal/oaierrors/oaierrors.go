// Package oaierrors is the OAI-PMH protocol error taxonomy from spec
// Section 7, ported from the Python source's exception module. Every
// error the ProtocolEngine can return to the HTTP layer implements
// Error and carries the exact <error code="..."> pairing the protocol
// requires.
package oaierrors

import (
	"fmt"
	"regexp"
)

// illegalXMLChars matches the code points that are illegal inside XML
// character data (http://www.w3.org/TR/REC-xml/#charsets), removed
// from every error message before it is returned to a caller.
var illegalXMLChars = regexp.MustCompile(`[\x{0000}-\x{0008}\x{000B}-\x{000C}\x{000E}-\x{001F}\x{FFFE}-\x{FFFF}]`)

// surrogateRange matches lone UTF-16 surrogate code points that, if
// ever smuggled into a Go string via invalid UTF-8, would also be
// illegal in XML text.
var surrogateRange = regexp.MustCompile(`[\x{D800}-\x{DFFF}]`)

// FilterIllegalChars strips characters illegal in XML text from s.
func FilterIllegalChars(s string) string {
	s = illegalXMLChars.ReplaceAllString(s, "")
	s = surrogateRange.ReplaceAllString(s, "")
	return s
}

// Error is any OAI-PMH protocol error: it carries the <error code>
// attribute value and a human-readable message.
type Error interface {
	error
	Code() string
}

type baseError struct {
	code    string
	message string
}

func (e *baseError) Code() string  { return e.code }
func (e *baseError) Error() string { return e.message }

func newError(code, message string) *baseError {
	return &baseError{code: code, message: FilterIllegalChars(message)}
}

// Bad verb errors (code "badVerb").
func ErrMissingVerb() Error  { return newError("badVerb", "Missing verb") }
func ErrInvalidVerb() Error  { return newError("badVerb", "Invalid verb") }
func ErrRepeatedVerb() Error { return newError("badVerb", "Repeated verb") }

// ErrBadArgument reports an illegal, missing, or repeated argument
// (code "badArgument").
func ErrBadArgument(message string) Error {
	return newError("badArgument", message)
}

// Bad resumption token errors (code "badResumptionToken").
func ErrInvalidResumptionToken() Error {
	return newError("badResumptionToken", "Invalid resumption token")
}
func ErrExpiredResumptionToken() Error {
	return newError("badResumptionToken", "Resumption token has expired.")
}

// Cannot disseminate format errors (code "cannotDisseminateFormat").
func ErrUnsupportedMetadataFormat(prefix string) Error {
	return newError("cannotDisseminateFormat",
		fmt.Sprintf("Metadata format %q is not supported by this repository.", prefix))
}
func ErrUnavailableMetadataFormat(prefix, identifier string) Error {
	return newError("cannotDisseminateFormat",
		fmt.Sprintf("Metadata format %q is not available for item %q.", prefix, identifier))
}

// ErrIdDoesNotExist reports an unknown item identifier
// (code "idDoesNotExist").
func ErrIdDoesNotExist(identifier string) Error {
	return newError("idDoesNotExist", fmt.Sprintf("Identifier %q does not exist.", identifier))
}

// ErrNoRecordsMatch reports an empty list result (code "noRecordsMatch").
func ErrNoRecordsMatch() Error {
	return newError("noRecordsMatch", "No matching records found.")
}

// ErrNoMetadataFormats reports no formats for a given item
// (code "noMetadataFormats").
func ErrNoMetadataFormats(identifier string) Error {
	return newError("noMetadataFormats",
		fmt.Sprintf("No metadata formats available for item %q.", identifier))
}

// ErrNoSetHierarchy reports that sets are unsupported (code
// "noSetHierarchy").
func ErrNoSetHierarchy() Error {
	return newError("noSetHierarchy", "This repository does not support sets.")
}
