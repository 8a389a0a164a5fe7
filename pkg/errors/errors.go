// Package errors provides coded errors for pydigger.
//
// Codes group failures the way a download run reports them:
//   - NETWORK_ERROR, NOT_FOUND: feed, metadata or repository transport
//   - PARSE_ERROR: malformed feed, metadata JSON or publication timestamp
//   - STORAGE_ERROR: record and statistics files
//   - PROBE_ERROR: repository checkout or inspection
//   - INVALID_*: rejected input or configuration
//
// Wrap keeps the cause reachable for the standard errors package:
//
//	err := errors.Wrap(errors.ErrCodeStorage, cause, "read record %s", path)
//	if errors.Is(err, errors.ErrCodeStorage) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category. Run statistics count failures
// per code and the HTTP API maps codes to status codes.
type Code string

const (
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"

	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeNetwork  Code = "NETWORK_ERROR"

	ErrCodeParse   Code = "PARSE_ERROR"
	ErrCodeStorage Code = "STORAGE_ERROR"
	ErrCodeProbe   Code = "PROBE_ERROR"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error carries a Code, a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// outermost returns the first *Error in err's chain.
func outermost(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	e, ok := outermost(err)
	return ok && e.Code == code
}

// GetCode returns the outermost code in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := outermost(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix and cause, or
// err.Error() for errors without a code.
func UserMessage(err error) string {
	if e, ok := outermost(err); ok {
		return e.Message
	}
	return err.Error()
}
