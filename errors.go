package nxsearch

import (
	"fmt"
	"strings"
)

// Code classifies an engine-level failure. See §7 of the design for the
// full taxonomy and which codes are locally recoverable (none are).
type Code int

const (
	// CodeSuccess is never actually stored as an error; it exists so a
	// zero Code reads naturally where callers compare against it.
	CodeSuccess Code = iota
	// CodeFatal marks irrecoverable index corruption (bad magic/version,
	// a malformed record, an unresolvable term id in strict sync).
	CodeFatal
	// CodeSystem marks an OS/I/O failure: open, mmap, truncate, read, write.
	CodeSystem
	// CodeInvalid marks a bad argument: empty text, zero doc id, a bad
	// index name, a bad parameter value, a query syntax error.
	CodeInvalid
	// CodeExists marks a duplicate term, doc id, index name or filter name.
	CodeExists
	// CodeMissing marks a doc/index not found, or an unknown ranking algo.
	CodeMissing
	// CodeLimit marks a size/depth limit exceeded: term too long, query
	// nesting beyond the cap, fuzzy distance beyond 64.
	CodeLimit
)

func (c Code) String() string {
	switch c {
	case CodeSuccess:
		return "SUCCESS"
	case CodeFatal:
		return "FATAL"
	case CodeSystem:
		return "SYSTEM"
	case CodeInvalid:
		return "INVALID"
	case CodeExists:
		return "EXISTS"
	case CodeMissing:
		return "MISSING"
	case CodeLimit:
		return "LIMIT"
	default:
		return "UNKNOWN"
	}
}

// Error is the (code, message) pair returned by every fallible engine
// operation per §7. It wraps an underlying cause when one exists so
// callers can still use errors.Is/errors.As against it.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// newErr builds an *Error, optionally wrapping a cause.
func newErr(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func errFatal(cause error, format string, args ...any) *Error {
	return newErr(CodeFatal, cause, format, args...)
}

func errSystem(cause error, format string, args ...any) *Error {
	return newErr(CodeSystem, cause, format, args...)
}

func errInvalid(cause error, format string, args ...any) *Error {
	return newErr(CodeInvalid, cause, format, args...)
}

func errExists(format string, args ...any) *Error {
	return newErr(CodeExists, nil, format, args...)
}

func errMissing(format string, args ...any) *Error {
	return newErr(CodeMissing, nil, format, args...)
}

func errLimit(cause error, format string, args ...any) *Error {
	return newErr(CodeLimit, cause, format, args...)
}

// classifyCause builds an *Error from cause, routing it to errLimit or
// errFatal when cause's message carries the ": limit:"/": fatal:"
// markers that termstore, dtstore and eval embed in their error text by
// convention, or to fallback (e.g. errSystem, errInvalid) otherwise;
// query syntax errors carry neither marker and take the fallback.
func classifyCause(cause error, fallback func(error, string, ...any) *Error, format string, args ...any) *Error {
	msg := cause.Error()
	switch {
	case strings.Contains(msg, ": limit:"):
		return errLimit(cause, format, args...)
	case strings.Contains(msg, ": fatal:"):
		return errFatal(cause, format, args...)
	default:
		return fallback(cause, format, args...)
	}
}
