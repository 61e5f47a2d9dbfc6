// Package errs defines the typed error taxonomy shared by every
// component of the analysis engine.
package errs

import "fmt"

// Type classifies an error by the component boundary it crossed, not
// by its specific cause.
type Type int

const (
	// Repository covers an invalid/unreadable repo root or a failed
	// HEAD/object resolution. Always fatal to the request.
	Repository Type = iota
	// Storage covers database open, schema, transaction, or query
	// failures. Always fatal to the request.
	Storage
	// Indexing covers an unexpected diff or tree-walk failure. Usually
	// recovered per-commit by the indexer; only escalated when the
	// whole batch cannot proceed.
	Indexing
	// Extraction covers a test-file read or regex failure. Always
	// recovered locally by the extractor.
	Extraction
	// Validation covers invalid caller input (empty path, empty note
	// content, non-normalizable path).
	Validation
	// DeadlineExceeded marks a request that ran out of its soft/hard
	// deadline budget.
	DeadlineExceeded
	// Internal covers anything that should not happen.
	Internal
)

func (t Type) String() string {
	switch t {
	case Repository:
		return "repository"
	case Storage:
		return "storage"
	case Indexing:
		return "indexing"
	case Extraction:
		return "extraction"
	case Validation:
		return "validation"
	case DeadlineExceeded:
		return "deadline_exceeded"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a structured error carrying its type and an optional cause.
type Error struct {
	Kind    Type
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches by Kind, so callers can do errors.Is(err, errs.New(errs.Storage, ""))
// or more idiomatically errors.As(err, &target) and compare Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an error of the given kind.
func New(kind Type, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with formatting.
func Newf(kind Type, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a kind and message. Returns nil if
// err is nil.
func Wrap(kind Type, err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: err}
}

// Wrapf wraps an existing error with a kind and formatted message.
func Wrapf(kind Type, err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: err}
}

// Convenience constructors, one per error kind callers construct directly.

func RepositoryError(format string, args ...interface{}) *Error {
	return Newf(Repository, format, args...)
}

func StorageError(err error, format string, args ...interface{}) *Error {
	return Wrapf(Storage, err, format, args...)
}

func IndexingError(err error, format string, args ...interface{}) *Error {
	return Wrapf(Indexing, err, format, args...)
}

func ValidationError(format string, args ...interface{}) *Error {
	return Newf(Validation, format, args...)
}

func DeadlineError(format string, args ...interface{}) *Error {
	return Newf(DeadlineExceeded, format, args...)
}

// KindOf returns the Type of err, or Internal if err is not an *Error.
func KindOf(err error) Type {
	if err == nil {
		return Internal
	}
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return Internal
}

// IsFatal reports whether err should abort the enclosing request. Only
// Repository and Storage errors are unconditionally fatal; everything
// else is either recoverable or a soft signal (DeadlineExceeded).
func IsFatal(err error) bool {
	switch KindOf(err) {
	case Repository, Storage:
		return true
	default:
		return false
	}
}
