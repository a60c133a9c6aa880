package errors

import (
	"fmt"
	"go/token"
	"strings"
)

// BindgenError defines the base interface for all generation-time errors
type BindgenError interface {
	error
	ErrorCode() ErrorCode
	Location() SourceLocation
	Suggestions() []string
	Unwrap() error
}

// ErrorCode represents the type of error that occurred
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota
	SyntaxErrorCode
	ConfigurationErrorCode
	TargetErrorCode

	// Signature errors
	ReceiverErrorCode
	ParameterPatternErrorCode
	TypeParametersErrorCode
	ReturnShapeErrorCode
	DuplicateNameErrorCode

	// Event union errors
	EventShapeErrorCode

	FileSystemErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case SyntaxErrorCode:
		return "SyntaxError"
	case ConfigurationErrorCode:
		return "ConfigurationError"
	case TargetErrorCode:
		return "TargetError"
	case ReceiverErrorCode:
		return "ReceiverError"
	case ParameterPatternErrorCode:
		return "ParameterPatternError"
	case TypeParametersErrorCode:
		return "TypeParametersError"
	case ReturnShapeErrorCode:
		return "ReturnShapeError"
	case DuplicateNameErrorCode:
		return "DuplicateNameError"
	case EventShapeErrorCode:
		return "EventShapeError"
	case FileSystemErrorCode:
		return "FileSystemError"
	default:
		return "UnknownError"
	}
}

// SourceLocation represents where an error occurred in source code
type SourceLocation struct {
	File   string // file path where error occurred
	Line   int    // line number (1-based)
	Column int    // column number (1-based)
}

// At converts a token position into a SourceLocation
func At(pos token.Position) SourceLocation {
	return SourceLocation{File: pos.Filename, Line: pos.Line, Column: pos.Column}
}

// String returns a formatted string representation of the location
func (s SourceLocation) String() string {
	if s.File == "" {
		return "unknown location"
	}
	if s.Line == 0 {
		return s.File
	}
	if s.Column == 0 {
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// IsEmpty returns true if the location has no useful information
func (s SourceLocation) IsEmpty() bool {
	return s.File == ""
}

// GenerationError is raised for malformed generator input. It aborts the whole
// generation unit; nothing is emitted for a unit that produced one.
type GenerationError struct {
	Code      ErrorCode      // type of error
	Message   string         // error message
	Loc       SourceLocation // where the offending construct starts
	Construct string         // offending construct as written, if known
	Cause     error          // underlying error cause
	Hints     []string       // helpful suggestions for fixing the error
}

// Error implements the error interface
func (e *GenerationError) Error() string {
	msg := e.Message
	if e.Construct != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Construct)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Loc.IsEmpty() {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Loc.String(), msg)
}

// ErrorCode returns the error code
func (e *GenerationError) ErrorCode() ErrorCode {
	return e.Code
}

// Location returns the source location where the error occurred
func (e *GenerationError) Location() SourceLocation {
	return e.Loc
}

// Suggestions returns helpful suggestions for fixing the error
func (e *GenerationError) Suggestions() []string {
	return e.Hints
}

// ErrorHint lets cockroachdb/errors.GetAllHints surface the suggestions.
func (e *GenerationError) ErrorHint() string {
	return strings.Join(e.Hints, "\n")
}

// Unwrap returns the underlying error cause for error chain inspection
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// WithLocation adds location information to the error
func (e *GenerationError) WithLocation(loc SourceLocation) *GenerationError {
	e.Loc = loc
	return e
}

// WithConstruct records the offending construct
func (e *GenerationError) WithConstruct(construct string) *GenerationError {
	e.Construct = construct
	return e
}

// WithCause adds an underlying error cause
func (e *GenerationError) WithCause(cause error) *GenerationError {
	e.Cause = cause
	return e
}

// WithSuggestion adds a helpful suggestion for fixing the error
func (e *GenerationError) WithSuggestion(suggestion string) *GenerationError {
	e.Hints = append(e.Hints, suggestion)
	return e
}

// New creates a new GenerationError with the specified code and message
func New(code ErrorCode, message string) *GenerationError {
	return &GenerationError{
		Code:    code,
		Message: message,
		Hints:   make([]string, 0),
	}
}

// Newf creates a new GenerationError with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *GenerationError {
	return New(code, fmt.Sprintf(format, args...))
}

// AsGenerationError returns the first GenerationError in err's chain
func AsGenerationError(err error) (*GenerationError, bool) {
	var genErr *GenerationError
	if As(err, &genErr) {
		return genErr, true
	}
	return nil, false
}

// HasCode reports whether err carries a GenerationError with the given code
func HasCode(err error, code ErrorCode) bool {
	genErr, ok := AsGenerationError(err)
	return ok && genErr.Code == code
}

// MultipleErrors represents per-unit failures collected by the driver
type MultipleErrors struct {
	Errors []error
}

// Error implements the error interface
func (e *MultipleErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var messages []string
	for i, err := range e.Errors {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}

	return fmt.Sprintf("multiple errors (%d total):\n%s", len(e.Errors), strings.Join(messages, "\n"))
}

// Unwrap returns all underlying errors for inspection
func (e *MultipleErrors) Unwrap() []error {
	return e.Errors
}

// Add adds an error to the collection
func (e *MultipleErrors) Add(err error) {
	e.Errors = append(e.Errors, err)
}

// IsEmpty returns true if there are no errors
func (e *MultipleErrors) IsEmpty() bool {
	return len(e.Errors) == 0
}

// ErrorOrNil returns nil for an empty collection
func (e *MultipleErrors) ErrorOrNil() error {
	if e.IsEmpty() {
		return nil
	}
	return e
}
