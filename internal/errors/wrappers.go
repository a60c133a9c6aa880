// Package errors holds the generation-time error taxonomy and re-exports
// github.com/cockroachdb/errors for wrapping, hints and inspection.
package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Wrapping and inspection
var (
	Wrap        = crdb.Wrap
	Wrapf       = crdb.Wrapf
	WithHint    = crdb.WithHint
	GetAllHints = crdb.GetAllHints
	As          = crdb.As
)

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *GenerationError {
	return New(FileSystemErrorCode, fmt.Sprintf("failed to %s file '%s'", operation, path)).
		WithCause(cause)
}

// WrapSyntaxError wraps a directive grammar failure
func WrapSyntaxError(item string, loc SourceLocation, cause error) *GenerationError {
	return New(SyntaxErrorCode, fmt.Sprintf("failed to parse %s", item)).
		WithLocation(loc).
		WithCause(cause).
		WithSuggestion(`options are written as key="value" pairs separated by spaces`)
}

// WrapConfigurationError wraps a rejected option value
func WrapConfigurationError(key string, loc SourceLocation, cause error) *GenerationError {
	return New(ConfigurationErrorCode, fmt.Sprintf("invalid option '%s'", key)).
		WithLocation(loc).
		WithCause(cause)
}
