package annotations

import (
	"fmt"
	"strings"

	bgerrors "github.com/toyz/bindgen/internal/errors"
)

// AnnotationType represents the kind of generation trigger
type AnnotationType int

const (
	// InvokeAnnotation applies to an interface and emits invocation stubs
	InvokeAnnotation AnnotationType = iota
	// EventsAnnotation applies to a sealed interface and emits event metadata
	EventsAnnotation
	// SkeletonAnnotation names an interface and takes the file's functions as candidates
	SkeletonAnnotation
)

// String returns the string representation of the annotation type
func (a AnnotationType) String() string {
	switch a {
	case InvokeAnnotation:
		return "invoke"
	case EventsAnnotation:
		return "events"
	case SkeletonAnnotation:
		return "skeleton"
	default:
		return "unknown"
	}
}

// ParseAnnotationType converts string to AnnotationType
func ParseAnnotationType(s string) (AnnotationType, error) {
	switch s {
	case "invoke":
		return InvokeAnnotation, nil
	case "events":
		return EventsAnnotation, nil
	case "skeleton":
		return SkeletonAnnotation, nil
	default:
		return 0, fmt.Errorf("unknown annotation type: %s", s)
	}
}

// SourceLocation represents the location of an annotation in source code
type SourceLocation = bgerrors.SourceLocation

// ParsedAnnotation represents a fully parsed directive
type ParsedAnnotation struct {
	Type       AnnotationType    // Annotation type enum
	Target     string            // Positional target (skeleton interface name)
	Parameters map[string]string // Explicit key="value" options
	Location   SourceLocation    // Source location
	Raw        string            // Original directive text
}

// GetString returns a string parameter value with optional default
func (p *ParsedAnnotation) GetString(paramName string, defaultValue ...string) string {
	if value, exists := p.Parameters[paramName]; exists {
		return value
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetStringSlice returns a comma-separated parameter as a slice
func (p *ParsedAnnotation) GetStringSlice(paramName string, defaultValue ...[]string) []string {
	if value, exists := p.Parameters[paramName]; exists {
		return splitList(value)
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return nil
}

// HasParameter checks if a parameter exists
func (p *ParsedAnnotation) HasParameter(paramName string) bool {
	_, exists := p.Parameters[paramName]
	return exists
}

// ParameterType represents the type of a parameter
type ParameterType int

const (
	StringType ParameterType = iota
	StringSliceType
)

// String returns the string representation of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "string"
	case StringSliceType:
		return "[]string"
	default:
		return "unknown"
	}
}

// ParameterSpec defines the specification for an annotation parameter
type ParameterSpec struct {
	Type        ParameterType      // Parameter type
	Required    bool               // Whether parameter is required
	Description string             // Parameter description
	Validator   func(string) error // Custom validator, called per element for slices
}

// AnnotationSchema defines the schema for an annotation type
type AnnotationSchema struct {
	Type           AnnotationType           // Annotation type enum
	Description    string                   // Human-readable description
	Parameters     map[string]ParameterSpec // Parameter specifications
	TargetRequired bool                     // Whether a positional target must follow the kind
	TargetName     string                   // What the target names, for messages
	Examples       []string                 // Usage examples
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
