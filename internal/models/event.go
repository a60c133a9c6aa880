package models

import (
	"go/ast"
	"go/token"
)

// PayloadShape is the form of a variant's payload
type PayloadShape int

const (
	PayloadNone PayloadShape = iota
	PayloadPositional
	PayloadNamed
)

// String returns the string representation of the payload shape
func (s PayloadShape) String() string {
	switch s {
	case PayloadNone:
		return "none"
	case PayloadPositional:
		return "positional"
	case PayloadNamed:
		return "named"
	default:
		return "unknown"
	}
}

// EventDescription is a sealed interface and the variants implementing it
type EventDescription struct {
	Name     string    // sealed interface name
	Exported bool      // whether the interface name is exported
	Marker   string    // the unexported marker method
	Variants []Variant // variants in declaration order
	Config   GenerationConfig
	Pos      token.Pos
}

// Variant is one case of an event union
type Variant struct {
	Name    string
	Shape   PayloadShape
	Fields  []Field    // PayloadNamed
	Types   []ast.Expr // PayloadPositional
	Pointer bool       // marker is declared on *Name
	Pos     token.Pos
}

// Field is a named payload field
type Field struct {
	Name string
	Type ast.Expr
}
