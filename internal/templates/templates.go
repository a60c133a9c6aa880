// Package templates renders generated Go source with text/template and
// normalizes the result into a formatted unit.
package templates

import (
	"bytes"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
)

// FileData is the layout of one generated file
type FileData struct {
	Package string
	Imports string // rendered import block
	Body    string // generated and verbatim declarations
}

// BridgeData is the bridge declaration shared by a unit's generated code
type BridgeData struct {
	Var       string // package-level variable name
	Package   string // local name of the bridge package
	Namespace string
}

// FieldData is one field of an invocation argument record
type FieldData struct {
	GoName   string
	Type     string
	WireName string
	Value    string // the parameter supplying the field
}

// StubData is one invocation stub
type StubData struct {
	Doc     string // doc comment lines, if any
	Name    string
	Params  string // parameter list as declared
	Results string // " T", " (T, E)" or ""
	Command string // wire command identifier

	Bridge string // local name of the bridge package
	Host   string // bridge variable
	Ctx    string // context expression passed to Invoke
	Fields []FieldData

	// Local variable names, chosen not to collide with parameters
	Cmd, Args, Value, Err string

	Success     string // success type, "" when none
	SuccessZero string
	Error       string // error type, "" when none
	ErrorZero   string
	Failure     string // expression converting Err into the error result
	ReturnMode  bool
}

// SkeletonMethod is one method of a skeleton type
type SkeletonMethod struct {
	Name    string
	Params  string
	Results string
	Message string // panic message
}

// SkeletonData is one Unimplemented type
type SkeletonData struct {
	Type      string
	Interface string
	Methods   []SkeletonMethod
}

// VariantData is one event variant
type VariantData struct {
	Name    string   // declared name and wire event name
	Binding string   // companion binding type
	Payload string   // type handlers receive
	Cases   []string // type switch cases matching the variant
}

// EventData is the metadata generated for one event union
type EventData struct {
	Name        string // sealed interface
	NameFunc    string
	Binding     string // binding interface
	Marker      string // binding interface marker method
	BindingsVar string
	BindingOf   string
	Variants    []VariantData

	Bridge     string // local name of the bridge package
	Context    string // local name of the context package
	CtxParam   string
	Host       string
	ReturnMode bool
}

// GenerateBridge renders the bridge declaration
func GenerateBridge(data BridgeData) (string, error) {
	return DefaultRegistry().Execute("bridge", data)
}

// GenerateStub renders one invocation stub
func GenerateStub(data StubData) (string, error) {
	return DefaultRegistry().Execute("stub", data)
}

// GenerateSkeleton renders an Unimplemented type and its methods
func GenerateSkeleton(data SkeletonData) (string, error) {
	return DefaultRegistry().Execute("skeleton", data)
}

// GenerateEvents renders the metadata of one event union
func GenerateEvents(data EventData) (string, error) {
	return DefaultRegistry().Execute("events", data)
}

// GenerateFile renders a whole unit, drops imports it does not use and
// formats it. filename is only used in error messages.
func GenerateFile(filename string, data FileData) ([]byte, error) {
	code, err := DefaultRegistry().Execute("file", data)
	if err != nil {
		return nil, err
	}
	return FormatUnit(filename, []byte(code))
}

// FormatUnit parses a rendered unit, prunes unused imports and prints it in
// gofmt style
func FormatUnit(filename string, src []byte) ([]byte, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("generated code for %s does not parse: %w", filename, err)
	}

	PruneImports(fset, file)

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, fmt.Errorf("failed to format generated code for %s: %w", filename, err)
	}

	// A second pass settles spacing left behind by removed imports.
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format generated code for %s: %w", filename, err)
	}
	return out, nil
}
