package models

import (
	"go/ast"
	"go/token"
)

// InterfaceDescription is an annotated interface whose methods become invocation stubs
type InterfaceDescription struct {
	Name      string              // interface name
	Exported  bool                // whether the interface name is exported
	Functions []FunctionSignature // methods in declaration order
	Config    GenerationConfig    // effective options for this interface
	Pos       token.Pos           // position of the type spec
}

// FunctionSignature is a parsed function or interface method signature
type FunctionSignature struct {
	Name    string      // function name
	Params  []Parameter // parameters in declaration order, context included
	Success ast.Expr    // success result type, nil when the function returns nothing on success
	Error   ast.Expr    // error result type, nil when failures cannot be reported
	Async   bool        // first parameter is context.Context
	Doc     *ast.CommentGroup
	Type    *ast.FuncType
	Pos     token.Pos
}

// Parameter is a named function parameter
type Parameter struct {
	Name     string   // parameter identifier
	Type     ast.Expr // declared type, "...T" kept as *ast.Ellipsis
	Context  bool     // the context.Context carrying the call
	Variadic bool     // declared as ...T
}

// WireParams returns the parameters serialized into the argument record
func (s FunctionSignature) WireParams() []Parameter {
	params := make([]Parameter, 0, len(s.Params))
	for _, p := range s.Params {
		if p.Context {
			continue
		}
		params = append(params, p)
	}
	return params
}

// ContextParam returns the context parameter of an async signature
func (s FunctionSignature) ContextParam() (Parameter, bool) {
	for _, p := range s.Params {
		if p.Context {
			return p, true
		}
	}
	return Parameter{}, false
}

// ErrorIsBuiltin reports whether the error result is the predeclared error type
func (s FunctionSignature) ErrorIsBuiltin() bool {
	ident, ok := s.Error.(*ast.Ident)
	return ok && ident.Name == "error"
}

// ImplementationCandidate is a function from a skeleton block. Only its
// signature shapes the skeleton; Source is re-emitted untouched.
type ImplementationCandidate struct {
	Decl      *ast.FuncDecl
	Signature FunctionSignature
	Source    []byte // exact text of the declaration including its doc comment
}

// SkeletonRequest names the interface a block of candidates implements
type SkeletonRequest struct {
	Interface  string
	Candidates []ImplementationCandidate
	Config     GenerationConfig
	Pos        token.Pos
}
