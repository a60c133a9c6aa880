// Package signature turns Go function types into models.FunctionSignature.
package signature

import (
	"go/ast"
	"go/token"
	"go/types"

	bgerrors "github.com/toyz/bindgen/internal/errors"
	"github.com/toyz/bindgen/internal/models"
)

// Parser parses function signatures found in one file
type Parser struct {
	fset       *token.FileSet
	contextPkg string // local name of the "context" import
}

// NewParser creates a signature parser. contextPkg is the name the file
// imports "context" under; an empty name disables async detection.
func NewParser(fset *token.FileSet, contextPkg string) *Parser {
	return &Parser{fset: fset, contextPkg: contextPkg}
}

// ContextPackageName returns the local name of the "context" import in file
func ContextPackageName(file *ast.File) string {
	for _, imp := range file.Imports {
		if imp.Path == nil || imp.Path.Value != `"context"` {
			continue
		}
		if imp.Name == nil {
			return "context"
		}
		if imp.Name.Name == "_" || imp.Name.Name == "." {
			return ""
		}
		return imp.Name.Name
	}
	return ""
}

// ParseMethod parses an interface method
func (p *Parser) ParseMethod(field *ast.Field) (models.FunctionSignature, error) {
	fn, ok := field.Type.(*ast.FuncType)
	if !ok || len(field.Names) != 1 {
		return models.FunctionSignature{}, bgerrors.New(bgerrors.ParameterPatternErrorCode, "expected a method").
			WithLocation(p.loc(field.Pos())).
			WithConstruct(types.ExprString(field.Type))
	}
	sig, err := p.Parse(field.Names[0], nil, fn)
	sig.Doc = field.Doc
	return sig, err
}

// ParseDecl parses a top-level function declaration
func (p *Parser) ParseDecl(decl *ast.FuncDecl) (models.FunctionSignature, error) {
	sig, err := p.Parse(decl.Name, decl.Recv, decl.Type)
	sig.Doc = decl.Doc
	return sig, err
}

// Parse builds a signature from a name, an optional receiver and a function type.
// Receivers and unnamed or blank parameters are rejected.
func (p *Parser) Parse(name *ast.Ident, recv *ast.FieldList, fn *ast.FuncType) (models.FunctionSignature, error) {
	if recv != nil && len(recv.List) > 0 {
		return models.FunctionSignature{}, bgerrors.New(bgerrors.ReceiverErrorCode, "receiver is not supported").
			WithLocation(p.loc(recv.Pos())).
			WithConstruct(name.Name).
			WithSuggestion("declare the function without a receiver")
	}

	sig := models.FunctionSignature{
		Name: name.Name,
		Type: fn,
		Pos:  name.Pos(),
	}

	params, err := p.parseParams(fn.Params)
	if err != nil {
		return models.FunctionSignature{}, err
	}
	sig.Params = params
	sig.Async = len(params) > 0 && params[0].Context

	if err := p.parseResults(&sig, fn.Results); err != nil {
		return models.FunctionSignature{}, err
	}

	return sig, nil
}

func (p *Parser) parseParams(list *ast.FieldList) ([]models.Parameter, error) {
	if list == nil {
		return nil, nil
	}

	var params []models.Parameter
	for _, field := range list.List {
		if len(field.Names) == 0 {
			return nil, bgerrors.New(bgerrors.ParameterPatternErrorCode, "parameter must be named").
				WithLocation(p.loc(field.Pos())).
				WithConstruct(types.ExprString(field.Type))
		}

		_, variadic := field.Type.(*ast.Ellipsis)
		isContext := p.isContext(field.Type)

		for _, ident := range field.Names {
			if ident.Name == "_" {
				return nil, bgerrors.New(bgerrors.ParameterPatternErrorCode, "parameter must be a plain identifier").
					WithLocation(p.loc(ident.Pos())).
					WithConstruct(ident.Name + " " + types.ExprString(field.Type))
			}
			if isContext && len(params) > 0 {
				return nil, bgerrors.New(bgerrors.ParameterPatternErrorCode, "context.Context must be the first parameter").
					WithLocation(p.loc(ident.Pos())).
					WithConstruct(ident.Name)
			}
			params = append(params, models.Parameter{
				Name:     ident.Name,
				Type:     field.Type,
				Context:  isContext,
				Variadic: variadic,
			})
		}
	}

	return params, nil
}

func (p *Parser) parseResults(sig *models.FunctionSignature, list *ast.FieldList) error {
	var results []ast.Expr
	if list != nil {
		for _, field := range list.List {
			n := len(field.Names)
			if n == 0 {
				n = 1
			}
			for i := 0; i < n; i++ {
				results = append(results, field.Type)
			}
		}
	}

	switch len(results) {
	case 0:
	case 1:
		if isBuiltinError(results[0]) {
			sig.Error = results[0]
		} else {
			sig.Success = results[0]
		}
	case 2:
		sig.Success, sig.Error = results[0], results[1]
	default:
		return bgerrors.Newf(bgerrors.ReturnShapeErrorCode, "%s returns %d values", sig.Name, len(results)).
			WithLocation(p.loc(list.Pos())).
			WithSuggestion("return at most (T, error); group extra values into a struct")
	}

	return nil
}

func (p *Parser) isContext(expr ast.Expr) bool {
	if p.contextPkg == "" {
		return false
	}
	sel, ok := expr.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Context" {
		return false
	}
	pkg, ok := sel.X.(*ast.Ident)
	return ok && pkg.Name == p.contextPkg
}

func (p *Parser) loc(pos token.Pos) bgerrors.SourceLocation {
	if p.fset == nil || !pos.IsValid() {
		return bgerrors.SourceLocation{}
	}
	return bgerrors.At(p.fset.Position(pos))
}

func isBuiltinError(expr ast.Expr) bool {
	ident, ok := expr.(*ast.Ident)
	return ok && ident.Name == "error"
}
