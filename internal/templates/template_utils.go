package templates

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"go/types"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
	"golang.org/x/tools/go/ast/astutil"
)

// TemplateUtils renders syntax from one source file into template-ready text
type TemplateUtils struct {
	fset *token.FileSet
}

// NewTemplateUtils creates utilities for nodes positioned in fset
func NewTemplateUtils(fset *token.FileSet) *TemplateUtils {
	if fset == nil {
		fset = token.NewFileSet()
	}
	return &TemplateUtils{fset: fset}
}

// Expr prints an expression as it appears in source
func (tu *TemplateUtils) Expr(expr ast.Expr) string {
	if expr == nil {
		return ""
	}
	var buf bytes.Buffer
	cfg := printer.Config{Mode: printer.RawFormat}
	if err := cfg.Fprint(&buf, tu.fset, expr); err != nil {
		return types.ExprString(expr)
	}
	return buf.String()
}

// ParamType prints the declared type of a parameter, "...T" included
func (tu *TemplateUtils) ParamType(expr ast.Expr) string {
	return tu.Expr(expr)
}

// FieldType prints the type a parameter has inside a function body, with
// identifiers renamed as SubstituteIdents does
func (tu *TemplateUtils) FieldType(expr ast.Expr, subst map[string]string) (string, error) {
	if ellipsis, ok := expr.(*ast.Ellipsis); ok {
		elt, err := tu.SubstituteIdents(ellipsis.Elt, subst)
		if err != nil {
			return "", err
		}
		return "[]" + elt, nil
	}
	return tu.SubstituteIdents(expr, subst)
}

// ZeroValue returns a literal for the zero value of the type
func (tu *TemplateUtils) ZeroValue(expr ast.Expr) string {
	return tu.ZeroValueAs(expr, tu.Expr(expr))
}

// ZeroValueAs is ZeroValue for a type that is printed as text, as when its
// qualifiers have been renamed
func (tu *TemplateUtils) ZeroValueAs(expr ast.Expr, text string) string {
	switch t := expr.(type) {
	case *ast.StarExpr, *ast.ArrayType, *ast.MapType, *ast.ChanType, *ast.FuncType, *ast.InterfaceType:
		if arr, ok := t.(*ast.ArrayType); ok && arr.Len != nil {
			break
		}
		return "nil"
	case *ast.ParenExpr:
		return tu.ZeroValueAs(t.X, text)
	case *ast.Ident:
		switch t.Name {
		case "string":
			return `""`
		case "bool":
			return "false"
		case "error", "any":
			return "nil"
		case "int", "int8", "int16", "int32", "int64",
			"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
			"float32", "float64", "complex64", "complex128", "byte", "rune":
			return "0"
		}
	}
	return "*new(" + text + ")"
}

// SubstituteIdents prints expr with every identifier in subst replaced by its
// mapped name. Type parameters and package qualifiers are both identifiers.
func (tu *TemplateUtils) SubstituteIdents(expr ast.Expr, subst map[string]string) (string, error) {
	text := tu.Expr(expr)
	if len(subst) == 0 {
		return text, nil
	}

	fset := token.NewFileSet()
	copied, err := parser.ParseExprFrom(fset, "", text, 0)
	if err != nil {
		return "", fmt.Errorf("reparse %q: %w", text, err)
	}

	replaced := astutil.Apply(copied, func(c *astutil.Cursor) bool {
		// Selector and struct field names are not type references.
		switch c.Name() {
		case "Sel", "Names":
			return false
		}
		ident, ok := c.Node().(*ast.Ident)
		if !ok {
			return true
		}
		if repl, found := subst[ident.Name]; found {
			c.Replace(ast.NewIdent(repl))
		}
		return true
	}, nil)

	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, replaced); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WireName returns the serialized field name of a parameter
func WireName(param string) string {
	return strcase.ToLowerCamel(param)
}

// FieldName returns the exported Go field name carrying a parameter
func FieldName(param string) string {
	name := strcase.ToCamel(param)
	if r, _ := utf8.DecodeRuneInString(name); name == "" || !unicode.IsUpper(r) {
		name = "P" + name
	}
	return name
}

// FreshName returns base, or base with the smallest numeric suffix, such that
// the result is not in taken. The result is added to taken.
func FreshName(base string, taken map[string]bool) string {
	name := base
	for i := 1; taken[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	taken[name] = true
	return name
}
