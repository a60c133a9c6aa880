package generator

import (
	"go/ast"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	bgerrors "github.com/toyz/bindgen/internal/errors"
	"github.com/toyz/bindgen/internal/models"
	"github.com/toyz/bindgen/internal/templates"
)

// stubLocals are the local variables of an invocation stub, renamed when a
// parameter already uses them
var stubLocals = []string{"cmd", "args", "value", "err"}

// InvokeGenerator turns an annotated interface into one invocation stub per method
type InvokeGenerator struct {
	unit *unitContext
}

// Generate renders the stubs of iface in declaration order
func (g *InvokeGenerator) Generate(iface models.InterfaceDescription) ([]string, error) {
	if len(iface.Functions) == 0 {
		return nil, nil
	}

	cfg := iface.Config
	returnMode := cfg.OnDecodeError == models.DecodeReturn
	if returnMode {
		for _, fn := range iface.Functions {
			if fn.Error == nil || !fn.ErrorIsBuiltin() {
				return nil, bgerrors.Newf(bgerrors.ReturnShapeErrorCode, `%s.%s must return error when on_decode_error="return"`, iface.Name, fn.Name).
					WithLocation(g.unit.loc(fn.Pos)).
					WithSuggestion("return (T, error) or error, or drop the on_decode_error option")
			}
		}
	}

	bridgePkg, host, err := g.unit.bridge(cfg.Namespace, iface.Pos)
	if err != nil {
		return nil, err
	}

	stubs := make([]string, 0, len(iface.Functions))
	for _, fn := range iface.Functions {
		if err := g.unit.declare(fn.Name, fn.Pos); err != nil {
			return nil, err
		}

		data, err := g.stubData(fn, cfg, bridgePkg, host, returnMode)
		if err != nil {
			return nil, err
		}

		code, err := templates.GenerateStub(data)
		if err != nil {
			return nil, bgerrors.Wrapf(err, "render stub %s", fn.Name)
		}
		stubs = append(stubs, code)
	}
	return stubs, nil
}

func (g *InvokeGenerator) stubData(fn models.FunctionSignature, cfg models.GenerationConfig, bridgePkg, host string, returnMode bool) (templates.StubData, error) {
	tu := g.unit.utils

	paramNames := make(map[string]bool, len(fn.Params))
	params := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		if p.Name == host {
			return templates.StubData{}, bgerrors.Newf(bgerrors.DuplicateNameErrorCode, "parameter %s of %s hides the bridge variable", p.Name, fn.Name).
				WithLocation(g.unit.loc(fn.Pos)).
				WithConstruct(fn.Name)
		}
		paramNames[p.Name] = true
		params = append(params, p.Name+" "+tu.ParamType(p.Type))
	}

	// Parameters are not in scope in the signature but are in the body, so
	// body types are printed with the qualifiers they hide renamed.
	subst, err := g.hiddenQualifiers(fn, paramNames)
	if err != nil {
		return templates.StubData{}, err
	}

	fields, err := g.fields(fn, subst)
	if err != nil {
		return templates.StubData{}, err
	}

	data := templates.StubData{
		Doc:        docText(fn.Doc),
		Name:       fn.Name,
		Params:     strings.Join(params, ", "),
		Results:    results(tu, fn),
		Command:    cfg.CmdPrefix + fn.Name,
		Bridge:     bridgePkg,
		Host:       host,
		Fields:     fields,
		ReturnMode: returnMode,
	}

	if ctxParam, ok := fn.ContextParam(); ok {
		data.Ctx = ctxParam.Name
	} else {
		data.Ctx = g.unit.contextPkg() + ".Background()"
	}

	// Locals must not hide anything the body refers to after they are declared.
	taken := map[string]bool{bridgePkg: true, host: true}
	for name := range paramNames {
		taken[name] = true
	}
	for _, name := range g.unit.imports.LocalNames() {
		taken[name] = true
	}
	for _, expr := range bodyTypes(fn) {
		ast.Inspect(expr, func(n ast.Node) bool {
			if ident, ok := n.(*ast.Ident); ok {
				taken[ident.Name] = true
			}
			return true
		})
	}
	data.Cmd = templates.FreshName("cmd", taken)
	data.Args = templates.FreshName("args", taken)
	data.Value = templates.FreshName("value", taken)
	data.Err = templates.FreshName("err", taken)

	if fn.Success != nil {
		if data.Success, err = tu.SubstituteIdents(fn.Success, subst); err != nil {
			return templates.StubData{}, bgerrors.Wrapf(err, "success type of %s", fn.Name)
		}
		data.SuccessZero = tu.ZeroValueAs(fn.Success, data.Success)
	}
	if fn.Error != nil {
		if data.Error, err = tu.SubstituteIdents(fn.Error, subst); err != nil {
			return templates.StubData{}, bgerrors.Wrapf(err, "error type of %s", fn.Name)
		}
		if fn.ErrorIsBuiltin() {
			data.ErrorZero = "nil"
			data.Failure = bridgePkg + ".Fail(" + data.Cmd + ", " + data.Err + ")"
		} else {
			data.ErrorZero = tu.ZeroValueAs(fn.Error, data.Error)
			data.Failure = bridgePkg + ".Decode[" + data.Error + "](" + data.Cmd + ", " + bridgePkg + ".Failure(" + data.Err + "))"
		}
	}

	return data, nil
}

// hiddenQualifiers maps each import qualifier that a parameter hides inside
// the stub body to a fresh alias of the same import. A parameter hiding a
// type name cannot be worked around and is reported.
func (g *InvokeGenerator) hiddenQualifiers(fn models.FunctionSignature, paramNames map[string]bool) (map[string]string, error) {
	subst := make(map[string]string)
	var err error
	for _, expr := range bodyTypes(fn) {
		astutil.Apply(expr, func(c *astutil.Cursor) bool {
			if err != nil {
				return false
			}
			switch c.Name() {
			case "Sel", "Names":
				return false
			}
			ident, ok := c.Node().(*ast.Ident)
			if !ok || !paramNames[ident.Name] {
				return true
			}
			if _, qualifier := c.Parent().(*ast.SelectorExpr); qualifier && c.Name() == "X" {
				if _, done := subst[ident.Name]; done {
					return true
				}
				if path, found := g.unit.imports.Path(ident.Name); found {
					subst[ident.Name] = g.unit.imports.Require(path, ident.Name)
				}
				return true
			}
			err = bgerrors.Newf(bgerrors.DuplicateNameErrorCode, "parameter %s of %s hides the type it refers to", ident.Name, fn.Name).
				WithLocation(g.unit.loc(fn.Pos)).
				WithConstruct(fn.Name).
				WithSuggestion("rename the parameter")
			return false
		}, nil)
		if err != nil {
			return nil, err
		}
	}
	return subst, nil
}

// bodyTypes returns the types a stub body spells out
func bodyTypes(fn models.FunctionSignature) []ast.Expr {
	var out []ast.Expr
	for _, p := range fn.WireParams() {
		out = append(out, p.Type)
	}
	if fn.Success != nil {
		out = append(out, fn.Success)
	}
	if fn.Error != nil {
		out = append(out, fn.Error)
	}
	return out
}

// fields builds the argument record of fn, one field per serialized parameter
func (g *InvokeGenerator) fields(fn models.FunctionSignature, subst map[string]string) ([]templates.FieldData, error) {
	wire := fn.WireParams()
	fields := make([]templates.FieldData, 0, len(wire))
	seen := make(map[string]string, len(wire))

	for _, p := range wire {
		name := templates.WireName(p.Name)
		if prev, dup := seen[name]; dup {
			return nil, bgerrors.Newf(bgerrors.DuplicateNameErrorCode, "parameters %s and %s of %s share the wire name %q", prev, p.Name, fn.Name, name).
				WithLocation(g.unit.loc(fn.Pos)).
				WithConstruct(fn.Name)
		}
		seen[name] = p.Name

		typ, err := g.unit.utils.FieldType(p.Type, subst)
		if err != nil {
			return nil, bgerrors.Wrapf(err, "parameter %s of %s", p.Name, fn.Name)
		}
		fields = append(fields, templates.FieldData{
			GoName:   templates.FieldName(p.Name),
			Type:     typ,
			WireName: name,
			Value:    p.Name,
		})
	}
	return fields, nil
}

// results renders the result list of fn as declared, without result names
func results(tu *templates.TemplateUtils, fn models.FunctionSignature) string {
	switch {
	case fn.Success != nil && fn.Error != nil:
		return " (" + tu.Expr(fn.Success) + ", " + tu.Expr(fn.Error) + ")"
	case fn.Success != nil:
		return " " + tu.Expr(fn.Success)
	case fn.Error != nil:
		return " " + tu.Expr(fn.Error)
	}
	return ""
}
