package generator

import (
	"go/ast"
	"strings"

	bgerrors "github.com/toyz/bindgen/internal/errors"
	"github.com/toyz/bindgen/internal/models"
	"github.com/toyz/bindgen/internal/templates"
)

// SkeletonPrefix is prepended to an interface name to name its skeleton type
const SkeletonPrefix = "Unimplemented"

// SkeletonGenerator turns candidate implementations into a type whose
// methods panic when called
type SkeletonGenerator struct {
	unit      *unitContext
	hostOwned HostPredicate
}

// Generate renders the skeleton type of req
func (g *SkeletonGenerator) Generate(req models.SkeletonRequest) (string, error) {
	if !g.unit.unit.Excluded {
		return "", bgerrors.Newf(bgerrors.ConfigurationErrorCode, "skeleton input %s is compiled next to its output", g.unit.unit.FilePath).
			WithLocation(g.unit.loc(req.Pos)).
			WithSuggestion("add //go:build bindgen above the package clause")
	}

	data := templates.SkeletonData{
		Type:      SkeletonPrefix + req.Interface,
		Interface: req.Interface,
	}
	if err := g.unit.declare(data.Type, req.Pos); err != nil {
		return "", err
	}

	for _, c := range req.Candidates {
		method, err := g.method(req, c)
		if err != nil {
			return "", err
		}
		data.Methods = append(data.Methods, method)
	}

	code, err := templates.GenerateSkeleton(data)
	if err != nil {
		return "", bgerrors.Wrapf(err, "render skeleton %s", data.Type)
	}
	return code, nil
}

func (g *SkeletonGenerator) method(req models.SkeletonRequest, c models.ImplementationCandidate) (templates.SkeletonMethod, error) {
	sig := c.Signature
	subst, err := g.typeParamSubstitutions(sig)
	if err != nil {
		return templates.SkeletonMethod{}, err
	}

	resultNames := make(map[string]bool)
	if sig.Type != nil && sig.Type.Results != nil {
		for _, field := range sig.Type.Results.List {
			for _, n := range field.Names {
				resultNames[n.Name] = true
			}
		}
	}

	tu := g.unit.utils
	var params []string
	for _, p := range sig.Params {
		if g.hostOwned(p.Type, req.Config.HostPackages) {
			continue
		}
		typ, err := tu.SubstituteIdents(p.Type, subst)
		if err != nil {
			return templates.SkeletonMethod{}, bgerrors.Wrapf(err, "parameter %s of %s", p.Name, sig.Name)
		}
		name := ignored(p.Name)
		if resultNames[name] {
			return templates.SkeletonMethod{}, bgerrors.Newf(bgerrors.DuplicateNameErrorCode, "parameter %s of %s becomes %s, which is also a result name", p.Name, sig.Name, name).
				WithLocation(g.unit.loc(sig.Pos)).
				WithConstruct(sig.Name)
		}
		params = append(params, name+" "+typ)
	}

	results, err := g.results(sig.Type.Results, subst)
	if err != nil {
		return templates.SkeletonMethod{}, bgerrors.Wrapf(err, "results of %s", sig.Name)
	}

	return templates.SkeletonMethod{
		Name:    sig.Name,
		Params:  strings.Join(params, ", "),
		Results: results,
		Message: "bindgen: " + req.Interface + "." + sig.Name + " is not implemented",
	}, nil
}

// typeParamSubstitutions maps each type parameter of sig to a type that can
// stand in for it once the parameter list is stripped
func (g *SkeletonGenerator) typeParamSubstitutions(sig models.FunctionSignature) (map[string]string, error) {
	if sig.Type == nil || sig.Type.TypeParams == nil {
		return nil, nil
	}

	tu := g.unit.utils
	subst := make(map[string]string)
	for _, field := range sig.Type.TypeParams.List {
		repl, ok := standIn(field.Type, tu)
		if !ok {
			return nil, bgerrors.Newf(bgerrors.TypeParametersErrorCode, "type parameters of %s cannot be stripped", sig.Name).
				WithLocation(g.unit.loc(field.Pos())).
				WithConstruct(tu.Expr(field.Type)).
				WithSuggestion("constrain the type parameter with any or a named interface")
		}
		for _, name := range field.Names {
			subst[name.Name] = repl
		}
	}
	return subst, nil
}

// standIn returns the type replacing a parameter with the given constraint
func standIn(constraint ast.Expr, tu *templates.TemplateUtils) (string, bool) {
	switch c := constraint.(type) {
	case *ast.Ident:
		if c.Name == "comparable" {
			return "", false
		}
		return c.Name, true
	case *ast.SelectorExpr:
		return tu.Expr(c), true
	case *ast.InterfaceType:
		if c.Methods == nil || len(c.Methods.List) == 0 {
			return "any", true
		}
	}
	return "", false
}

// results renders a result list as declared, type parameters substituted
func (g *SkeletonGenerator) results(list *ast.FieldList, subst map[string]string) (string, error) {
	if list == nil || len(list.List) == 0 {
		return "", nil
	}

	named := false
	parts := make([]string, 0, len(list.List))
	for _, field := range list.List {
		typ, err := g.unit.utils.SubstituteIdents(field.Type, subst)
		if err != nil {
			return "", err
		}
		if len(field.Names) == 0 {
			parts = append(parts, typ)
			continue
		}
		named = true
		names := make([]string, 0, len(field.Names))
		for _, n := range field.Names {
			names = append(names, n.Name)
		}
		parts = append(parts, strings.Join(names, ", ")+" "+typ)
	}

	if len(parts) == 1 && !named {
		return " " + parts[0], nil
	}
	return " (" + strings.Join(parts, ", ") + ")", nil
}

// ignored marks a parameter name as intentionally unused. The prefix is
// added even to names that already start with an underscore.
func ignored(name string) string {
	return "_" + name
}

// HostOwned reports whether typ belongs to one of hostPackages, judged by the
// package qualifier left after unwrapping pointers, slices and instantiations
func HostOwned(typ ast.Expr, hostPackages []string) bool {
	for {
		switch t := typ.(type) {
		case *ast.StarExpr:
			typ = t.X
		case *ast.ArrayType:
			typ = t.Elt
		case *ast.Ellipsis:
			typ = t.Elt
		case *ast.ParenExpr:
			typ = t.X
		case *ast.IndexExpr:
			typ = t.X
		case *ast.IndexListExpr:
			typ = t.X
		case *ast.SelectorExpr:
			pkg, ok := t.X.(*ast.Ident)
			if !ok {
				return false
			}
			for _, host := range hostPackages {
				if pkg.Name == host {
					return true
				}
			}
			return false
		default:
			return false
		}
	}
}
