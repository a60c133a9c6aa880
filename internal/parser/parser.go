package parser

import (
	"go/ast"
	"go/build/constraint"
	"go/parser"
	"go/token"
	"os"
	"sort"

	"github.com/toyz/bindgen/internal/annotations"
	bgerrors "github.com/toyz/bindgen/internal/errors"
	"github.com/toyz/bindgen/internal/models"
	"github.com/toyz/bindgen/internal/signature"
)

// Parser implements the UnitParser interface
type Parser struct {
	fileSet    *token.FileSet
	directives *annotations.ParticipleParser
	base       models.GenerationConfig
}

// NewParser creates a parser applying base to every trigger before its own options
func NewParser(base models.GenerationConfig) *Parser {
	return &Parser{
		fileSet:    token.NewFileSet(),
		directives: annotations.NewParticipleParser(annotations.DefaultRegistry()),
		base:       base,
	}
}

// FileSet returns the file set positions of parsed units refer to
func (p *Parser) FileSet() *token.FileSet {
	return p.fileSet
}

// ParseFile reads and parses one file
func (p *Parser) ParseFile(path string) (*models.UnitMetadata, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, bgerrors.WrapFileSystemError("read", path, err)
	}
	return p.ParseSource(path, src)
}

// ParseSource parses one file's source and collects its triggers. The first
// malformed trigger aborts the unit.
func (p *Parser) ParseSource(filename string, src []byte) (*models.UnitMetadata, error) {
	file, err := parser.ParseFile(p.fileSet, filename, src, parser.ParseComments)
	if err != nil {
		return nil, bgerrors.New(bgerrors.SyntaxErrorCode, "failed to parse Go source").
			WithLocation(bgerrors.SourceLocation{File: filename}).
			WithCause(err)
	}

	unit := &models.UnitMetadata{
		FilePath:    filename,
		PackageName: file.Name.Name,
		Fset:        p.fileSet,
		File:        file,
		Source:      src,
		Excluded:    excludedByBuildTag(file),
	}

	// Generated files repeat their inputs' declarations, never their directives.
	if ast.IsGenerated(file) {
		return unit, nil
	}

	u := &unitParser{
		Parser:     p,
		unit:       unit,
		signatures: signature.NewParser(p.fileSet, signature.ContextPackageName(file)),
	}
	if err := u.parse(); err != nil {
		return nil, err
	}
	return unit, nil
}

// unitParser holds the state of parsing one file
type unitParser struct {
	*Parser
	unit       *models.UnitMetadata
	signatures *signature.Parser
}

func (u *unitParser) parse() error {
	attached := u.attachedTypeSpecs()
	var skeleton *annotations.ParsedAnnotation

	for _, group := range u.unit.File.Comments {
		for _, comment := range group.List {
			if !annotations.IsDirective(comment.Text) {
				continue
			}

			parsed, err := u.directives.ParseAnnotation(comment.Text, u.loc(comment.Slash))
			if err != nil {
				return err
			}

			switch parsed.Type {
			case annotations.InvokeAnnotation, annotations.EventsAnnotation:
				spec, ok := attached[comment]
				if !ok {
					return bgerrors.Newf(bgerrors.TargetErrorCode, "//bindgen:%s must be in the doc comment of a type declaration", parsed.Type).
						WithLocation(parsed.Location)
				}
				if parsed.Type == annotations.InvokeAnnotation {
					err = u.parseInterface(spec, parsed)
				} else {
					err = u.parseEvents(spec, parsed)
				}
				if err != nil {
					return err
				}

			case annotations.SkeletonAnnotation:
				if skeleton != nil {
					return bgerrors.New(bgerrors.TargetErrorCode, "only one //bindgen:skeleton directive is allowed per file").
						WithLocation(parsed.Location).
						WithSuggestion("previous directive at " + skeleton.Location.String())
				}
				skeleton = parsed
			}
		}
	}

	if len(u.unit.Interfaces) > 0 {
		if err := u.checkErrorNotRedeclared(); err != nil {
			return err
		}
	}

	if skeleton != nil {
		return u.parseSkeleton(skeleton)
	}
	return nil
}

// checkErrorNotRedeclared rejects files declaring a top-level error. Stub
// results are classified by name, so a local error type would be mistaken for
// the builtin.
func (u *unitParser) checkErrorNotRedeclared() error {
	for _, decl := range u.unit.File.Decls {
		var names []*ast.Ident
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil {
				names = append(names, d.Name)
			}
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					names = append(names, s.Name)
				case *ast.ValueSpec:
					names = append(names, s.Names...)
				}
			}
		}
		for _, name := range names {
			if name.Name == "error" {
				return bgerrors.New(bgerrors.DuplicateNameErrorCode, "file redeclares the predeclared identifier error").
					WithLocation(u.loc(name.Pos())).
					WithSuggestion("rename the declaration or move it to another file")
			}
		}
	}
	return nil
}

// attachedTypeSpecs maps every comment of a type declaration's doc comment
// to the type it documents
func (u *unitParser) attachedTypeSpecs() map[*ast.Comment]*ast.TypeSpec {
	attached := make(map[*ast.Comment]*ast.TypeSpec)
	for _, decl := range u.unit.File.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		if gen.Doc != nil && len(gen.Specs) == 1 {
			for _, c := range gen.Doc.List {
				attached[c] = gen.Specs[0].(*ast.TypeSpec)
			}
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			if ts.Doc == nil {
				continue
			}
			for _, c := range ts.Doc.List {
				attached[c] = ts
			}
		}
	}
	return attached
}

// config applies a directive's options on top of the parser's base configuration
func (u *unitParser) config(parsed *annotations.ParsedAnnotation) models.GenerationConfig {
	cfg := u.base
	cfg.HostPackages = append([]string(nil), u.base.HostPackages...)

	if parsed.HasParameter("cmd_prefix") {
		cfg.CmdPrefix = parsed.GetString("cmd_prefix")
	}
	if parsed.HasParameter("on_decode_error") {
		cfg.OnDecodeError = models.DecodePolicy(parsed.GetString("on_decode_error"))
	}
	if parsed.HasParameter("host") {
		cfg.HostPackages = parsed.GetStringSlice("host")
	}
	return cfg
}

func (u *unitParser) parseInterface(spec *ast.TypeSpec, parsed *annotations.ParsedAnnotation) error {
	iface, ok := spec.Type.(*ast.InterfaceType)
	if !ok {
		return bgerrors.Newf(bgerrors.TargetErrorCode, "//bindgen:invoke applies to interfaces, %s is not one", spec.Name.Name).
			WithLocation(u.loc(spec.Pos()))
	}
	if spec.TypeParams != nil && len(spec.TypeParams.List) > 0 {
		return bgerrors.Newf(bgerrors.TypeParametersErrorCode, "interface %s has type parameters", spec.Name.Name).
			WithLocation(u.loc(spec.TypeParams.Pos())).
			WithSuggestion("declare the interface with concrete types")
	}

	desc := models.InterfaceDescription{
		Name:     spec.Name.Name,
		Exported: spec.Name.IsExported(),
		Config:   u.config(parsed),
		Pos:      spec.Pos(),
	}

	seen := make(map[string]bool)
	for _, field := range iface.Methods.List {
		if len(field.Names) == 0 {
			if isConstraintElement(field.Type) {
				return bgerrors.Newf(bgerrors.TypeParametersErrorCode, "interface %s is a type constraint", spec.Name.Name).
					WithLocation(u.loc(field.Pos()))
			}
			// Embedded interfaces carry no functions of their own.
			continue
		}

		sig, err := u.signatures.ParseMethod(field)
		if err != nil {
			return err
		}
		if seen[sig.Name] {
			return bgerrors.Newf(bgerrors.DuplicateNameErrorCode, "method %s is declared twice", sig.Name).
				WithLocation(u.loc(field.Pos()))
		}
		seen[sig.Name] = true
		desc.Functions = append(desc.Functions, sig)
	}

	u.unit.Interfaces = append(u.unit.Interfaces, desc)
	return nil
}

func (u *unitParser) parseEvents(spec *ast.TypeSpec, parsed *annotations.ParsedAnnotation) error {
	name := spec.Name.Name
	iface, ok := spec.Type.(*ast.InterfaceType)
	if !ok {
		return bgerrors.Newf(bgerrors.EventShapeErrorCode, "//bindgen:events applies to sealed interfaces, %s is not an interface", name).
			WithLocation(u.loc(spec.Pos()))
	}
	if spec.TypeParams != nil && len(spec.TypeParams.List) > 0 {
		return bgerrors.Newf(bgerrors.TypeParametersErrorCode, "event union %s has type parameters", name).
			WithLocation(u.loc(spec.TypeParams.Pos()))
	}

	marker, err := u.marker(name, iface)
	if err != nil {
		return err
	}

	variants, err := u.variants(name, marker)
	if err != nil {
		return err
	}
	if len(variants) == 0 {
		return bgerrors.Newf(bgerrors.EventShapeErrorCode, "event union %s has no variants", name).
			WithLocation(u.loc(spec.Pos())).
			WithSuggestion("declare variant types in this file with a " + marker + "() method")
	}

	u.unit.Events = append(u.unit.Events, models.EventDescription{
		Name:     name,
		Exported: spec.Name.IsExported(),
		Marker:   marker,
		Variants: variants,
		Config:   u.config(parsed),
		Pos:      spec.Pos(),
	})
	return nil
}

// marker returns the single unexported, parameterless method sealing an event union
func (u *unitParser) marker(name string, iface *ast.InterfaceType) (string, error) {
	methods := iface.Methods.List
	if len(methods) != 1 || len(methods[0].Names) != 1 {
		return "", bgerrors.Newf(bgerrors.EventShapeErrorCode, "event union %s must declare exactly one marker method", name).
			WithLocation(u.loc(iface.Pos())).
			WithSuggestion("for example: type " + name + " interface{ is" + name + "() }")
	}

	method := methods[0]
	fn := method.Type.(*ast.FuncType)
	if method.Names[0].IsExported() || fn.Params.NumFields() != 0 || fn.Results.NumFields() != 0 {
		return "", bgerrors.Newf(bgerrors.EventShapeErrorCode, "marker method of %s must be unexported and take and return nothing", name).
			WithLocation(u.loc(method.Pos())).
			WithConstruct(method.Names[0].Name)
	}
	return method.Names[0].Name, nil
}

// variants finds the types of this file implementing marker, in declaration order
func (u *unitParser) variants(union, marker string) ([]models.Variant, error) {
	specs := make(map[string]*ast.TypeSpec)
	for _, decl := range u.unit.File.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			specs[ts.Name.Name] = ts
		}
	}

	found := make(map[string]models.Variant)
	for _, decl := range u.unit.File.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || len(fn.Recv.List) != 1 || fn.Name.Name != marker {
			continue
		}

		recv := fn.Recv.List[0].Type
		_, pointer := recv.(*ast.StarExpr)
		if pointer {
			recv = recv.(*ast.StarExpr).X
		}

		var typeName string
		switch r := recv.(type) {
		case *ast.Ident:
			typeName = r.Name
		case *ast.IndexExpr, *ast.IndexListExpr:
			return nil, bgerrors.Newf(bgerrors.TypeParametersErrorCode, "variant of %s has type parameters", union).
				WithLocation(u.loc(fn.Recv.Pos()))
		default:
			continue
		}

		if _, dup := found[typeName]; dup {
			return nil, bgerrors.Newf(bgerrors.DuplicateNameErrorCode, "variant %s declares %s twice", typeName, marker).
				WithLocation(u.loc(fn.Pos()))
		}

		spec, ok := specs[typeName]
		if !ok {
			return nil, bgerrors.Newf(bgerrors.EventShapeErrorCode, "variant %s of %s must be declared in this file", typeName, union).
				WithLocation(u.loc(fn.Pos()))
		}
		if spec.TypeParams != nil && len(spec.TypeParams.List) > 0 {
			return nil, bgerrors.Newf(bgerrors.TypeParametersErrorCode, "variant %s has type parameters", typeName).
				WithLocation(u.loc(spec.TypeParams.Pos()))
		}

		found[typeName] = u.variant(spec, pointer)
	}

	variants := make([]models.Variant, 0, len(found))
	for _, v := range found {
		variants = append(variants, v)
	}
	sort.Slice(variants, func(i, j int) bool { return variants[i].Pos < variants[j].Pos })
	return variants, nil
}

func (u *unitParser) variant(spec *ast.TypeSpec, pointer bool) models.Variant {
	v := models.Variant{
		Name:    spec.Name.Name,
		Pointer: pointer,
		Pos:     spec.Pos(),
	}

	st, ok := spec.Type.(*ast.StructType)
	switch {
	case !ok:
		v.Shape = models.PayloadPositional
		v.Types = []ast.Expr{spec.Type}
	case st.Fields.NumFields() == 0:
		v.Shape = models.PayloadNone
	default:
		v.Shape = models.PayloadNamed
		for _, field := range st.Fields.List {
			if len(field.Names) == 0 {
				v.Fields = append(v.Fields, models.Field{Name: embeddedName(field.Type), Type: field.Type})
				continue
			}
			for _, ident := range field.Names {
				v.Fields = append(v.Fields, models.Field{Name: ident.Name, Type: field.Type})
			}
		}
	}
	return v
}

func (u *unitParser) parseSkeleton(parsed *annotations.ParsedAnnotation) error {
	req := models.SkeletonRequest{
		Interface: parsed.Target,
		Config:    u.config(parsed),
		Pos:       token.NoPos,
	}

	for _, decl := range u.unit.File.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || (fn.Recv == nil && fn.Name.Name == "init") {
			continue
		}

		sig, err := u.signatures.ParseDecl(fn)
		if err != nil {
			return err
		}

		req.Candidates = append(req.Candidates, models.ImplementationCandidate{
			Decl:      fn,
			Signature: sig,
			Source:    u.source(fn),
		})
	}

	u.unit.Skeletons = append(u.unit.Skeletons, req)
	return nil
}

// source returns the exact text of a declaration, doc comment included
func (u *unitParser) source(fn *ast.FuncDecl) []byte {
	start := fn.Pos()
	if fn.Doc != nil {
		start = fn.Doc.Pos()
	}
	from := u.fileSet.Position(start).Offset
	to := u.fileSet.Position(fn.End()).Offset
	return u.unit.Source[from:to]
}

func (u *unitParser) loc(pos token.Pos) bgerrors.SourceLocation {
	return bgerrors.At(u.fileSet.Position(pos))
}

// excludedByBuildTag reports whether the file only builds with the bindgen tag
func excludedByBuildTag(file *ast.File) bool {
	for _, group := range file.Comments {
		if group.Pos() >= file.Package {
			break
		}
		for _, c := range group.List {
			if !constraint.IsGoBuild(c.Text) {
				continue
			}
			expr, err := constraint.Parse(c.Text)
			if err != nil {
				return false
			}
			return expr.Eval(func(tag string) bool { return tag == BuildTag }) &&
				!expr.Eval(func(string) bool { return false })
		}
	}
	return false
}

// isConstraintElement reports whether an embedded interface element is a
// type set term such as ~int or int | string
func isConstraintElement(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.BinaryExpr:
		return e.Op == token.OR
	case *ast.UnaryExpr:
		return e.Op == token.TILDE
	case *ast.Ident:
		return isPredeclaredType(e.Name)
	}
	return false
}

func isPredeclaredType(name string) bool {
	switch name {
	case "bool", "string", "byte", "rune", "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
		"float32", "float64", "complex64", "complex128":
		return true
	}
	return false
}

func embeddedName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return embeddedName(e.X)
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(e.X)
	case *ast.IndexListExpr:
		return embeddedName(e.X)
	case *ast.Ident:
		return e.Name
	}
	return ""
}
