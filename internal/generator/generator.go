package generator

import (
	"go/ast"
	"go/token"
	"io"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/toyz/bindgen/internal/annotations"
	bgerrors "github.com/toyz/bindgen/internal/errors"
	"github.com/toyz/bindgen/internal/models"
	"github.com/toyz/bindgen/internal/sequence"
	"github.com/toyz/bindgen/internal/templates"
)

const (
	// DefaultSuffix is appended to a source file's base name to form its output path
	DefaultSuffix = "_bindgen.go"

	// GeneratedHeader is the first line of every generated file
	GeneratedHeader = "// Code generated by bindgen. DO NOT EDIT."

	// BridgePackage is the import path of the runtime generated code calls into
	BridgePackage = "github.com/toyz/bindgen/pkg/bridge"

	contextPackage = "context"
)

// Generator implements the UnitGenerator interface
type Generator struct {
	suffix    string
	hostOwned HostPredicate
}

// Option configures a Generator
type Option func(*Generator)

// WithSuffix sets the output file suffix
func WithSuffix(suffix string) Option {
	return func(g *Generator) {
		if suffix != "" {
			g.suffix = suffix
		}
	}
}

// WithHostPredicate replaces the rule deciding which skeleton parameters are dropped
func WithHostPredicate(fn HostPredicate) Option {
	return func(g *Generator) {
		if fn != nil {
			g.hostOwned = fn
		}
	}
}

// NewGenerator creates a new code generator instance
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		suffix:    DefaultSuffix,
		hostOwned: HostOwned,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// OutputPath returns where the generated code of source is written
func OutputPath(source, suffix string) string {
	return strings.TrimSuffix(source, ".go") + suffix
}

// Generate renders every trigger of unit into one formatted file. A unit
// without triggers yields nil. Any error discards the whole unit.
func (g *Generator) Generate(unit *models.UnitMetadata) (*models.GeneratedFile, error) {
	if unit == nil || unit.IsEmpty() {
		return nil, nil
	}

	ctx := newUnitContext(unit)
	body := sequence.Of[string]()
	var stats models.GenerationStats

	invoke := &InvokeGenerator{unit: ctx}
	for _, iface := range unit.Interfaces {
		stubs, err := invoke.Generate(iface)
		if err != nil {
			return nil, err
		}
		body.Extend(stubs...)
		stats.Stubs += len(stubs)
	}

	events := &EventGenerator{unit: ctx}
	for _, desc := range unit.Events {
		code, err := events.Generate(desc)
		if err != nil {
			return nil, err
		}
		body.Push(code)
		stats.Events++
		stats.Variants += len(desc.Variants)
	}

	skeletons := &SkeletonGenerator{unit: ctx, hostOwned: g.hostOwned}
	for _, req := range unit.Skeletons {
		code, err := skeletons.Generate(req)
		if err != nil {
			return nil, err
		}
		body.Push(code)
		body.Extend(ctx.originals()...)
		stats.Skeletons++
	}

	if ctx.bridgeVar != "" {
		decl, err := templates.GenerateBridge(templates.BridgeData{
			Var:       ctx.bridgeVar,
			Package:   ctx.bridgePkg,
			Namespace: ctx.namespace,
		})
		if err != nil {
			return nil, bgerrors.Wrap(err, "render bridge declaration")
		}
		body = sequence.Of(decl).Concat(body)
	}

	var rendered strings.Builder
	if err := body.Render(&rendered, "\n\n", func(w io.Writer, code string) error {
		_, err := io.WriteString(w, code)
		return err
	}); err != nil {
		return nil, err
	}

	content, err := templates.GenerateFile(unit.FilePath, templates.FileData{
		Package: unit.PackageName,
		Imports: ctx.imports.GenerateImports(),
		Body:    rendered.String(),
	})
	if err != nil {
		return nil, bgerrors.New(bgerrors.UnknownErrorCode, "generated code is invalid").
			WithLocation(bgerrors.SourceLocation{File: unit.FilePath}).
			WithCause(err)
	}

	return &models.GeneratedFile{
		SourcePath: unit.FilePath,
		Path:       OutputPath(unit.FilePath, g.suffix),
		Content:    content,
		Stats:      stats,
	}, nil
}

// unitContext is the state shared by the generators of one unit
type unitContext struct {
	unit    *models.UnitMetadata
	utils   *templates.TemplateUtils
	imports *templates.ImportManager

	// declared holds the package-level names visible to the generated file
	declared map[string]token.Pos

	bridgePkg string
	bridgeVar string
	namespace string
}

func newUnitContext(unit *models.UnitMetadata) *unitContext {
	ctx := &unitContext{
		unit:     unit,
		utils:    templates.NewTemplateUtils(unit.Fset),
		imports:  templates.NewImportManager(),
		declared: topLevelNames(unit.File),
	}
	ctx.imports.AddFileImports(unit.File)

	// Generated code refers to imports from inside functions whose
	// parameters, locals and package-level names could shadow them.
	for name := range ctx.declared {
		ctx.imports.Reserve(name)
	}
	for _, iface := range unit.Interfaces {
		for _, fn := range iface.Functions {
			for _, p := range fn.Params {
				ctx.imports.Reserve(p.Name)
			}
		}
	}
	for _, req := range unit.Skeletons {
		for _, c := range req.Candidates {
			for _, p := range c.Signature.Params {
				ctx.imports.Reserve(p.Name)
			}
		}
	}
	ctx.imports.Reserve(stubLocals...)
	ctx.imports.Reserve(listenLocals...)

	return ctx
}

// bridge returns the local name of the bridge package and the unit's bridge
// variable, declaring both on first use
func (c *unitContext) bridge(namespace string, pos token.Pos) (pkg, host string, err error) {
	if c.bridgeVar != "" {
		if namespace != c.namespace {
			return "", "", bgerrors.Newf(bgerrors.ConfigurationErrorCode, "namespace %q conflicts with %q used earlier in this file", namespace, c.namespace).
				WithLocation(c.loc(pos))
		}
		return c.bridgePkg, c.bridgeVar, nil
	}

	name := "bindgen" + strcase.ToCamel(strings.TrimSuffix(filepath.Base(c.unit.FilePath), ".go"))
	if err := c.declare(name, pos); err != nil {
		return "", "", err
	}
	c.bridgeVar = name
	c.namespace = namespace
	c.bridgePkg = c.imports.Require(BridgePackage, "bridge")
	return c.bridgePkg, c.bridgeVar, nil
}

func (c *unitContext) contextPkg() string {
	return c.imports.Require(contextPackage, "context")
}

// declare claims a package-level name for generated code
func (c *unitContext) declare(name string, pos token.Pos) error {
	if prev, taken := c.declared[name]; taken {
		err := bgerrors.Newf(bgerrors.DuplicateNameErrorCode, "generated identifier %s is already declared", name).
			WithLocation(c.loc(pos))
		if prev.IsValid() {
			err = err.WithSuggestion("rename the declaration at " + c.loc(prev).String())
		}
		return err
	}
	c.declared[name] = pos
	return nil
}

// originals returns every non-import declaration of the unit as written,
// without bindgen directives
func (c *unitContext) originals() []string {
	var out []string
	for _, decl := range c.unit.File.Decls {
		if gen, ok := decl.(*ast.GenDecl); ok && gen.Tok == token.IMPORT {
			continue
		}

		start := decl.Pos()
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Doc != nil {
				start = d.Doc.Pos()
			}
		case *ast.GenDecl:
			if d.Doc != nil {
				start = d.Doc.Pos()
			}
		}

		from := c.unit.Fset.Position(start).Offset
		to := c.unit.Fset.Position(decl.End()).Offset
		out = append(out, stripDirectives(string(c.unit.Source[from:to])))
	}
	return out
}

func (c *unitContext) loc(pos token.Pos) bgerrors.SourceLocation {
	if !pos.IsValid() {
		return bgerrors.SourceLocation{File: c.unit.FilePath}
	}
	return bgerrors.At(c.unit.Fset.Position(pos))
}

// docText returns a doc comment without bindgen directives
func docText(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	var lines []string
	for _, comment := range doc.List {
		if annotations.IsDirective(comment.Text) {
			continue
		}
		lines = append(lines, comment.Text)
	}
	return strings.Join(lines, "\n")
}

func stripDirectives(src string) string {
	lines := strings.Split(src, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if annotations.IsDirective(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// topLevelNames collects the package-level identifiers a file declares
func topLevelNames(file *ast.File) map[string]token.Pos {
	names := make(map[string]token.Pos)
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil {
				names[d.Name.Name] = d.Name.Pos()
			}
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					names[s.Name.Name] = s.Name.Pos()
				case *ast.ValueSpec:
					for _, ident := range s.Names {
						names[ident.Name] = ident.Pos()
					}
				}
			}
		}
	}
	delete(names, "_")
	return names
}
