package templates

import (
	"fmt"
	"go/ast"
	"go/token"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"
)

// ImportSpec is one import of a generated unit. An empty Name imports the
// package under its own name.
type ImportSpec struct {
	Name string
	Path string
}

// ImportManager handles import generation and deduplication
type ImportManager struct {
	imports  []ImportSpec
	reserved map[string]bool
}

// NewImportManager creates a new import manager
func NewImportManager() *ImportManager {
	return &ImportManager{
		reserved: make(map[string]bool),
	}
}

// AddFileImports carries over the imports of a source file. Side-effect
// imports are left to the source file.
func (im *ImportManager) AddFileImports(file *ast.File) {
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := ""
		if spec.Name != nil {
			name = spec.Name.Name
		}
		if name == "_" {
			continue
		}
		im.add(ImportSpec{Name: name, Path: path})
	}
}

// Reserve marks identifiers that must not be used as import names
func (im *ImportManager) Reserve(names ...string) {
	for _, name := range names {
		im.reserved[name] = true
	}
}

// Require makes path available and returns the name it is referenced by.
// An existing import is reused unless its name is reserved.
func (im *ImportManager) Require(path, preferred string) string {
	for _, spec := range im.imports {
		if spec.Path != path {
			continue
		}
		local := spec.Name
		if local == "" {
			local = preferred
		}
		if local != "." && !im.reserved[local] {
			return local
		}
	}

	taken := make(map[string]bool, len(im.reserved)+len(im.imports))
	for name := range im.reserved {
		taken[name] = true
	}
	for _, spec := range im.imports {
		taken[spec.localName()] = true
	}

	name := FreshName(preferred, taken)
	spec := ImportSpec{Path: path}
	if name != preferred || !contains(ImportNameCandidates(path), preferred) {
		spec.Name = name
	}
	im.add(spec)
	return name
}

// Path returns the import path a qualifier refers to. An unnamed import
// answers to every name its path suggests.
func (im *ImportManager) Path(qualifier string) (string, bool) {
	for _, spec := range im.imports {
		if spec.Name == qualifier {
			return spec.Path, true
		}
	}
	for _, spec := range im.imports {
		if spec.Name == "" && contains(ImportNameCandidates(spec.Path), qualifier) {
			return spec.Path, true
		}
	}
	return "", false
}

// LocalNames returns every name the collected imports may be referenced by
func (im *ImportManager) LocalNames() []string {
	var out []string
	for _, spec := range im.imports {
		if spec.Name != "" {
			out = append(out, spec.Name)
			continue
		}
		out = append(out, ImportNameCandidates(spec.Path)...)
	}
	return out
}

// Imports returns the collected imports, standard library first, sorted by path
func (im *ImportManager) Imports() []ImportSpec {
	out := append([]ImportSpec(nil), im.imports...)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := isStandard(out[i].Path), isStandard(out[j].Path)
		if si != sj {
			return si
		}
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// GenerateImports generates the import section
func (im *ImportManager) GenerateImports() string {
	imports := im.Imports()
	if len(imports) == 0 {
		return ""
	}

	var result strings.Builder
	result.WriteString("import (\n")
	for i, spec := range imports {
		if i > 0 && isStandard(imports[i-1].Path) && !isStandard(spec.Path) {
			result.WriteString("\n")
		}
		if spec.Name != "" {
			result.WriteString(fmt.Sprintf("\t%s %q\n", spec.Name, spec.Path))
		} else {
			result.WriteString(fmt.Sprintf("\t%q\n", spec.Path))
		}
	}
	result.WriteString(")\n")

	return result.String()
}

func (im *ImportManager) add(spec ImportSpec) {
	for _, existing := range im.imports {
		if existing == spec {
			return
		}
	}
	im.imports = append(im.imports, spec)
}

func (s ImportSpec) localName() string {
	if s.Name != "" {
		return s.Name
	}
	candidates := ImportNameCandidates(s.Path)
	return candidates[0]
}

// PruneImports deletes the imports of file that nothing in it references.
// Dot imports are kept. An unnamed import counts as used when any name its
// path suggests is used as a qualifier.
func PruneImports(fset *token.FileSet, file *ast.File) {
	used := usedQualifiers(file)

	type removal struct{ name, path string }
	var removals []removal
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		switch {
		case spec.Name != nil && spec.Name.Name == ".":
			continue
		case spec.Name != nil && spec.Name.Name == "_":
			removals = append(removals, removal{"_", path})
		case spec.Name != nil:
			if !used[spec.Name.Name] {
				removals = append(removals, removal{spec.Name.Name, path})
			}
		default:
			keep := false
			for _, candidate := range ImportNameCandidates(path) {
				if used[candidate] {
					keep = true
					break
				}
			}
			if !keep {
				removals = append(removals, removal{"", path})
			}
		}
	}

	for _, r := range removals {
		astutil.DeleteNamedImport(fset, file, r.name, r.path)
	}
}

// usedQualifiers collects the unresolved identifiers used as selector operands
func usedQualifiers(file *ast.File) map[string]bool {
	used := make(map[string]bool)
	ast.Inspect(file, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if ident, ok := sel.X.(*ast.Ident); ok && ident.Obj == nil {
			used[ident.Name] = true
		}
		return true
	})
	return used
}

// ImportNameCandidates returns the package names an import path suggests,
// most likely first
func ImportNameCandidates(path string) []string {
	elems := strings.Split(path, "/")
	last := elems[len(elems)-1]
	if len(elems) > 1 && isMajorVersion(last) {
		last = elems[len(elems)-2]
	}

	var out []string
	push := func(name string) {
		if name != "" && !contains(out, name) {
			out = append(out, name)
		}
	}

	push(last)
	if i := strings.Index(last, ".v"); i > 0 {
		push(last[:i])
	}
	trimmed := strings.TrimSuffix(strings.TrimPrefix(last, "go-"), "-go")
	trimmed = strings.TrimSuffix(trimmed, ".go")
	push(trimmed)
	push(strings.NewReplacer("-", "", ".", "").Replace(trimmed))
	push(strings.NewReplacer("-", "_", ".", "_").Replace(trimmed))

	return out
}

func isMajorVersion(elem string) bool {
	if len(elem) < 2 || elem[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(elem[1:])
	return err == nil
}

func isStandard(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
