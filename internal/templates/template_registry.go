package templates

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"text/template"
)

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string

	once   sync.Once
	parsed *template.Template
	err    error
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerFileTemplates()
	registry.registerInvokeTemplates()
	registry.registerSkeletonTemplates()
	registry.registerEventTemplates()

	return registry
}

var (
	defaultRegistry     *TemplateRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared template registry
func DefaultRegistry() *TemplateRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewTemplateRegistry()
	})
	return defaultRegistry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.templates[name]
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

// Names returns the registered template names, sorted
func (tr *TemplateRegistry) Names() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute renders the named template with data
func (tr *TemplateRegistry) Execute(name string, data interface{}) (string, error) {
	tr.once.Do(tr.parse)
	if tr.err != nil {
		return "", tr.err
	}

	var buf bytes.Buffer
	if err := tr.parsed.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (tr *TemplateRegistry) parse() {
	funcMap := template.FuncMap{
		"quote": strconv.Quote,
		"join":  strings.Join,
	}

	root := template.New("bindgen").Funcs(funcMap)
	for _, name := range tr.Names() {
		if _, err := root.New(name).Parse(tr.templates[name]); err != nil {
			tr.err = fmt.Errorf("failed to parse template %s: %w", name, err)
			return
		}
	}
	tr.parsed = root
}

// registerFileTemplates registers the unit layout
func (tr *TemplateRegistry) registerFileTemplates() {
	tr.templates["file"] = `// Code generated by bindgen. DO NOT EDIT.

package {{.Package}}
{{if .Imports}}
{{.Imports}}
{{- end}}

{{.Body}}
`

	tr.templates["bridge"] = `var {{.Var}} = {{.Package}}.Lookup({{quote .Namespace}})`
}

// registerInvokeTemplates registers the invocation stub templates
func (tr *TemplateRegistry) registerInvokeTemplates() {
	tr.templates["record"] = `{{if not .Fields}}struct{}{}{{else}}struct {
{{- range .Fields}}
	{{.GoName}} {{.Type}} ` + "`" + `json:"{{.WireName}}"` + "`" + `
{{- end}}
}{ {{- range $i, $f := .Fields}}{{if $i}}, {{end}}{{$f.Value}}{{end -}} }{{end}}`

	tr.templates["stub"] = `{{if .Doc}}{{.Doc}}
{{end}}func {{.Name}}({{.Params}}){{.Results}} {
	const {{.Cmd}} = {{quote .Command}}
{{- if .ReturnMode}}
	{{.Args}}, {{.Err}} := {{.Bridge}}.TryEncode({{.Cmd}}, {{template "record" .}})
	if {{.Err}} != nil {
		return {{if .Success}}{{.SuccessZero}}, {{end}}{{.Err}}
	}
{{- else}}
	{{.Args}} := {{.Bridge}}.Encode({{.Cmd}}, {{template "record" .}})
{{- end}}
{{- if .Success}}
	{{.Value}}, {{.Err}} := {{.Host}}.Invoke({{.Ctx}}, {{.Cmd}}, {{.Args}})
	if {{.Err}} != nil {
{{- if .Error}}
		return {{.SuccessZero}}, {{.Failure}}
{{- else}}
		{{.Bridge}}.Fatal({{.Cmd}}, {{.Err}})
{{- end}}
	}
{{- if .ReturnMode}}
	return {{.Bridge}}.TryDecode[{{.Success}}]({{.Cmd}}, {{.Value}})
{{- else if .Error}}
	return {{.Bridge}}.Decode[{{.Success}}]({{.Cmd}}, {{.Value}}), {{.ErrorZero}}
{{- else}}
	return {{.Bridge}}.Decode[{{.Success}}]({{.Cmd}}, {{.Value}})
{{- end}}
{{- else}}
	if _, {{.Err}} {{if .ReturnMode}}={{else}}:={{end}} {{.Host}}.Invoke({{.Ctx}}, {{.Cmd}}, {{.Args}}); {{.Err}} != nil {
{{- if .Error}}
		return {{.Failure}}
	}
	return {{.ErrorZero}}
{{- else}}
		{{.Bridge}}.Fatal({{.Cmd}}, {{.Err}})
	}
{{- end}}
{{- end}}
}`
}

// registerSkeletonTemplates registers the skeleton templates
func (tr *TemplateRegistry) registerSkeletonTemplates() {
	tr.templates["skeleton"] = `// {{.Type}} implements {{.Interface}} with methods that panic when called.
type {{.Type}} struct{}

var _ {{.Interface}} = {{.Type}}{}
{{range .Methods}}
func ({{$.Type}}) {{.Name}}({{.Params}}){{.Results}} {
	panic({{quote .Message}})
}
{{end}}`
}

// registerEventTemplates registers the event metadata templates
func (tr *TemplateRegistry) registerEventTemplates() {
	tr.templates["events"] = `// {{.NameFunc}} returns the declared name of the variant held by e.
func {{.NameFunc}}(e {{.Name}}) string {
	switch e.(type) {
{{- range .Variants}}
	case {{join .Cases ", "}}:
		return {{quote .Name}}
{{- end}}
	}
	return ""
}

// {{.Binding}} is a payload-free handle on one {{.Name}} variant.
type {{.Binding}} interface {
	String() string
	{{.Marker}}()
}
{{range .Variants}}
// {{.Binding}} binds the {{quote .Name}} event.
type {{.Binding}} struct{}

// String returns the event name.
func ({{.Binding}}) String() string {
	return {{quote .Name}}
}

func ({{.Binding}}) {{$.Marker}}() {}

// Listen calls handler with every {{.Name}} delivered until the returned
// subscription is closed.
func (b {{.Binding}}) Listen({{$.CtxParam}} {{$.Context}}.Context, handler func({{.Payload}})) (*{{$.Bridge}}.Subscription[{{.Payload}}], error) {
	return {{$.Bridge}}.Subscribe({{$.CtxParam}}, {{$.Host}}, b.String(), handler{{if $.ReturnMode}}, {{$.Bridge}}.ReportDecodeErrors(){{end}})
}
{{end}}
// {{.BindingsVar}} lists the bindings of every {{.Name}} variant in declaration order.
var {{.BindingsVar}} = []{{.Binding}}{
{{- range .Variants}}
	{{.Binding}}{},
{{- end}}
}

// {{.BindingOf}} returns the binding for the variant held by e.
func {{.BindingOf}}(e {{.Name}}) {{.Binding}} {
	switch e.(type) {
{{- range .Variants}}
	case {{join .Cases ", "}}:
		return {{.Binding}}{}
{{- end}}
	}
	return nil
}`
}
