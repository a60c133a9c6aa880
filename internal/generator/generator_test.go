package generator

import (
	"go/ast"
	goparser "go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bgerrors "github.com/toyz/bindgen/internal/errors"
	"github.com/toyz/bindgen/internal/models"
	"github.com/toyz/bindgen/internal/parser"
)

func generate(t *testing.T, src string, opts ...Option) (*models.GeneratedFile, error) {
	t.Helper()
	unit, err := parser.NewParser(models.DefaultGenerationConfig()).ParseSource("api.go", []byte(src))
	require.NoError(t, err)
	return NewGenerator(opts...).Generate(unit)
}

func mustGenerate(t *testing.T, src string, opts ...Option) string {
	t.Helper()
	out, err := generate(t, src, opts...)
	require.NoError(t, err)
	require.NotNil(t, out)

	_, err = goparser.ParseFile(token.NewFileSet(), out.Path, out.Content, goparser.ParseComments)
	require.NoError(t, err, "generated code:\n%s", out.Content)
	return string(out.Content)
}

func TestGenerate_InvokeStub(t *testing.T) {
	src := `package api

//bindgen:invoke cmd_prefix="app_"
type Commands interface {
	// Hello greets name.
	Hello(name string) (string, error)
}
`
	out, err := generate(t, src)
	require.NoError(t, err)
	assert.Equal(t, "api_bindgen.go", out.Path)
	assert.Equal(t, "api.go", out.SourcePath)
	assert.Equal(t, 1, out.Stats.Stubs)

	code := string(out.Content)
	assert.True(t, strings.HasPrefix(code, "// Code generated by bindgen. DO NOT EDIT.\n"))
	assert.Contains(t, code, `var bindgenApi = bridge.Lookup("window.__TAURI__.core")`)
	assert.Contains(t, code, "// Hello greets name.\nfunc Hello(name string) (string, error) {")
	assert.Contains(t, code, `const cmd = "app_Hello"`)
	assert.Contains(t, code, "Name string `json:\"name\"`")
	assert.Contains(t, code, "value, err := bindgenApi.Invoke(context.Background(), cmd, args)")
	assert.Contains(t, code, `return "", bridge.Fail(cmd, err)`)
	assert.Contains(t, code, "return bridge.Decode[string](cmd, value), nil")
	assert.Contains(t, code, `"github.com/toyz/bindgen/pkg/bridge"`)
}

func TestGenerate_InvokeShapes(t *testing.T) {
	src := `package api

import "context"

type LoadError struct{ Reason string }

//bindgen:invoke
type Api interface {
	Save(ctx context.Context, filePath string, data []byte) error
	Load(id int) (*Doc, LoadError)
	Count() int
	Ping()
	Sum(values ...int) int
}

type Doc struct{}
`
	code := mustGenerate(t, src)

	assert.Contains(t, code, "func Save(ctx context.Context, filePath string, data []byte) error {")
	assert.Contains(t, code, "FilePath string `json:\"filePath\"`")
	assert.Contains(t, code, "bindgenApi.Invoke(ctx, cmd, args)")
	assert.Contains(t, code, "return bridge.Fail(cmd, err)")

	assert.Contains(t, code, "return nil, bridge.Decode[LoadError](cmd, bridge.Failure(err))")
	assert.Contains(t, code, "return bridge.Decode[*Doc](cmd, value), *new(LoadError)")

	assert.Contains(t, code, "bridge.Fatal(cmd, err)")
	assert.Contains(t, code, "return bridge.Decode[int](cmd, value)")

	assert.Contains(t, code, "func Sum(values ...int) int {")
	assert.Contains(t, code, "Values []int `json:\"values\"`")

	assert.Contains(t, code, "}{}")
	assert.Equal(t, 1, strings.Count(code, "bridge.Lookup("))
}

func TestGenerate_LocalsAvoidParameters(t *testing.T) {
	src := `package api

//bindgen:invoke
type Api interface {
	Run(cmd string, args []string, err int) (string, error)
}
`
	code := mustGenerate(t, src)
	assert.Contains(t, code, `const cmd1 = "Run"`)
	assert.Contains(t, code, "args1 := bridge.Encode(cmd1,")
	assert.Contains(t, code, "value, err1 := bindgenApi.Invoke(context.Background(), cmd1, args1)")
	assert.Contains(t, code, "Cmd  string   `json:\"cmd\"`")
}

func TestGenerate_ImportShadowedByParameter(t *testing.T) {
	src := `package api

//bindgen:invoke
type Api interface {
	Open(context string, bridge int) error
}
`
	code := mustGenerate(t, src)
	assert.Contains(t, code, `bridge1 "github.com/toyz/bindgen/pkg/bridge"`)
	assert.Contains(t, code, `context1 "context"`)
	assert.Contains(t, code, "bindgenApi.Invoke(context1.Background(), cmd, args)")
}

func TestGenerate_QualifierHiddenByParameter(t *testing.T) {
	src := `package api

import "time"

//bindgen:invoke
type Api interface {
	Wait(time time.Duration, more ...time.Duration) (time.Time, error)
}
`
	code := mustGenerate(t, src)
	assert.Contains(t, code, "func Wait(time time.Duration, more ...time.Duration) (time.Time, error) {")
	assert.Contains(t, code, `time1 "time"`)
	assert.Contains(t, code, "Time time1.Duration   `json:\"time\"`")
	assert.Contains(t, code, "More []time1.Duration `json:\"more\"`")
	assert.Contains(t, code, "}{time, more}")
	assert.Contains(t, code, "return *new(time1.Time), bridge.Fail(cmd, err)")
	assert.Contains(t, code, "return bridge.Decode[time1.Time](cmd, value), nil")
}

func TestGenerate_QualifierHiddenByCustomError(t *testing.T) {
	src := `package api

import "net/url"

//bindgen:invoke
type Api interface {
	Check(url string) (bool, url.Error)
}
`
	code := mustGenerate(t, src)
	assert.Contains(t, code, `url1 "net/url"`)
	assert.Contains(t, code, "return false, bridge.Decode[url1.Error](cmd, bridge.Failure(err))")
	assert.Contains(t, code, "return bridge.Decode[bool](cmd, value), *new(url1.Error)")
}

func TestGenerate_LocalsAvoidQualifiers(t *testing.T) {
	src := `package api

import value "time"

type err struct{}

//bindgen:invoke
type Store interface {
	Get(id string) (value.Duration, error)
	Put(d value.Duration) err
}
`
	code := mustGenerate(t, src)
	assert.Contains(t, code, "value1, err := bindgenApi.Invoke(context.Background(), cmd, args)")
	assert.Contains(t, code, "return bridge.Decode[value.Duration](cmd, value1), nil")
	assert.Contains(t, code, "value1, err1 := bindgenApi.Invoke(context.Background(), cmd, args)")
	assert.Contains(t, code, "bridge.Fatal(cmd, err1)")
	assert.Contains(t, code, "return bridge.Decode[err](cmd, value1)")
	assert.NotContains(t, code, `value1 "time"`)
}

func TestGenerate_ReturnMode(t *testing.T) {
	src := `package api

//bindgen:invoke on_decode_error="return"
type Api interface {
	Hello(name string) (string, error)
	Save(name string) error
}
`
	code := mustGenerate(t, src)
	assert.Contains(t, code, "args, err := bridge.TryEncode(cmd,")
	assert.Contains(t, code, "return bridge.TryDecode[string](cmd, value)")
	assert.Contains(t, code, "if _, err = bindgenApi.Invoke(context.Background(), cmd, args); err != nil {")
	assert.NotContains(t, code, "bridge.Encode(")
}

func TestGenerate_ManyStubsShareBridge(t *testing.T) {
	src := `package api

//bindgen:invoke
type First interface {
	A()
	B()
}

//bindgen:invoke
type Second interface {
	C()
}

//bindgen:events
type Event interface{ isEvent() }

type Ping struct{}

func (Ping) isEvent() {}
`
	out, err := generate(t, src)
	require.NoError(t, err)
	code := string(out.Content)

	assert.Equal(t, 1, strings.Count(code, "var bindgenApi = "))
	assert.Equal(t, 3, out.Stats.Stubs)
	assert.Equal(t, 1, out.Stats.Events)
	assert.Equal(t, 1, out.Stats.Variants)
}

func TestGenerate_Events(t *testing.T) {
	src := `package api

//bindgen:events
type Event interface{ isEvent() }

type SomethingHappened struct {
	Payload []byte
}

func (*SomethingHappened) isEvent() {}

type SomeoneSaidHello string

func (SomeoneSaidHello) isEvent() {}

type NoPayload struct{}

func (NoPayload) isEvent() {}
`
	code := mustGenerate(t, src)

	assert.Contains(t, code, "func EventName(e Event) string {")
	assert.Contains(t, code, "case *SomethingHappened:\n\t\treturn \"SomethingHappened\"")
	assert.Contains(t, code, "case SomeoneSaidHello, *SomeoneSaidHello:\n\t\treturn \"SomeoneSaidHello\"")
	assert.Contains(t, code, "case NoPayload, *NoPayload:\n\t\treturn \"NoPayload\"")

	assert.Contains(t, code, "type EventBinding interface {")
	assert.Contains(t, code, "isEventBinding()")
	for _, name := range []string{"SomethingHappened", "SomeoneSaidHello", "NoPayload"} {
		assert.Contains(t, code, "type "+name+"Binding struct{}")
		assert.Contains(t, code, "func ("+name+"Binding) String() string {\n\treturn \""+name+"\"")
	}

	assert.Contains(t, code, "func (b SomethingHappenedBinding) Listen(ctx context.Context, handler func(*SomethingHappened)) (*bridge.Subscription[*SomethingHappened], error) {")
	assert.Contains(t, code, "return bridge.Subscribe(ctx, bindgenApi, b.String(), handler)")
	assert.Contains(t, code, "func (b NoPayloadBinding) Listen(ctx context.Context, handler func(NoPayload)) (*bridge.Subscription[NoPayload], error) {")

	assert.Contains(t, code, "var EventBindings = []EventBinding{\n\tSomethingHappenedBinding{},\n\tSomeoneSaidHelloBinding{},\n\tNoPayloadBinding{},\n}")
	assert.Contains(t, code, "func EventBindingOf(e Event) EventBinding {")
}

func TestGenerate_EventsReportDecodeErrors(t *testing.T) {
	src := `package api

//bindgen:events on_decode_error="return"
type Event interface{ isEvent() }

type Ping struct{}

func (Ping) isEvent() {}
`
	code := mustGenerate(t, src)
	assert.Contains(t, code, "bridge.Subscribe(ctx, bindgenApi, b.String(), handler, bridge.ReportDecodeErrors())")
}

func TestGenerate_Skeleton(t *testing.T) {
	src := `//go:build bindgen

package api

import (
	"context"

	"github.com/tauri-apps/tauri"
)

//bindgen:skeleton Commands

// Foo does foo.
func Foo(state tauri.State, bar string) (string, error) {
	return state.Get() + bar, nil
}

func Each[T any](ctx context.Context, win *tauri.Window, items []T, _skip int) (count int, err error) {
	return len(items), nil
}
`
	out, err := generate(t, src)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Stats.Skeletons)
	code := string(out.Content)

	assert.Contains(t, code, "// UnimplementedCommands implements Commands with methods that panic when called.\ntype UnimplementedCommands struct{}")
	assert.Contains(t, code, "var _ Commands = UnimplementedCommands{}")
	assert.Contains(t, code, "func (UnimplementedCommands) Foo(_bar string) (string, error) {\n\tpanic(\"bindgen: Commands.Foo is not implemented\")\n}")
	// The marker is prepended even to names that already carry it.
	assert.Contains(t, code, "func (UnimplementedCommands) Each(_ctx context.Context, _items []any, __skip int) (count int, err error) {")

	// Originals follow the skeleton unchanged.
	assert.Contains(t, code, "// Foo does foo.\nfunc Foo(state tauri.State, bar string) (string, error) {\n\treturn state.Get() + bar, nil\n}")
	assert.Contains(t, code, "func Each[T any](ctx context.Context, win *tauri.Window, items []T, _skip int) (count int, err error) {")
	assert.Less(t, strings.Index(code, "type UnimplementedCommands"), strings.Index(code, "func Foo("))

	assert.NotContains(t, code, "//bindgen:")
	assert.NotContains(t, code, "go:build")
	assert.Contains(t, code, `"github.com/tauri-apps/tauri"`)
}

func TestGenerate_SkeletonHostPredicate(t *testing.T) {
	src := `//go:build bindgen

package api

//bindgen:skeleton Api

func Foo(state State, bar string) {}

type State struct{}
`
	local := func(typ ast.Expr, _ []string) bool {
		ident, ok := typ.(*ast.Ident)
		return ok && ident.Name == "State"
	}
	code := mustGenerate(t, src, WithHostPredicate(local))
	assert.Contains(t, code, "func (UnimplementedApi) Foo(_bar string) {")
}

func TestGenerate_Idempotent(t *testing.T) {
	src := `package api

import "context"

//bindgen:invoke
type Api interface {
	Hello(ctx context.Context, name string) (string, error)
}

//bindgen:events
type Event interface{ isEvent() }

type A struct{ N int }

func (A) isEvent() {}
`
	first := mustGenerate(t, src)
	second := mustGenerate(t, src)
	assert.Equal(t, first, second)
}

func TestGenerate_EmptyUnit(t *testing.T) {
	out, err := generate(t, "package api\n\ntype Api interface{ A() }\n")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code bgerrors.ErrorCode
	}{
		{
			name: "return mode without error result",
			src:  "package api\n\n//bindgen:invoke on_decode_error=\"return\"\ntype Api interface{ Count() int }\n",
			code: bgerrors.ReturnShapeErrorCode,
		},
		{
			name: "return mode with custom error",
			src:  "package api\n\n//bindgen:invoke on_decode_error=\"return\"\ntype Api interface{ Count() (int, E) }\n\ntype E struct{}\n",
			code: bgerrors.ReturnShapeErrorCode,
		},
		{
			name: "wire name collision",
			src:  "package api\n\n//bindgen:invoke\ntype Api interface{ Pair(user_id int, userId int) }\n",
			code: bgerrors.DuplicateNameErrorCode,
		},
		{
			name: "stub collides with declaration",
			src:  "package api\n\n//bindgen:invoke\ntype Api interface{ Hello() }\n\nfunc Hello() {}\n",
			code: bgerrors.DuplicateNameErrorCode,
		},
		{
			name: "same method in two interfaces",
			src:  "package api\n\n//bindgen:invoke\ntype A interface{ Hello() }\n\n//bindgen:invoke\ntype B interface{ Hello() }\n",
			code: bgerrors.DuplicateNameErrorCode,
		},
		{
			name: "skeleton input without build tag",
			src:  "package api\n\n//bindgen:skeleton Api\n\nfunc Foo() {}\n",
			code: bgerrors.ConfigurationErrorCode,
		},
		{
			name: "skeleton parameter becomes a result name",
			src:  "//go:build bindgen\n\npackage api\n\n//bindgen:skeleton Api\n\nfunc Foo(n int) (_n int) { return n }\n",
			code: bgerrors.DuplicateNameErrorCode,
		},
		{
			name: "parameter shadows a result type",
			src:  "package api\n\n//bindgen:invoke\ntype Api interface{ Get(item string) (item, error) }\n\ntype item struct{}\n",
			code: bgerrors.DuplicateNameErrorCode,
		},
		{
			name: "skeleton comparable type parameter",
			src:  "//go:build bindgen\n\npackage api\n\n//bindgen:skeleton Api\n\nfunc Foo[K comparable](k K) {}\n",
			code: bgerrors.TypeParametersErrorCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := generate(t, tt.src)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, bgerrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestHostOwned(t *testing.T) {
	tests := []struct {
		typ  string
		want bool
	}{
		{"tauri.State", true},
		{"*tauri.Window", true},
		{"[]tauri.Window", true},
		{"tauri.State[Config]", true},
		{"string", false},
		{"other.State", false},
		{"map[string]tauri.State", false},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			expr, err := goparser.ParseExpr(tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, HostOwned(expr, []string{"tauri"}))
		})
	}
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "pkg/api_bindgen.go", OutputPath("pkg/api.go", DefaultSuffix))
	assert.Equal(t, "api.gen.go", OutputPath("api.go", ".gen.go"))
}
