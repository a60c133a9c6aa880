package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bgerrors "github.com/toyz/bindgen/internal/errors"
	"github.com/toyz/bindgen/internal/utils"
)

const commandsSource = `package app

//bindgen:invoke
type Commands interface {
	Greet(name string) (string, error)
}
`

const brokenSource = `package app

//bindgen:invoke
type Broken interface {
	Split() (int, string, error)
}
`

func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/app\n\ngo 1.25\n\nrequire github.com/toyz/bindgen v0.1.0\n")
	return root
}

func newTestGenerator(root string, mutate ...func(*Config)) *Generator {
	cfg := DefaultConfig()
	cfg.Directories = []string{root + "/..."}
	for _, m := range mutate {
		m(cfg)
	}
	return NewGenerator(cfg, utils.NewQuietDiagnostics())
}

func TestGenerator_Run(t *testing.T) {
	root := newProject(t)
	writeFile(t, filepath.Join(root, "api.go"), commandsSource)
	writeFile(t, filepath.Join(root, "plain.go"), "package app\n\nfunc helper() {}\n")

	summary, err := newTestGenerator(root).Run(context.Background())
	require.NoError(t, err)

	output := filepath.Join(root, "api_bindgen.go")
	assert.Equal(t, 2, summary.FilesScanned)
	assert.Equal(t, 1, summary.UnitsGenerated)
	assert.Equal(t, []string{output}, summary.Written)
	assert.Equal(t, 1, summary.Stats.Stubs)
	assert.NoFileExists(t, filepath.Join(root, "plain_bindgen.go"))

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(content), "func Greet(name string) (string, error) {")

	generated, err := IsGeneratedFile(output)
	require.NoError(t, err)
	assert.True(t, generated)

	// A second run over unchanged input leaves the output alone.
	summary, err = newTestGenerator(root).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.Written)
	assert.Equal(t, []string{output}, summary.Unchanged)
}

func TestGenerator_FailedUnitWritesNothing(t *testing.T) {
	root := newProject(t)
	writeFile(t, filepath.Join(root, "api.go"), commandsSource)
	writeFile(t, filepath.Join(root, "broken.go"), brokenSource)

	summary, err := newTestGenerator(root).Run(context.Background())
	require.Error(t, err)
	assert.True(t, bgerrors.HasCode(err, bgerrors.ReturnShapeErrorCode))

	var multi *bgerrors.MultipleErrors
	require.ErrorAs(t, err, &multi)
	assert.Len(t, multi.Errors, 1)

	assert.Equal(t, 1, summary.Failed)
	assert.FileExists(t, filepath.Join(root, "api_bindgen.go"))
	assert.NoFileExists(t, filepath.Join(root, "broken_bindgen.go"))
}

func TestGenerator_RemovesStaleOutput(t *testing.T) {
	root := newProject(t)
	source := filepath.Join(root, "api.go")
	output := filepath.Join(root, "api_bindgen.go")
	writeFile(t, source, commandsSource)

	_, err := newTestGenerator(root).Run(context.Background())
	require.NoError(t, err)
	require.FileExists(t, output)

	writeFile(t, source, "package app\n\ntype Commands interface{}\n")
	summary, err := newTestGenerator(root).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{output}, summary.Removed)
	assert.NoFileExists(t, output)
}

func TestGenerator_KeepsForeignOutput(t *testing.T) {
	root := newProject(t)
	writeFile(t, filepath.Join(root, "api.go"), "package app\n")
	foreign := filepath.Join(root, "api_bindgen.go")
	writeFile(t, foreign, "package app\n\nvar handWritten = 1\n")

	summary, err := newTestGenerator(root).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.Removed)
	assert.FileExists(t, foreign)
}

func TestGenerator_DryRun(t *testing.T) {
	root := newProject(t)
	writeFile(t, filepath.Join(root, "api.go"), commandsSource)

	summary, err := newTestGenerator(root, func(c *Config) { c.DryRun = true }).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "api_bindgen.go")}, summary.Written)
	assert.NoFileExists(t, filepath.Join(root, "api_bindgen.go"))
}

func TestGenerator_Suffix(t *testing.T) {
	root := newProject(t)
	writeFile(t, filepath.Join(root, "api.go"), commandsSource)

	_, err := newTestGenerator(root, func(c *Config) { c.Suffix = "_gen.go" }).Run(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "api_gen.go"))
}

func TestGenerator_MissingDirectory(t *testing.T) {
	_, err := newTestGenerator(filepath.Join(t.TempDir(), "missing")).Run(context.Background())
	require.Error(t, err)
	assert.True(t, bgerrors.HasCode(err, bgerrors.FileSystemErrorCode))
}

func TestGenerator_Cancelled(t *testing.T) {
	root := newProject(t)
	writeFile(t, filepath.Join(root, "api.go"), commandsSource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestGenerator(root).Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(root, "api_bindgen.go"))
}
