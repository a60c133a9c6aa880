package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/bindgen/internal/utils"
)

const apiSource = `package app

//bindgen:invoke
type Commands interface {
	Greet(name string) (string, error)
}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/app\n\ngo 1.25\n\nrequire github.com/toyz/bindgen v0.1.0\n")
	return root
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	utils.DisableColors()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "bindgen [paths...]")
	assert.Contains(t, stdout, "//bindgen:invoke")
	assert.Contains(t, stdout, "--cmd-prefix")
	assert.Contains(t, stdout, "--dry-run")
}

func TestRootCommand_Generate(t *testing.T) {
	root := newProject(t)
	writeFile(t, filepath.Join(root, "api.go"), apiSource)

	stdout, _, err := execute(t, root+"/...")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Files written: 1")
	assert.Contains(t, stdout, "Generation complete!")

	content, err := os.ReadFile(filepath.Join(root, "api_bindgen.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `const cmd = "Greet"`)
}

func TestRootCommand_FlagOverridesConfig(t *testing.T) {
	root := newProject(t)
	writeFile(t, filepath.Join(root, "bindgen.yaml"), "cmd_prefix: from_config_\nnamespace: app.bridge\n")
	writeFile(t, filepath.Join(root, "api.go"), apiSource)

	_, _, err := execute(t, "--quiet", "--cmd-prefix", "flag_", root)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(root, "api_bindgen.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `const cmd = "flag_Greet"`)
	assert.Contains(t, string(content), `bridge.Lookup("app.bridge")`)
}

func TestRootCommand_ExplicitConfig(t *testing.T) {
	root := newProject(t)
	config := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, config, "suffix: _gen.go\n")
	writeFile(t, filepath.Join(root, "api.go"), apiSource)

	_, _, err := execute(t, "--quiet", "--config", config, root)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "api_gen.go"))
}

func TestRootCommand_Failure(t *testing.T) {
	root := newProject(t)
	writeFile(t, filepath.Join(root, "api.go"), `package app

//bindgen:invoke
type Commands interface {
	Greet(name string) (string, int, error)
}
`)

	_, stderr, err := execute(t, "--quiet", root)
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, "ReturnShapeError")
	assert.NoFileExists(t, filepath.Join(root, "api_bindgen.go"))
}

func TestRootCommand_Clean(t *testing.T) {
	root := newProject(t)
	writeFile(t, filepath.Join(root, "api.go"), apiSource)

	_, _, err := execute(t, "--quiet", root)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(root, "api_bindgen.go"))

	stdout, _, err := execute(t, "--clean", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Files removed: 1")
	assert.NoFileExists(t, filepath.Join(root, "api_bindgen.go"))
	assert.FileExists(t, filepath.Join(root, "api.go"))
}

func TestRootCommand_InvalidFlags(t *testing.T) {
	root := newProject(t)

	_, _, err := execute(t, "--host", "not-an-ident", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host_packages")

	_, _, err = execute(t, "--verbose", "--quiet", root)
	require.Error(t, err)
}
