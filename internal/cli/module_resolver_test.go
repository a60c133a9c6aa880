package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleResolver_Resolve(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/app\n\ngo 1.25\n\nrequire github.com/toyz/bindgen v0.1.0\n")
	writeFile(t, filepath.Join(root, "pkg", "api", "api.go"), "package api\n")

	info, err := NewModuleResolver().Resolve(filepath.Join(root, "pkg", "api"))
	require.NoError(t, err)
	assert.Equal(t, "example.com/app", info.Path)
	assert.Equal(t, filepath.Join(root, "go.mod"), info.GoModPath)
	assert.True(t, info.RequiresBridge)
	assert.Empty(t, NewModuleResolver().CheckRuntime(root))
}

func TestModuleResolver_MissingRuntime(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/app\n\ngo 1.25\n")

	warning := NewModuleResolver().CheckRuntime(root)
	assert.Contains(t, warning, "does not require github.com/toyz/bindgen")
	assert.Contains(t, warning, "go get github.com/toyz/bindgen")
}
