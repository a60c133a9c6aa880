package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/bindgen/internal/generator"
	"github.com/toyz/bindgen/internal/utils"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCleaner_CleanGeneratedFiles(t *testing.T) {
	root := t.TempDir()
	ours := filepath.Join(root, "api_bindgen.go")
	nested := filepath.Join(root, "sub", "events_bindgen.go")
	foreign := filepath.Join(root, "hand_bindgen.go")
	source := filepath.Join(root, "api.go")

	writeFile(t, ours, generator.GeneratedHeader+"\n\npackage api\n")
	writeFile(t, nested, generator.GeneratedHeader+"\n\npackage sub\n")
	writeFile(t, foreign, "package api\n")
	writeFile(t, source, "package api\n")

	cleaner := NewCleaner(generator.DefaultSuffix, utils.NewQuietDiagnostics(), false)
	removed, err := cleaner.CleanGeneratedFiles([]string{root + "/..."})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{ours, nested}, removed)

	assert.NoFileExists(t, ours)
	assert.NoFileExists(t, nested)
	assert.FileExists(t, foreign)
	assert.FileExists(t, source)
}

func TestCleaner_DryRun(t *testing.T) {
	root := t.TempDir()
	ours := filepath.Join(root, "api_bindgen.go")
	writeFile(t, ours, generator.GeneratedHeader+"\n\npackage api\n")

	cleaner := NewCleaner(generator.DefaultSuffix, utils.NewQuietDiagnostics(), true)
	removed, err := cleaner.CleanGeneratedFiles([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{ours}, removed)
	assert.FileExists(t, ours)
}

func TestIsGeneratedFile(t *testing.T) {
	root := t.TempDir()

	generated, err := IsGeneratedFile(filepath.Join(root, "missing.go"))
	require.NoError(t, err)
	assert.False(t, generated)

	broken := filepath.Join(root, "broken.go")
	writeFile(t, broken, "this is not go")
	generated, err = IsGeneratedFile(broken)
	require.NoError(t, err)
	assert.False(t, generated)
}
