package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create test file %s: %v", name, err)
		}
	}
}

func TestFileProcessor_SourceFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"api.go":               "package api",
		"api_test.go":          "package api",
		"api_bindgen.go":       "package api",
		"README.md":            "# README",
		"sub/events.go":        "package sub",
		"vendor/dep/dep.go":    "package dep",
		".hidden/hidden.go":    "package hidden",
		"_scratch/scratch.go":  "package scratch",
		"sub/deeper/deeper.go": "package deeper",
	})

	fp := NewFileProcessor("_bindgen.go")

	flat, err := fp.SourceFiles([]string{tmpDir})
	if err != nil {
		t.Fatalf("SourceFiles failed: %v", err)
	}
	want := []string{filepath.Join(tmpDir, "api.go")}
	if !reflect.DeepEqual(flat, want) {
		t.Errorf("flat scan = %v, want %v", flat, want)
	}

	recursive, err := fp.SourceFiles([]string{tmpDir + "/..."})
	if err != nil {
		t.Fatalf("SourceFiles failed: %v", err)
	}
	want = []string{
		filepath.Join(tmpDir, "api.go"),
		filepath.Join(tmpDir, "sub", "deeper", "deeper.go"),
		filepath.Join(tmpDir, "sub", "events.go"),
	}
	if !reflect.DeepEqual(recursive, want) {
		t.Errorf("recursive scan = %v, want %v", recursive, want)
	}
}

func TestFileProcessor_Deduplicates(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{"api.go": "package api"})

	fp := NewFileProcessor("_bindgen.go")
	files, err := fp.SourceFiles([]string{tmpDir, tmpDir + "/...", filepath.Join(tmpDir, "api.go")})
	if err != nil {
		t.Fatalf("SourceFiles failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("expected 1 file, got %v", files)
	}
}

func TestFileProcessor_GeneratedFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"api.go":            "package api",
		"api_bindgen.go":    "package api",
		"sub/ev_bindgen.go": "package sub",
		"sub/notes_gen.go":  "package sub",
	})

	fp := NewFileProcessor("_bindgen.go")
	files, err := fp.GeneratedFiles([]string{tmpDir + "/..."})
	if err != nil {
		t.Fatalf("GeneratedFiles failed: %v", err)
	}
	want := []string{
		filepath.Join(tmpDir, "api_bindgen.go"),
		filepath.Join(tmpDir, "sub", "ev_bindgen.go"),
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("GeneratedFiles = %v, want %v", files, want)
	}
}

func TestFileProcessor_MissingRoot(t *testing.T) {
	fp := NewFileProcessor("_bindgen.go")
	if _, err := fp.SourceFiles([]string{filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestSplitPattern(t *testing.T) {
	tests := []struct {
		pattern   string
		dir       string
		recursive bool
	}{
		{"./...", ".", true},
		{"...", ".", true},
		{"pkg/api/...", "pkg/api", true},
		{"pkg/api", "pkg/api", false},
		{".", ".", false},
	}

	for _, tt := range tests {
		dir, recursive := SplitPattern(tt.pattern)
		if dir != tt.dir || recursive != tt.recursive {
			t.Errorf("SplitPattern(%q) = (%q, %v), want (%q, %v)", tt.pattern, dir, recursive, tt.dir, tt.recursive)
		}
	}
}
