package utils

import (
	"bytes"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
)

// ValidateGoCode checks if the provided code is valid Go syntax
func ValidateGoCode(code []byte) error {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "", code, parser.ParseComments)
	return err
}

// WriteGoFile writes generated code, leaving an identical existing file untouched.
// It reports whether the file changed.
func WriteGoFile(filename string, code []byte) (bool, error) {
	if err := ValidateGoCode(code); err != nil {
		return false, fmt.Errorf("refusing to write invalid Go to %s: %w", filename, err)
	}

	if existing, err := os.ReadFile(filename); err == nil && bytes.Equal(existing, code) {
		return false, nil
	}

	// Write through a temporary file so readers never see a partial file.
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".bindgen-*.tmp")
	if err != nil {
		return false, fmt.Errorf("failed to create temporary file for %s: %w", filename, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(code); err != nil {
		tmp.Close()
		return false, fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return false, fmt.Errorf("failed to set permissions on %s: %w", filename, err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return false, fmt.Errorf("failed to replace %s: %w", filename, err)
	}
	return true, nil
}
