package cli

import (
	"errors"
	"fmt"
	"go/parser"
	"go/scanner"
	"go/token"
	"io/fs"
	"os"

	"github.com/toyz/bindgen/internal/generator"
	"github.com/toyz/bindgen/internal/utils"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	scanner     *DirectoryScanner
	diagnostics *utils.DiagnosticSystem
	dryRun      bool
}

// NewCleaner creates a new cleaner for outputs ending in suffix
func NewCleaner(suffix string, diagnostics *utils.DiagnosticSystem, dryRun bool) *Cleaner {
	return &Cleaner{
		scanner:     NewDirectoryScanner(suffix),
		diagnostics: diagnostics,
		dryRun:      dryRun,
	}
}

// CleanGeneratedFiles removes the generated files under paths and returns
// what it removed. Files with the output suffix that bindgen did not write
// are left alone.
func (c *Cleaner) CleanGeneratedFiles(paths []string) ([]string, error) {
	candidates, err := c.scanner.ScanGenerated(paths)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, path := range candidates {
		generated, err := IsGeneratedFile(path)
		if err != nil {
			return removed, err
		}
		if !generated {
			c.diagnostics.Warn("Skipping %s: not generated by bindgen", path)
			continue
		}

		c.diagnostics.PhaseProgress("Removing " + path)
		if !c.dryRun {
			if err := os.Remove(path); err != nil {
				return removed, fmt.Errorf("failed to remove file %s: %w", path, err)
			}
		}
		removed = append(removed, path)
	}
	return removed, nil
}

// IsGeneratedFile reports whether path carries the bindgen generated-code header
func IsGeneratedFile(path string) (bool, error) {
	file, err := parser.ParseFile(token.NewFileSet(), path, nil, parser.PackageClauseOnly|parser.ParseComments)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		if _, ok := err.(scanner.ErrorList); ok {
			// Unparseable files are not ours to delete.
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	for _, group := range file.Comments {
		if group.Pos() > file.Package {
			break
		}
		for _, c := range group.List {
			if c.Text == generator.GeneratedHeader {
				return true, nil
			}
		}
	}
	return false, nil
}
