package cli

import (
	"github.com/toyz/bindgen/internal/utils"
)

// DirectoryScanner finds the Go files a run reads or cleans
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewDirectoryScanner creates a new directory scanner for outputs ending in suffix
func NewDirectoryScanner(suffix string) *DirectoryScanner {
	return &DirectoryScanner{
		fileProcessor: utils.NewFileProcessor(suffix),
	}
}

// ScanSources returns the input files under the given paths.
// Supports Go-style patterns like "./..." for recursive scanning.
func (s *DirectoryScanner) ScanSources(paths []string) ([]string, error) {
	return s.fileProcessor.SourceFiles(paths)
}

// ScanGenerated returns the generated outputs under the given paths
func (s *DirectoryScanner) ScanGenerated(paths []string) ([]string, error) {
	return s.fileProcessor.GeneratedFiles(paths)
}
