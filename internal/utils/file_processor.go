package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	bgerrors "github.com/toyz/bindgen/internal/errors"
)

// FileProcessor finds the files generation reads and writes
type FileProcessor struct {
	suffix string
}

// NewFileProcessor creates a processor for outputs ending in suffix
func NewFileProcessor(suffix string) *FileProcessor {
	return &FileProcessor{suffix: suffix}
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info fs.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info fs.DirEntry) bool

// SourceFileFilter accepts .go files that are neither tests nor generated outputs
func SourceFileFilter(suffix string) FileFilter {
	return func(path string, info fs.DirEntry) bool {
		if info.IsDir() {
			return false
		}
		name := info.Name()
		return strings.HasSuffix(name, ".go") &&
			!strings.HasSuffix(name, "_test.go") &&
			!strings.HasSuffix(name, suffix)
	}
}

// GeneratedFileFilter accepts generated outputs
func GeneratedFileFilter(suffix string) FileFilter {
	return func(path string, info fs.DirEntry) bool {
		return !info.IsDir() && strings.HasSuffix(info.Name(), suffix)
	}
}

// DefaultDirectoryFilter skips common directories that shouldn't contain source code
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"testdata":     true,
		"target":       true,
		"dist":         true,
	}

	return func(path string, info fs.DirEntry) bool {
		name := info.Name()
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}
		if strings.HasPrefix(name, "_") {
			return false
		}
		return !skipDirs[name]
	}
}

// SourceFiles returns the candidate input files under roots, sorted.
// A root ending in /... is walked recursively, any other root is read flat.
func (fp *FileProcessor) SourceFiles(roots []string) ([]string, error) {
	return fp.collect(roots, SourceFileFilter(fp.suffix))
}

// GeneratedFiles returns the generated outputs under roots, sorted
func (fp *FileProcessor) GeneratedFiles(roots []string) ([]string, error) {
	return fp.collect(roots, GeneratedFileFilter(fp.suffix))
}

func (fp *FileProcessor) collect(roots []string, filter FileFilter) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, root := range roots {
		dir, recursive := SplitPattern(root)
		matched, err := fp.walk(dir, recursive, filter)
		if err != nil {
			return nil, err
		}
		for _, path := range matched {
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func (fp *FileProcessor) walk(dir string, recursive bool, filter FileFilter) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, bgerrors.WrapFileSystemError("stat", dir, err)
	}
	if !info.IsDir() {
		// A single file is taken as given.
		return []string{filepath.Clean(dir)}, nil
	}

	dirFilter := DefaultDirectoryFilter()
	var files []string
	err = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path == dir {
				return nil
			}
			if !recursive || !dirFilter(path, entry) {
				return filepath.SkipDir
			}
			return nil
		}
		if filter(path, entry) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, bgerrors.WrapFileSystemError("walk", dir, err)
	}
	return files, nil
}

// SplitPattern separates a Go-style "dir/..." pattern into its directory and
// whether it is recursive
func SplitPattern(pattern string) (dir string, recursive bool) {
	if pattern == "..." {
		return ".", true
	}
	if strings.HasSuffix(pattern, "/...") {
		dir = strings.TrimSuffix(pattern, "/...")
		if dir == "" {
			dir = "."
		}
		return dir, true
	}
	return pattern, false
}
