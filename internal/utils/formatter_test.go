package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteGoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_bindgen.go")
	code := []byte("package api\n")

	changed, err := WriteGoFile(path, code)
	if err != nil {
		t.Fatalf("WriteGoFile failed: %v", err)
	}
	if !changed {
		t.Error("expected first write to change the file")
	}

	changed, err = WriteGoFile(path, code)
	if err != nil {
		t.Fatalf("WriteGoFile failed: %v", err)
	}
	if changed {
		t.Error("expected identical content to leave the file untouched")
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(code) {
		t.Errorf("file content = %q", got)
	}
}

func TestWriteGoFile_RejectsInvalidCode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_bindgen.go")
	if _, err := WriteGoFile(path, []byte("package api\n\nfunc {")); err == nil {
		t.Fatal("expected error for invalid Go")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("invalid code must not be written")
	}
}
