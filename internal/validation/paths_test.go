package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewPathHandlers(t *testing.T) {
	secure := NewSecurePathHandler("/srv/ellux")
	if len(secure.AllowedBaseDirs) != 2 {
		t.Fatalf("expected base dir plus temp dir, got %v", secure.AllowedBaseDirs)
	}
	if secure.AllowedBaseDirs[1] != os.TempDir() {
		t.Errorf("expected temp dir to be allowed, got %v", secure.AllowedBaseDirs)
	}

	permissive := NewPermissivePathHandler()
	if len(permissive.AllowedBaseDirs) != 0 {
		t.Error("permissive handler should not restrict base directories")
	}
}

func TestExpandAndValidatePath(t *testing.T) {
	ph := NewPermissivePathHandler()
	tempDir := t.TempDir()

	tests := []struct {
		name        string
		input       string
		shouldError bool
		errorMsg    string
	}{
		{name: "absolute path", input: filepath.Join(tempDir, "ellux.db")},
		{name: "empty", input: "", shouldError: true, errorMsg: "path cannot be empty"},
		{name: "traversal", input: "/tmp/../etc/passwd", shouldError: true, errorMsg: "directory traversal"},
		{name: "null byte", input: "/tmp/a\x00b", shouldError: true, errorMsg: "null bytes"},
		{name: "user tilde", input: "~other/file", shouldError: true, errorMsg: "home expansion"},
		{name: "too long", input: "/" + strings.Repeat("a", 5000), shouldError: true, errorMsg: "path too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ph.ExpandAndValidatePath(tt.input)
			if tt.shouldError {
				if err == nil || !strings.Contains(err.Error(), tt.errorMsg) {
					t.Fatalf("expected error containing %q, got %v", tt.errorMsg, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !filepath.IsAbs(got) {
				t.Errorf("expected absolute path, got %q", got)
			}
		})
	}
}

func TestExpandAndValidatePath_HomeExpansion(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := NewPermissivePathHandler().ExpandAndValidatePath("~/.local/share/ellux/ellux.db")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(home, ".local", "share", "ellux", "ellux.db")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSecurePathHandler_BaseDirs(t *testing.T) {
	base := t.TempDir()
	ph := &PathHandler{AllowedBaseDirs: []string{base}, MaxPathLength: 4096}

	if _, err := ph.ExpandAndValidatePath(filepath.Join(base, "data", "ellux.db")); err != nil {
		t.Errorf("path inside base dir rejected: %v", err)
	}
	if _, err := ph.ExpandAndValidatePath(base + "-sibling/ellux.db"); err == nil {
		t.Error("sibling directory with shared prefix should be rejected")
	}
}

func TestValidateFileAndDirectory(t *testing.T) {
	ph := NewPermissivePathHandler()
	dir := t.TempDir()

	if _, err := ph.ValidateFile(dir); err == nil {
		t.Error("ValidateFile should reject a directory")
	}

	newDir := filepath.Join(dir, "index.bleve")
	got, err := ph.ValidateDirectory(newDir, true)
	if err != nil {
		t.Fatalf("ValidateDirectory: %v", err)
	}
	if info, statErr := os.Stat(got); statErr != nil || !info.IsDir() {
		t.Errorf("expected directory to be created at %q", got)
	}

	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ph.ValidateDirectory(file, false); err == nil {
		t.Error("ValidateDirectory should reject a regular file")
	}
}
