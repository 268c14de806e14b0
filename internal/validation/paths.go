package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathHandler validates the on-disk locations ellux writes to: the key-value
// database, the favorites search index and the config file.
type PathHandler struct {
	// AllowedBaseDirs restricts paths to these directories; empty allows all
	AllowedBaseDirs []string
	MaxPathLength   int
}

// NewSecurePathHandler restricts paths to the given base directories plus
// the system temp directory.
func NewSecurePathHandler(baseDirs ...string) *PathHandler {
	dirs := append([]string(nil), baseDirs...)
	dirs = append(dirs, os.TempDir())
	return &PathHandler{AllowedBaseDirs: dirs, MaxPathLength: 4096}
}

// NewPermissivePathHandler accepts any location without traversal tricks.
func NewPermissivePathHandler() *PathHandler {
	return &PathHandler{MaxPathLength: 4096}
}

// ExpandAndValidatePath expands a leading ~/, makes the path absolute and
// checks it against the handler's rules.
func (ph *PathHandler) ExpandAndValidatePath(path string) (string, error) {
	if path == "" {
		return "", fail("path", "path cannot be empty")
	}
	if len(path) > ph.MaxPathLength {
		return "", fail("path", fmt.Sprintf("path too long (max %d characters)", ph.MaxPathLength))
	}
	if strings.ContainsRune(path, 0) {
		return "", fail("path", "path contains null bytes")
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return "", fail("path", "directory traversal not allowed")
		}
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	} else if strings.HasPrefix(path, "~") {
		return "", fail("path", "only ~/ home expansion is supported")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot make path absolute: %w", err)
	}
	if err := ph.checkBaseDirs(abs); err != nil {
		return "", err
	}
	return abs, nil
}

func (ph *PathHandler) checkBaseDirs(abs string) error {
	if len(ph.AllowedBaseDirs) == 0 {
		return nil
	}
	for _, base := range ph.AllowedBaseDirs {
		absBase, err := filepath.Abs(base)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(absBase, abs)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
	}
	return fail("path", fmt.Sprintf("path not within allowed directories: %v", ph.AllowedBaseDirs))
}

// ValidateFile validates a file path and rejects existing directories.
func (ph *PathHandler) ValidateFile(path string) (string, error) {
	validated, err := ph.ExpandAndValidatePath(path)
	if err != nil {
		return "", err
	}
	if info, statErr := os.Stat(validated); statErr == nil && info.IsDir() {
		return "", fail("path", fmt.Sprintf("path is a directory, not a file: %s", validated))
	}
	return validated, nil
}

// ValidateDirectory validates a directory path, creating it when asked.
func (ph *PathHandler) ValidateDirectory(path string, create bool) (string, error) {
	validated, err := ph.ExpandAndValidatePath(path)
	if err != nil {
		return "", err
	}
	info, statErr := os.Stat(validated)
	switch {
	case statErr == nil && !info.IsDir():
		return "", fail("path", fmt.Sprintf("path exists but is not a directory: %s", validated))
	case os.IsNotExist(statErr) && create:
		if mkErr := os.MkdirAll(validated, 0o755); mkErr != nil {
			return "", fmt.Errorf("creating directory: %w", mkErr)
		}
	case statErr != nil && !os.IsNotExist(statErr):
		return "", fmt.Errorf("checking directory: %w", statErr)
	}
	return validated, nil
}
