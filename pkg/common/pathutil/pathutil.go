package pathutil

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrUnsafePath = errors.New("unsafe path")

// SafePath joins filename onto baseDir and refuses anything that would
// resolve outside baseDir.
func SafePath(baseDir, filename string) (string, error) {
	if filepath.IsAbs(filename) {
		return "", fmt.Errorf("%w: absolute filename %q", ErrUnsafePath, filename)
	}
	if err := ValidateFilePath(filename); err != nil {
		return "", err
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("resolve base directory: %w", err)
	}
	full := filepath.Join(absBase, filepath.Clean(filename))

	// trailing separator so /keys does not accept /keys-old
	prefix := absBase
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if full != absBase && !strings.HasPrefix(full, prefix) {
		return "", fmt.Errorf("%w: %q escapes %q", ErrUnsafePath, filename, baseDir)
	}
	return full, nil
}

// ValidateFilePath rejects paths that contain a parent directory reference.
func ValidateFilePath(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("%w: empty path", ErrUnsafePath)
	}
	for _, part := range strings.Split(filepath.ToSlash(filePath), "/") {
		if part == ".." {
			return fmt.Errorf("%w: path traversal in %q", ErrUnsafePath, filePath)
		}
	}
	return nil
}
