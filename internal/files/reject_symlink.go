package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RejectSymlinkPath returns an error if the path or its parent directory is a symlink
// (or, on Windows, a reparse point). Missing components are not an error.
func RejectSymlinkPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is empty")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if err := rejectLink(abs, abs); err != nil {
		return err
	}
	parent := filepath.Dir(abs)
	if parent == abs {
		return nil
	}
	return rejectLink(abs, parent)
}

func rejectLink(path, component string) error {
	info, err := os.Lstat(component)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to access path: %w", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("refusing to write to symlink path: %s (symlink detected at %s)", path, component)
	}
	if isReparse, err := isReparsePoint(component); err != nil {
		return fmt.Errorf("failed to check reparse point: %w", err)
	} else if isReparse && component == path {
		return fmt.Errorf("refusing to write to symlink path: %s (reparse point detected at %s)", path, component)
	}
	return nil
}
