package platform

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ReadableDir returns nil when path exists, is a directory, and can be listed
// by the current process.
func ReadableDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("listing %s: %w", path, err)
	}
	return nil
}

// FileExists reports whether path names an existing regular file or symlink
// to one.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// WithTrailingSeparator returns dir with exactly one trailing path separator.
func WithTrailingSeparator(dir string) string {
	sep := string(filepath.Separator)
	if runtime.GOOS == "windows" {
		dir = strings.TrimRight(dir, `\/`)
	} else {
		dir = strings.TrimRight(dir, sep)
	}
	return dir + sep
}
