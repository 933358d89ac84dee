// Package fileutil holds the small file helpers shared by the commands.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrExtensionEmpty   = errors.New("extension cannot be empty")
	ErrExtensionInvalid = errors.New("extension contains path separator or null byte")
)

// ValidateExtension checks that ext can be appended to a file name.
// A leading dot is allowed.
func ValidateExtension(ext string) error {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(ext, "/\\\x00") {
		return ErrExtensionInvalid
	}
	return nil
}

// ReplaceExt returns path with its extension replaced by ext.
func ReplaceExt(path, ext string) (string, error) {
	if err := ValidateExtension(ext); err != nil {
		return "", err
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + strings.TrimPrefix(ext, "."), nil
}

// IsMarkdown reports whether path has a Markdown extension.
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".labnotes-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	name := tmp.Name()
	cleanup := func() { _ = os.Remove(name) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(name, perm); err != nil {
		cleanup()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		cleanup()
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if s looks like a path rather than a name:
// "work" is a name, "./work.yaml" and "conf/work" are paths.
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
