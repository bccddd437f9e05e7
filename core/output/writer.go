// Package output implements the export collaborators: the bundle file
// writer, the zip archiver, and the HTTP uploader. They are thin I/O
// wrappers around a finalized graph and carry no normalization logic.
package output

import (
	"fmt"
	"os"
	"path/filepath"
)

// Writer writes bundle files under a fixed root directory.
type Writer struct {
	Root string
}

// NewWriter creates a Writer rooted at dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Writer{Root: dir}, nil
}

// Write writes data to relPath below the root, creating parent
// directories as needed. It returns the absolute path written.
func (w *Writer) Write(relPath string, data []byte) (string, error) {
	fullPath := filepath.Join(w.Root, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("creating directory for %s: %w", relPath, err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", fullPath, err)
	}
	return fullPath, nil
}

// WriteText is Write for string content.
func (w *Writer) WriteText(relPath, text string) (string, error) {
	return w.Write(relPath, []byte(text))
}
