// Package storage persists uploaded log files on the local filesystem.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Uploads writes uploaded files under a single base directory. Filenames
// are sanitized so a crafted name can never escape the directory.
type Uploads struct {
	dir string
}

// NewUploads creates an upload store rooted at dir. The directory is
// created lazily on the first save.
func NewUploads(dir string) *Uploads {
	return &Uploads{dir: dir}
}

// Dir returns the base directory uploads are written to.
func (u *Uploads) Dir() string {
	return u.dir
}

// SafeName flattens path separators out of a client-supplied filename.
func SafeName(filename string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(filename)
}

// Save writes content under the sanitized filename and returns the full
// path of the written file.
func (u *Uploads) Save(filename string, content []byte) (string, error) {
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}

	path := filepath.Join(u.dir, SafeName(filename))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("saving upload: %w", err)
	}
	return path, nil
}
