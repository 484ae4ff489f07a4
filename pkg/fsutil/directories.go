// Package fsutil holds the file system helpers behind the lists and archives
// caches.
package fsutil

import (
	"os"
	"path/filepath"
)

// EnsureDir creates path and its parents with DirModeDefault.
func EnsureDir(path string) error {
	return os.MkdirAll(path, DirModeDefault)
}

// EnsureFileDir creates the parent directory of filePath.
func EnsureFileDir(filePath string) error {
	dir := filepath.Dir(filePath)
	return EnsureDir(dir)
}
