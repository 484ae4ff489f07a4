package fsutil

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the name of the application used in paths
	AppName = "acquire"

	// PartialDir is the subdirectory that holds in-flight downloads.
	PartialDir = "partial"
)

// GetCacheDir returns the platform-specific cache directory for the application
// On Linux: ~/.cache/acquire/
// On macOS: ~/Library/Caches/acquire/
// On Windows: %LOCALAPPDATA%\acquire\
func GetCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, AppName), nil
}

// GetListsDir returns the default directory for index files.
// Format: <cache_dir>/lists/
func GetListsDir() (string, error) {
	cacheDir, err := GetCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "lists"), nil
}

// GetArchivesDir returns the default directory for downloaded package archives.
// Format: <cache_dir>/archives/
func GetArchivesDir() (string, error) {
	cacheDir, err := GetCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "archives"), nil
}

// EnsureDirs creates the given cache roots together with their partial/
// subdirectories.
func EnsureDirs(roots ...string) error {
	for _, root := range roots {
		if err := os.MkdirAll(filepath.Join(root, PartialDir), DirModeDefault); err != nil {
			return err
		}
	}
	return nil
}
