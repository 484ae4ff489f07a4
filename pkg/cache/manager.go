// Package cache inspects and cleans the index lists and archive cache
// directories that the acquisition pipeline writes into.
package cache

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	pkgerrors "github.com/glorpus-work/acquire/pkg/errors"
	"github.com/glorpus-work/acquire/pkg/fsutil"
	"github.com/spf13/afero"
)

// DefaultManager implements the Manager interface for cache operations.
type DefaultManager struct {
	fs          afero.Fs
	listsDir    string
	archivesDir string
}

// NewManager creates a cache manager on the real filesystem.
func NewManager(listsDir, archivesDir string) (*DefaultManager, error) {
	return NewManagerWithFs(afero.NewOsFs(), listsDir, archivesDir)
}

// NewManagerWithFs creates a cache manager on fs.
func NewManagerWithFs(fs afero.Fs, listsDir, archivesDir string) (*DefaultManager, error) {
	if listsDir == "" || archivesDir == "" {
		return nil, pkgerrors.ErrCacheDirectory
	}
	return &DefaultManager{
		fs:          fs,
		listsDir:    filepath.Clean(listsDir),
		archivesDir: filepath.Clean(archivesDir),
	}, nil
}

// Directories returns the lists and archives directories.
func (cm *DefaultManager) Directories() []string {
	return []string{cm.listsDir, cm.archivesDir}
}

// Clean removes cached files according to the specified options. Without
// any flag set it removes partial downloads and quarantined files.
func (cm *DefaultManager) Clean(options CleanOptions) (*CleanResult, error) {
	result := &CleanResult{}

	if !options.All && !options.Partial && !options.Failed {
		options.Partial = true
		options.Failed = true
	}

	for _, root := range cm.Directories() {
		err := cm.walkFiles(root, func(path string, info os.FileInfo) error {
			partial := isPartial(root, path)
			failed := strings.HasSuffix(path, FailedSuffix)
			if !options.All && !(options.Partial && partial) && !(options.Failed && failed) {
				return nil
			}
			if err := cm.fs.Remove(path); err != nil {
				return pkgerrors.Wrapf(err, "failed to remove %s", path)
			}
			result.FilesRemoved++
			result.TotalFreed += info.Size()
			switch {
			case failed:
				result.FailedFreed += info.Size()
			case partial:
				result.PartialFreed += info.Size()
			}
			return nil
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.ErrCacheClean, err.Error())
		}
		if err := cm.fs.MkdirAll(filepath.Join(root, fsutil.PartialDir), CacheDirPerm); err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to recreate directory %s", root)
		}
	}

	return result, nil
}

// GetInfo returns information about the cache.
func (cm *DefaultManager) GetInfo() (*Info, error) {
	info := &Info{
		ListsDir:    cm.listsDir,
		ArchivesDir: cm.archivesDir,
	}

	err := cm.walkFiles(cm.listsDir, func(path string, fi os.FileInfo) error {
		cm.account(info, cm.listsDir, path, fi, &info.ListsSize, &info.ListsFiles)
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCacheInfo, err.Error())
	}
	err = cm.walkFiles(cm.archivesDir, func(path string, fi os.FileInfo) error {
		cm.account(info, cm.archivesDir, path, fi, &info.ArchivesSize, &info.ArchivesFiles)
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCacheInfo, err.Error())
	}

	info.TotalSize = info.ListsSize + info.ArchivesSize + info.PartialSize
	return info, nil
}

func (cm *DefaultManager) account(info *Info, root, path string, fi os.FileInfo, size *int64, files *int) {
	if strings.HasSuffix(path, FailedSuffix) {
		info.FailedFiles++
	}
	if isPartial(root, path) {
		info.PartialSize += fi.Size()
		info.PartialFiles++
		return
	}
	*size += fi.Size()
	*files++
}

// Failed lists the quarantined files, sorted by path.
func (cm *DefaultManager) Failed() ([]QuarantinedFile, error) {
	var out []QuarantinedFile
	for _, root := range cm.Directories() {
		err := cm.walkFiles(root, func(path string, fi os.FileInfo) error {
			if strings.HasSuffix(path, FailedSuffix) {
				out = append(out, QuarantinedFile{Path: path, Size: fi.Size(), ModTime: fi.ModTime()})
			}
			return nil
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.ErrCacheInfo, err.Error())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// walkFiles calls fn for every regular file below root. A missing root is
// treated as empty.
func (cm *DefaultManager) walkFiles(root string, fn func(path string, info os.FileInfo) error) error {
	exists, err := afero.DirExists(cm.fs, root)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	// Collect first, removing while walking confuses some Fs implementations.
	type file struct {
		path string
		info os.FileInfo
	}
	var files []file
	err = afero.Walk(cm.fs, root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.Mode().IsRegular() {
			files = append(files, file{path, info})
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrapf(err, "error walking directory %s", root)
	}
	for _, f := range files {
		if err := fn(f.path, f.info); err != nil {
			return err
		}
	}
	return nil
}

func isPartial(root, path string) bool {
	return strings.HasPrefix(path, filepath.Join(root, fsutil.PartialDir)+string(filepath.Separator))
}
