package acquire

import (
	"path/filepath"

	"github.com/glorpus-work/acquire/pkg/fsutil"
)

// DefaultBzip2Path is probed to decide whether .bz2 indexes can be unpacked.
const DefaultBzip2Path = "/bin/bzip2"

// Options is the configuration threaded into every fetcher. It is fixed for
// the lifetime of an acquisition session and copied into successors.
type Options struct {
	// DebugDiffs traces pdiff decisions.
	DebugDiffs bool
	// DebugAuth traces signature and checksum decisions.
	DebugAuth bool
	// PDiffs enables incremental index updates.
	PDiffs bool
	// Retries is the number of extra passes over the candidate sources.
	Retries int
	// SourceSymlinks lets FileFetcher link to files a method left elsewhere.
	SourceSymlinks bool
	// AllowUnauthenticated disables the trusted-only mode of ArchiveFetcher.
	AllowUnauthenticated bool
	// ListsDir holds index files, ArchivesDir package archives.
	ListsDir    string
	ArchivesDir string
	// Bzip2Path is the decompressor whose presence selects .bz2 indexes.
	Bzip2Path string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	lists, err := fsutil.GetListsDir()
	if err != nil {
		lists = filepath.Join(".", "lists")
	}
	archives, err := fsutil.GetArchivesDir()
	if err != nil {
		archives = filepath.Join(".", "archives")
	}
	return Options{
		PDiffs:         true,
		SourceSymlinks: true,
		ListsDir:       lists,
		ArchivesDir:    archives,
		Bzip2Path:      DefaultBzip2Path,
	}
}

func (o Options) listsFile(uri string) string {
	return filepath.Join(o.ListsDir, fsutil.URIToFileName(uri))
}

func (o Options) listsPartial(uri string) string {
	return filepath.Join(o.ListsDir, fsutil.PartialDir, fsutil.URIToFileName(uri))
}

func (o Options) archivesFile(name string) string {
	return filepath.Join(o.ArchivesDir, name)
}

func (o Options) archivesPartial(name string) string {
	return filepath.Join(o.ArchivesDir, fsutil.PartialDir, name)
}
