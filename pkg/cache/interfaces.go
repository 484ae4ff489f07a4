package cache

import "time"

// Manager defines the interface for cache management operations.
type Manager interface {
	Clean(options CleanOptions) (*CleanResult, error)
	GetInfo() (*Info, error)
	Failed() ([]QuarantinedFile, error)
	Directories() []string
}

// CleanOptions specifies what to clean from the cache.
type CleanOptions struct {
	All     bool
	Partial bool
	Failed  bool
}

// CleanResult contains information about what was cleaned.
type CleanResult struct {
	TotalFreed   int64
	PartialFreed int64
	FailedFreed  int64
	FilesRemoved int
}

// Info represents cache information.
type Info struct {
	ListsDir      string
	ArchivesDir   string
	TotalSize     int64
	ListsSize     int64
	ListsFiles    int
	ArchivesSize  int64
	ArchivesFiles int
	PartialSize   int64
	PartialFiles  int
	FailedFiles   int
}

// QuarantinedFile is a download that failed verification.
type QuarantinedFile struct {
	Path    string
	Size    int64
	ModTime time.Time
}
