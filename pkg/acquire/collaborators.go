package acquire

import "github.com/glorpus-work/acquire/pkg/release"

// IndexTarget is one index file listed by a Release file.
type IndexTarget struct {
	URI         string
	Description string
	ShortDesc   string
	// MetaKey is the path of the index inside the Release file,
	// for example "main/binary-amd64/Packages".
	MetaKey string
}

// MetaIndexParser parses the signed Release file. *release.Parser is the
// default implementation.
type MetaIndexParser interface {
	Load(path string) error
	// ErrorText describes the last Load failure.
	ErrorText() string
	Lookup(metaKey string) (*release.Entry, bool)
	Dist() string
	ExpectedDist() string
	CheckDist(dist string) bool
}

// PackageFile is an index file a package version was read from.
type PackageFile struct {
	Name string
	// NotSource is set for files that cannot provide downloads, such as
	// the installed-package status file.
	NotSource bool
}

// VersionFile links a version to one index file it appears in.
type VersionFile struct {
	File   *PackageFile
	Offset int64
}

// PackageVersion is the cache view of a single package version.
type PackageVersion struct {
	Package string
	Version string
	Arch    string
	Size    int64
	Files   []VersionFile
}

// IndexFile is a source index a package version can be fetched from.
type IndexFile interface {
	ArchiveURI(file string) string
	ArchiveInfo(v PackageVersion) string
	IsTrusted() bool
	Describe() string
}

// SourceList maps package files back to their source index.
type SourceList interface {
	FindIndex(f *PackageFile) (IndexFile, bool)
}

// Record is the package record fields ArchiveFetcher needs.
type Record struct {
	FileName string
	MD5Hash  string
}

// Records looks up package records.
type Records interface {
	Lookup(vf VersionFile) (Record, error)
}

// HookRunner runs user hooks for acquisition events.
type HookRunner interface {
	Run(event string, vars map[string]interface{}) error
}

// Hook events.
const (
	HookPostFetch   = "post-fetch"
	HookPostUpdate  = "post-update"
	HookAuthFailure = "auth-failure"
)
