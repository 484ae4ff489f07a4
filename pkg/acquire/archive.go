package acquire

import (
	"os"

	pkgerrors "github.com/glorpus-work/acquire/pkg/errors"
	"github.com/glorpus-work/acquire/pkg/fsutil"
	"github.com/glorpus-work/acquire/pkg/hashes"
)

type archiveState struct {
	opts    Options
	sources SourceList
	records Records
	version PackageVersion

	// storeFilename is the caller's output parameter.
	storeFilename *string
	next          int
	md5           string
	trusted       bool
	retries       int
}

func (*archiveState) kind() string { return "archive" }

// NewArchiveFetcher fetches the archive of version into opts.ArchivesDir,
// trying each source that lists it. storeFilename receives the final path
// and is cleared when the fetch does not complete.
func NewArchiveFetcher(owner Owner, sources SourceList, records Records, version PackageVersion, storeFilename *string, opts Options) (*Item, error) {
	if storeFilename == nil {
		storeFilename = new(string)
	}
	s := &archiveState{
		opts:          opts,
		sources:       sources,
		records:       records,
		version:       version,
		storeFilename: storeFilename,
		retries:       opts.Retries,
	}
	it := newItem(owner, s)
	fail := func(err error) (*Item, error) {
		it.Status = StatError
		it.ErrorText = err.Error()
		*storeFilename = ""
		return it, err
	}

	if version.Arch == "" {
		return fail(pkgerrors.Wrapf(pkgerrors.ErrMissingArch,
			"I wasn't able to locate a file for the %s package", version.Package))
	}

	// All sources of a version share the extension of the first one.
	for _, vf := range version.Files {
		if vf.File != nil && vf.File.NotSource {
			continue
		}
		rec, err := records.Lookup(vf)
		if err != nil {
			return fail(pkgerrors.Wrapf(err, "lookup of %s failed", version.Package))
		}
		*storeFilename = fsutil.QuoteString(version.Package, "_:") + "_" +
			fsutil.QuoteString(version.Version, "_:") + "_" +
			fsutil.QuoteString(version.Arch, "_:.") + "." +
			fsutil.Extension(rec.FileName)
		break
	}

	// One trusted source switches to trusted-only mode.
	for _, vf := range version.Files {
		index, ok := sources.FindIndex(vf.File)
		if !ok {
			continue
		}
		trace(opts.DebugAuth, "auth", "checking index: %s (trusted=%t)", index.Describe(), index.IsTrusted())
		if index.IsTrusted() {
			s.trusted = true
			break
		}
	}
	if opts.AllowUnauthenticated {
		s.trusted = false
	}

	queued, err := s.queueNext(it)
	if err != nil {
		return fail(err)
	}
	if !queued {
		return fail(pkgerrors.Wrapf(pkgerrors.ErrNoSource,
			"I wasn't able to locate file for the %s package", version.Package))
	}
	return it, nil
}

// Trusted reports whether the item only accepts trusted sources.
func (it *Item) Trusted() bool {
	if s, ok := it.state.(*archiveState); ok {
		return s.trusted
	}
	return false
}

// queueNext queues the next usable source, or completes the item from the
// archive cache. It returns false when no source is left.
func (s *archiveState) queueNext(it *Item) (bool, error) {
	for ; s.next < len(s.version.Files); s.next++ {
		vf := s.version.Files[s.next]
		if vf.File != nil && vf.File.NotSource {
			continue
		}
		index, ok := s.sources.FindIndex(vf.File)
		if !ok {
			continue
		}
		if s.trusted && !index.IsTrusted() {
			continue
		}

		rec, err := s.records.Lookup(vf)
		if err != nil {
			return false, pkgerrors.Wrapf(err, "lookup of %s failed", s.version.Package)
		}
		s.md5 = rec.MD5Hash
		if rec.FileName == "" {
			return false, pkgerrors.Wrapf(pkgerrors.ErrCorruptIndex,
				"no Filename: field for package %s", s.version.Package)
		}

		desc := ItemDesc{
			URI:         index.ArchiveURI(rec.FileName),
			Description: index.ArchiveInfo(s.version),
			ShortDesc:   s.version.Package,
		}
		it.Desc = desc
		it.FileSize = s.version.Size

		// Legacy file names first, then the name_version_arch form.
		for _, final := range []string{
			s.opts.archivesFile(fsutil.Basename(rec.FileName)),
			s.opts.archivesFile(fsutil.Basename(*s.storeFilename)),
		} {
			info, err := os.Stat(final)
			if err != nil {
				continue
			}
			if info.Size() == s.version.Size {
				it.Complete = true
				it.Local = true
				it.Status = StatDone
				it.DestFile = final
				*s.storeFilename = final
				return true, nil
			}
			_ = os.Remove(final)
		}

		it.DestFile = s.opts.archivesPartial(fsutil.Basename(*s.storeFilename))
		if info, err := os.Stat(it.DestFile); err == nil {
			if info.Size() > s.version.Size {
				_ = os.Remove(it.DestFile)
			} else {
				it.PartialSize = info.Size()
			}
		}

		it.Local = false
		it.queueURI(desc)
		s.next++
		return true, nil
	}
	return false, nil
}

func (s *archiveState) done(it *Item, msg Message, size int64, hash string, cnf *MethodConfig) {
	it.baseDone(msg, size, hash, cnf)

	if size != s.version.Size {
		it.Status = StatError
		it.ErrorText = "Size mismatch"
		quarantine(it.DestFile)
		return
	}
	if hash != "" && s.md5 != "" && !hashes.Equal(hash, s.md5) {
		it.Status = StatError
		it.ErrorText = "MD5Sum mismatch"
		quarantine(it.DestFile)
		return
	}

	fileName := msg.Get("Filename")
	if fileName == "" {
		it.Status = StatError
		it.ErrorText = "Method gave a blank filename"
		return
	}
	it.Complete = true

	// The method already placed the file, reference it where it is.
	if fileName != it.DestFile {
		it.DestFile = fileName
		*s.storeFilename = fileName
		it.Local = true
		return
	}

	final := s.opts.archivesFile(fsutil.Basename(*s.storeFilename))
	if !it.rename(it.DestFile, final) {
		it.Complete = false
		return
	}
	it.DestFile = final
	*s.storeFilename = final
}

func (s *archiveState) failed(it *Item, msg Message, cnf *MethodConfig) {
	it.ErrorText = msg.Get("Message")
	transient := msg.Bool("Transient-Failure", false)

	// Do not try other sources while the user has to swap media.
	if cnf != nil && cnf.Removable && transient {
		s.next = len(s.version.Files)
		*s.storeFilename = ""
		it.baseFailed(msg, cnf)
		return
	}

	if queued, err := s.queueNext(it); queued || err != nil {
		if err != nil {
			it.owner.Warn("%v", err)
			*s.storeFilename = ""
			it.baseFailed(msg, cnf)
		}
		return
	}

	if s.retries != 0 && (cnf == nil || !cnf.LocalOnly) && transient {
		s.retries--
		s.next = 0
		if queued, _ := s.queueNext(it); queued {
			return
		}
	}
	*s.storeFilename = ""
	it.baseFailed(msg, cnf)
}

func (s *archiveState) finished(it *Item) {
	if it.Status == StatDone && it.Complete {
		return
	}
	*s.storeFilename = ""
}
