package acquire

import (
	"strings"

	"github.com/glorpus-work/acquire/pkg/fsutil"
	"github.com/glorpus-work/acquire/pkg/hashes"
)

type indexState struct {
	opts          Options
	realURI       string
	expectedHash  string
	decompression bool
	erase         bool
}

func (*indexState) kind() string { return "index" }

// NewIndexFetcher fetches the compressed form of the index at uri and
// unpacks it into the lists directory. compressExt forces the extension
// (".bz2" or ".gz"); when empty .bz2 is preferred if opts.Bzip2Path exists.
func NewIndexFetcher(owner Owner, uri, uriDesc, shortDesc, expectedHash, compressExt string, opts Options) *Item {
	s := &indexState{
		opts:         opts,
		realURI:      uri,
		expectedHash: expectedHash,
	}
	it := newItem(owner, s)
	it.DestFile = opts.listsPartial(uri)

	if compressExt == "" {
		compressExt = ".gz"
		if opts.Bzip2Path != "" && fsutil.FileExists(opts.Bzip2Path) {
			compressExt = ".bz2"
		}
	}
	it.queueURI(ItemDesc{
		URI:         uri + compressExt,
		Description: uriDesc,
		ShortDesc:   shortDesc,
	})
	return it
}

func (s *indexState) failed(it *Item, msg Message, cnf *MethodConfig) {
	if strings.HasSuffix(it.Desc.URI, "bz2") {
		trace(s.opts.DebugDiffs, "pdiff", "%s not found, retrying with .gz", it.Desc.URI)
		NewIndexFetcher(it.owner, s.realURI, it.Desc.Description, it.Desc.ShortDesc, s.expectedHash, ".gz", s.opts)
		it.retire()
		return
	}
	it.baseFailed(msg, cnf)
}

func (s *indexState) done(it *Item, msg Message, size int64, hash string, cnf *MethodConfig) {
	it.baseDone(msg, size, hash, cnf)

	if s.decompression {
		s.verifyAndInstall(it, hash)
		return
	}

	s.erase = false
	it.Complete = true

	// The method may already hold an unpacked copy.
	if alt := msg.Get("Alt-Filename"); alt != "" {
		if msg.Bool("Alt-IMS-Hit", false) {
			return
		}
		s.decompression = true
		it.Local = true
		it.DestFile += ".decomp"
		desc := it.Desc
		desc.URI = "copy:" + alt
		it.queueURI(desc)
		it.Mode = "copy"
		return
	}

	fileName := msg.Get("Filename")
	if fileName == "" {
		it.Status = StatError
		it.ErrorText = "Method gave a blank filename"
		return
	}
	if msg.Bool("IMS-Hit", false) {
		return
	}
	if fileName == it.DestFile {
		s.erase = true
	} else {
		it.Local = true
	}

	var prog string
	switch ext := fsutil.Extension(fsutil.Basename(it.Desc.URI)); ext {
	case "bz2":
		prog = "bzip2"
	case "gz":
		prog = "gzip"
	default:
		it.Status = StatError
		it.ErrorText = "Unsupported extension: " + ext
		return
	}

	s.decompression = true
	it.DestFile += ".decomp"
	desc := it.Desc
	desc.URI = prog + ":" + fileName
	it.queueURI(desc)
	it.Mode = prog
}

func (s *indexState) verifyAndInstall(it *Item, hash string) {
	if hash == "" {
		sum, err := hashes.FileMD5(it.DestFile)
		if err != nil {
			it.Status = StatError
			it.ErrorText = err.Error()
			return
		}
		hash = sum
	}
	trace(s.opts.DebugAuth, "auth", "%s: computed MD5 %s, expected %s", s.realURI, hash, s.expectedHash)

	if s.expectedHash != "" && !hashes.Equal(hash, s.expectedHash) {
		it.Status = StatAuthError
		it.ErrorText = "MD5Sum mismatch"
		quarantine(it.DestFile)
		return
	}

	final := s.opts.listsFile(s.realURI)
	if !it.rename(it.DestFile, final) {
		return
	}
	_ = chmodDefault(final)

	// Restore the partial name so the compressed copy can be cleaned.
	it.DestFile = s.opts.listsPartial(s.realURI)
	if s.erase {
		_ = fsutil.Unlink(it.DestFile)
	}
}
