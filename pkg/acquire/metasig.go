package acquire

import (
	"github.com/glorpus-work/acquire/pkg/fsutil"
)

// MetaIndexSpec is what a MetaSignatureFetcher needs to queue the Release
// file once the signature question is settled.
type MetaIndexSpec struct {
	URI       string
	Desc      string
	ShortDesc string
	Targets   []IndexTarget
	Parser    MetaIndexParser
}

type metaSigState struct {
	opts    Options
	realURI string
	meta    MetaIndexSpec
}

func (*metaSigState) kind() string { return "meta-signature" }

// permanentFailures are network failures that should surface instead of
// silently degrading to an unverified update.
var permanentFailures = map[string]bool{
	"Timeout":           true,
	"ResolveFailure":    true,
	"TmpResolveFailure": true,
	"ConnectionRefused": true,
}

// NewMetaSignatureFetcher fetches the detached signature at uri and then
// queues a MetaIndexFetcher for meta.
func NewMetaSignatureFetcher(owner Owner, uri, uriDesc, shortDesc string, meta MetaIndexSpec, opts Options) *Item {
	s := &metaSigState{opts: opts, realURI: uri, meta: meta}
	it := newItem(owner, s)
	it.DestFile = opts.listsPartial(uri)

	// Signatures are too small to resume and stale partials confuse proxies.
	_ = fsutil.Unlink(it.DestFile)

	it.queueURI(ItemDesc{URI: uri, Description: uriDesc, ShortDesc: shortDesc})
	return it
}

func (s *metaSigState) spawnMetaIndex(it *Item, sigFile string) {
	NewMetaIndexFetcher(it.owner, s.meta.URI, s.meta.Desc, s.meta.ShortDesc, sigFile,
		MetaSigSpec{URI: s.realURI, Desc: it.Desc.Description, ShortDesc: it.Desc.ShortDesc},
		s.meta.Targets, s.meta.Parser, s.opts)
}

func (s *metaSigState) done(it *Item, msg Message, size int64, hash string, cnf *MethodConfig) {
	it.baseDone(msg, size, hash, cnf)

	fileName := msg.Get("Filename")
	if fileName == "" {
		it.Status = StatError
		it.ErrorText = "Method gave a blank filename"
		return
	}
	if fileName != it.DestFile {
		it.Local = true
		desc := it.Desc
		desc.URI = "copy:" + fileName
		it.queueURI(desc)
		return
	}

	it.Complete = true
	verified := s.opts.listsFile(s.realURI)
	if msg.Bool("IMS-Hit", false) {
		// Unchanged: re-verify the last known good signature.
		if fsutil.FileExists(verified) {
			it.rename(verified, it.DestFile)
		}
	} else {
		// Never trust an old signature once a new one has arrived.
		_ = fsutil.Unlink(verified)
	}
	s.spawnMetaIndex(it, it.DestFile)
}

func (s *metaSigState) failed(it *Item, msg Message, cnf *MethodConfig) {
	verified := s.opts.listsFile(s.realURI)

	if msg.Bool("Transient-Failure", false) {
		if fsutil.FileExists(verified) && it.rename(verified, it.DestFile) {
			trace(s.opts.DebugAuth, "auth", "reusing last known good signature %s", verified)
			s.spawnMetaIndex(it, it.DestFile)
		} else {
			s.spawnMetaIndex(it, "")
		}
		it.retire()
		return
	}

	_ = fsutil.Unlink(verified)
	if permanentFailures[msg.Get("FailReason")] {
		it.baseFailed(msg, cnf)
		return
	}
	s.spawnMetaIndex(it, "")
	it.retire()
}
