package acquire

import (
	"os"
	"regexp"
	"strings"

	"github.com/glorpus-work/acquire/pkg/fsutil"
)

// MetaSigSpec remembers the signature request so a stale Release can be
// refetched together with a fresh signature.
type MetaSigSpec struct {
	URI       string
	Desc      string
	ShortDesc string
}

type metaIndexState struct {
	opts     Options
	realURI  string
	sigFile  string
	sig      MetaSigSpec
	targets  []IndexTarget
	parser   MetaIndexParser
	authPass bool
	imsHit   bool
}

func (*metaIndexState) kind() string { return "meta-index" }

var noPubKey = regexp.MustCompile(`NO_PUBKEY ([0-9A-Fa-f]+)`)

// NewMetaIndexFetcher fetches the Release file at uri. With a non-empty
// sigFile the file is verified through the gpgv method before the index
// targets are queued with their expected checksums.
func NewMetaIndexFetcher(owner Owner, uri, uriDesc, shortDesc, sigFile string, sig MetaSigSpec, targets []IndexTarget, parser MetaIndexParser, opts Options) *Item {
	s := &metaIndexState{
		opts:    opts,
		realURI: uri,
		sigFile: sigFile,
		sig:     sig,
		targets: targets,
		parser:  parser,
	}
	it := newItem(owner, s)
	it.DestFile = opts.listsPartial(uri)
	it.queueURI(ItemDesc{URI: uri, Description: uriDesc, ShortDesc: shortDesc})
	return it
}

func (s *metaIndexState) done(it *Item, msg Message, size int64, hash string, cnf *MethodConfig) {
	it.baseDone(msg, size, hash, cnf)

	if s.authPass {
		s.authDone(it, msg)
		return
	}

	s.retrievalDone(it, msg)
	if !it.Complete {
		return
	}
	if s.sigFile == "" {
		s.queueIndexes(it, false)
		return
	}
	trace(s.opts.DebugAuth, "auth", "metaindex acquired, queueing gpg verification (%s, %s)", s.sigFile, it.DestFile)
	s.queueVerify(it)
}

func (s *metaIndexState) queueVerify(it *Item) {
	s.authPass = true
	desc := it.Desc
	desc.URI = "gpgv:" + s.sigFile
	it.queueURI(desc)
	it.Mode = "gpgv"
}

func (s *metaIndexState) retrievalDone(it *Item, msg Message) {
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

	s.imsHit = msg.Bool("IMS-Hit", false)
	it.Complete = true
	final := s.opts.listsFile(s.realURI)
	if !s.imsHit {
		it.rename(it.DestFile, final)
	}
	it.DestFile = final
}

func (s *metaIndexState) authDone(it *Item, msg Message) {
	if err := s.parser.Load(it.DestFile); err != nil {
		it.Status = StatAuthError
		it.ErrorText = s.parser.ErrorText()
		if it.ErrorText == "" {
			it.ErrorText = err.Error()
		}
		return
	}
	s.verifyVendor(it, msg)
	trace(s.opts.DebugAuth, "auth", "signature verification succeeded: %s", it.DestFile)

	s.queueIndexes(it, true)

	verified := s.opts.listsFile(s.realURI) + ".gpg"
	if err := fsutil.Move(s.sigFile, verified); err != nil {
		it.owner.Warn("Unable to keep verified signature %s: %v", verified, err)
		return
	}
	_ = chmodDefault(verified)
	if out := msg.Get("GPGVOutput"); out != "" {
		_ = os.WriteFile(verified+".info", []byte(out+"\n"), fsutil.FileModeDefault)
	}
}

// ExpectedDistTransform maps a source-list distribution to the value the
// Release file is expected to declare.
func ExpectedDistTransform(dist string) string {
	if dist == "../project/experimental" {
		dist = "experimental"
	}
	if i := strings.LastIndexByte(dist, '/'); i >= 0 {
		dist = dist[:i]
	}
	if dist == "." {
		dist = ""
	}
	return dist
}

// verifyVendor only warns: missing keys and a mismatching distribution do
// not stop the update.
func (s *metaIndexState) verifyVendor(it *Item, msg Message) {
	text := msg.String()
	var missing []string
	for _, m := range noPubKey.FindAllStringSubmatch(text, -1) {
		missing = append(missing, m[1])
	}
	if len(missing) > 0 {
		it.owner.Warn("There is no public key available for the following key IDs:\n%s", strings.Join(missing, " "))
	}

	transformed := ExpectedDistTransform(s.parser.ExpectedDist())
	trace(s.opts.DebugAuth, "auth", "got codename %q, expecting dist %q, transformed dist %q",
		s.parser.Dist(), s.parser.ExpectedDist(), transformed)

	if !s.parser.CheckDist(transformed) && transformed != "" {
		it.owner.Warn("Conflicting distribution: %s (expected %s but got %s)",
			it.Desc.Description, transformed, s.parser.Dist())
	}
}

func (s *metaIndexState) queueIndexes(it *Item, verify bool) {
	for _, target := range s.targets {
		var expected string
		if verify {
			entry, ok := s.parser.Lookup(target.MetaKey)
			if !ok {
				it.Status = StatAuthError
				it.ErrorText = "Unable to find expected entry " + target.MetaKey + " in Meta-index file (malformed Release file?)"
				return
			}
			expected = entry.MD5Hash
			trace(s.opts.DebugAuth, "auth", "queueing %s, expected MD5 %s", target.URI, expected)
			if expected == "" {
				it.Status = StatAuthError
				it.ErrorText = "Unable to find MD5 sum for " + target.MetaKey + " in Meta-index file"
				return
			}
		}

		if s.opts.PDiffs {
			NewDiffIndexFetcher(it.owner, target.URI, target.Description, target.ShortDesc, expected, s.opts)
		} else {
			NewIndexFetcher(it.owner, target.URI, target.Description, target.ShortDesc, expected, "", s.opts)
		}
	}
}

func (s *metaIndexState) failed(it *Item, msg Message, _ *MethodConfig) {
	if s.authPass {
		if s.imsHit {
			// Nothing was transferred, so the Release file may just be stale.
			// Start over with a fresh signature and no conditional headers.
			trace(s.opts.DebugAuth, "auth", "verification of cached %s failed, refetching", it.DestFile)
			_ = fsutil.Unlink(s.opts.listsFile(s.realURI))
			_ = fsutil.Unlink(s.opts.listsFile(s.sig.URI))
			NewMetaSignatureFetcher(it.owner, s.sig.URI, s.sig.Desc, s.sig.ShortDesc, MetaIndexSpec{
				URI:       s.realURI,
				Desc:      it.Desc.Description,
				ShortDesc: it.Desc.ShortDesc,
				Targets:   s.targets,
				Parser:    s.parser,
			}, s.opts)
			it.retire()
			return
		}
		it.owner.Warn("GPG error: %s: %s", it.Desc.Description, msg.Get("Message"))
		it.Status = StatDone
		s.queueIndexes(it, false)
		return
	}

	// A transient failure reuses the last Release file we have and checks
	// it against the signature again.
	final := s.opts.listsFile(s.realURI)
	if msg.Bool("Transient-Failure", false) && s.sigFile != "" && fsutil.FileExists(final) {
		trace(s.opts.DebugAuth, "auth", "reusing %s after transient failure", final)
		it.DestFile = final
		it.Complete = true
		s.queueVerify(it)
		return
	}

	it.Status = StatDone
	s.queueIndexes(it, false)
}
