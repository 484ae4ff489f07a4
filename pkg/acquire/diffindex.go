package acquire

import (
	"strconv"
	"strings"

	"github.com/glorpus-work/acquire/pkg/fsutil"
	"github.com/glorpus-work/acquire/pkg/hashes"
	"github.com/glorpus-work/acquire/pkg/tagfile"
)

// DiffInfo is one entry of a pdiff history: the SHA-1 of the index state the
// patch applies to, the patch size and its name.
type DiffInfo struct {
	SHA1 string
	Size int64
	File string
}

type diffIndexState struct {
	opts         Options
	realURI      string
	description  string
	expectedHash string
}

func (*diffIndexState) kind() string { return "diff-index" }

// NewDiffIndexFetcher fetches <uri>.diff/Index and, when the local index can
// be patched forward, hands over to an IndexDiffsFetcher. Otherwise it falls
// back to a full IndexFetcher.
func NewDiffIndexFetcher(owner Owner, uri, uriDesc, shortDesc, expectedHash string, opts Options) *Item {
	s := &diffIndexState{
		opts:         opts,
		realURI:      uri,
		description:  uriDesc,
		expectedHash: expectedHash,
	}
	it := newItem(owner, s)
	it.DestFile = opts.listsPartial(uri) + ".DiffIndex"
	it.Desc = ItemDesc{
		URI:         uri + ".diff/Index",
		Description: uriDesc + "/DiffIndex",
		ShortDesc:   shortDesc,
	}
	trace(opts.DebugDiffs, "pdiff", "diff index: %s", it.Desc.URI)

	// Local sources are never patched.
	if !fsutil.FileExists(opts.listsFile(uri)) || strings.HasPrefix(it.Desc.URI, "file:/") {
		trace(opts.DebugDiffs, "pdiff", "no index file, local or canceled by user")
		s.failed(it, Message{}, nil)
		return it
	}
	it.queueURI(it.Desc)
	return it
}

func (s *diffIndexState) done(it *Item, msg Message, size int64, hash string, cnf *MethodConfig) {
	trace(s.opts.DebugDiffs, "pdiff", "diff index done: %s", it.Desc.URI)
	it.baseDone(msg, size, hash, cnf)

	final := s.opts.listsFile(s.realURI) + ".IndexDiff"
	if !it.rename(it.DestFile, final) {
		s.failed(it, Message{}, nil)
		return
	}
	_ = chmodDefault(final)
	it.DestFile = final

	patches, found, err := ParseDiffIndex(final, s.opts.listsFile(s.realURI))
	if err != nil || !found {
		trace(s.opts.DebugDiffs, "pdiff", "no usable patch chain for %s: %v", s.realURI, err)
		s.failed(it, Message{}, nil)
		return
	}

	NewIndexDiffsFetcher(it.owner, s.realURI, s.description, it.Desc.ShortDesc, s.expectedHash, patches, s.opts)
	it.retire()
}

func (s *diffIndexState) failed(it *Item, _ Message, _ *MethodConfig) {
	trace(s.opts.DebugDiffs, "pdiff", "diff index failed: %s, falling back to normal index file acquire", it.Desc.URI)
	NewIndexFetcher(it.owner, s.realURI, s.description, it.Desc.ShortDesc, s.expectedHash, "", s.opts)
	it.retire()
}

// ParseDiffIndex reads a pdiff index and the current local index file and
// returns the patches needed to bring the local file up to date. found is
// false when no history entry matches the local file. An up to date file
// yields found with no patches.
func ParseDiffIndex(diffIndexPath, currentPath string) (patches []DiffInfo, found bool, err error) {
	section, err := tagfile.First(diffIndexPath)
	if err != nil {
		return nil, false, err
	}
	localSHA1, err := hashes.FileSHA1(currentPath)
	if err != nil {
		return nil, false, err
	}
	patches, found = PlanDiffs(section, localSHA1)
	return patches, found, nil
}

// PlanDiffs walks the SHA1-History of a parsed pdiff index. Every entry from
// the first one whose hash equals localSHA1 onwards is needed, in file order.
func PlanDiffs(section *tagfile.Section, localSHA1 string) ([]DiffInfo, bool) {
	current := strings.Fields(section.Get("SHA1-Current"))
	if len(current) == 0 {
		return nil, false
	}
	if hashes.Equal(current[0], localSHA1) {
		return nil, true
	}

	var (
		patches []DiffInfo
		found   bool
	)
	fields := strings.Fields(section.Get("SHA1-History"))
	for i := 0; i+2 < len(fields); i += 3 {
		d := DiffInfo{SHA1: fields[i], File: fields[i+2]}
		d.Size, _ = strconv.ParseInt(fields[i+1], 10, 64)
		if hashes.Equal(d.SHA1, localSHA1) {
			found = true
		}
		if found {
			patches = append(patches, d)
		}
	}
	return patches, found
}
