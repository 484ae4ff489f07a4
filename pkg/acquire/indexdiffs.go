package acquire

import (
	"github.com/glorpus-work/acquire/pkg/hashes"
)

type diffStage int

const (
	stageFetchDiff diffStage = iota
	stageUnzipDiff
	stageApplyDiff
)

type indexDiffsState struct {
	opts         Options
	realURI      string
	description  string
	expectedHash string
	patches      []DiffInfo
	stage        diffStage
}

func (*indexDiffsState) kind() string { return "index-diffs" }

// NewIndexDiffsFetcher applies the given patch chain to the local copy of
// uri, one patch per fetcher: download, gunzip, then rred. An empty chain
// means the local file is current.
func NewIndexDiffsFetcher(owner Owner, uri, uriDesc, shortDesc, expectedHash string, patches []DiffInfo, opts Options) *Item {
	s := &indexDiffsState{
		opts:         opts,
		realURI:      uri,
		description:  uriDesc,
		expectedHash: expectedHash,
		patches:      append([]DiffInfo(nil), patches...),
	}
	it := newItem(owner, s)
	it.DestFile = opts.listsPartial(uri)
	it.Desc.ShortDesc = shortDesc

	if len(s.patches) == 0 {
		s.finish(it, true)
		return it
	}
	s.stage = stageFetchDiff
	s.queueNextDiff(it)
	return it
}

func (s *indexDiffsState) queueNextDiff(it *Item) bool {
	final := s.opts.listsFile(s.realURI)
	localSHA1, err := hashes.FileSHA1(final)
	if err != nil {
		trace(s.opts.DebugDiffs, "pdiff", "cannot hash %s: %v", final, err)
		s.failed(it, Message{}, nil)
		return false
	}

	// Drop patches until one starts from the current file.
	skip := 0
	for skip < len(s.patches) && !hashes.Equal(s.patches[skip].SHA1, localSHA1) {
		skip++
	}
	s.patches = s.patches[skip:]
	if len(s.patches) == 0 {
		s.failed(it, Message{}, nil)
		return false
	}

	next := s.patches[0]
	it.DestFile = s.opts.listsPartial(s.realURI + ".diff/" + next.File)
	it.queueURI(ItemDesc{
		URI:         s.realURI + ".diff/" + next.File + ".gz",
		Description: s.description + " " + next.File + ".pdiff",
		ShortDesc:   it.Desc.ShortDesc,
	})
	trace(s.opts.DebugDiffs, "pdiff", "queue next diff: %s", it.Desc.URI)
	return true
}

func (s *indexDiffsState) done(it *Item, msg Message, size int64, hash string, cnf *MethodConfig) {
	it.baseDone(msg, size, hash, cnf)
	final := s.opts.listsFile(s.realURI)

	switch s.stage {
	case stageFetchDiff:
		trace(s.opts.DebugDiffs, "pdiff", "sending to gzip method: %s", final)
		s.stage = stageUnzipDiff
		it.Local = true
		it.DestFile += ".decomp"
		desc := it.Desc
		desc.URI = "gzip:" + msg.Get("Filename")
		it.queueURI(desc)
		it.Mode = "gzip"

	case stageUnzipDiff:
		// rred expects the patch next to the file it patches.
		if !it.rename(it.DestFile, final+".ed") {
			s.failed(it, Message{}, nil)
			return
		}
		trace(s.opts.DebugDiffs, "pdiff", "sending to rred method: %s", final)
		s.stage = stageApplyDiff
		it.Local = true
		desc := it.Desc
		desc.URI = "rred:" + final
		it.queueURI(desc)
		it.Mode = "rred"

	case stageApplyDiff:
		s.patches = s.patches[1:]
		trace(s.opts.DebugDiffs, "pdiff", "moving patched file in place: %s -> %s", it.DestFile, final)
		if !it.rename(it.DestFile, final) {
			s.failed(it, Message{}, nil)
			return
		}
		_ = chmodDefault(final)

		if len(s.patches) > 0 {
			NewIndexDiffsFetcher(it.owner, s.realURI, s.description, it.Desc.ShortDesc, s.expectedHash, s.patches, s.opts)
			s.finish(it, false)
			return
		}
		s.finish(it, true)
	}
}

func (s *indexDiffsState) failed(it *Item, _ Message, _ *MethodConfig) {
	trace(s.opts.DebugDiffs, "pdiff", "index diffs failed: %s, falling back to normal index file acquire", it.Desc.URI)
	NewIndexFetcher(it.owner, s.realURI, s.description, it.Desc.ShortDesc, s.expectedHash, "", s.opts)
	s.finish(it, false)
}

func (s *indexDiffsState) finish(it *Item, allDone bool) {
	if !allDone {
		trace(s.opts.DebugDiffs, "pdiff", "finishing: %s", it.Desc.URI)
		it.retire()
		return
	}

	// Restore the real name so a cache clean does not remove the index.
	it.DestFile = s.opts.listsFile(s.realURI)
	if s.expectedHash != "" {
		sum, err := hashes.FileMD5(it.DestFile)
		if err != nil || !hashes.Equal(sum, s.expectedHash) {
			trace(s.opts.DebugAuth, "auth", "%s: computed MD5 %s, expected %s", s.realURI, sum, s.expectedHash)
			it.Status = StatAuthError
			it.ErrorText = "MD5Sum mismatch"
			quarantine(it.DestFile)
			it.owner.Dequeue(it)
			return
		}
	}
	it.Complete = true
	it.Status = StatDone
	it.owner.Dequeue(it)
	trace(s.opts.DebugDiffs, "pdiff", "all done: %s", it.DestFile)
}
