package acquire

import (
	"os"
	"path/filepath"

	"github.com/glorpus-work/acquire/pkg/fsutil"
	"github.com/glorpus-work/acquire/pkg/hashes"
)

type fileState struct {
	opts    Options
	uri     string
	md5     string
	retries int
}

func (*fileState) kind() string { return "file" }

// NewFileFetcher fetches a single file. The destination is destFilename,
// or destDir joined with the last element of uri, or that element alone.
func NewFileFetcher(owner Owner, uri, md5 string, size int64, desc, shortDesc, destDir, destFilename string, opts Options) *Item {
	s := &fileState{opts: opts, uri: uri, md5: md5, retries: opts.Retries}
	it := newItem(owner, s)

	switch {
	case destFilename != "":
		it.DestFile = destFilename
	case destDir != "":
		it.DestFile = filepath.Join(destDir, fsutil.Basename(uri))
	default:
		it.DestFile = fsutil.Basename(uri)
	}

	it.FileSize = size
	if info, err := os.Stat(it.DestFile); err == nil {
		if info.Size() > size {
			_ = os.Remove(it.DestFile)
		} else {
			it.PartialSize = info.Size()
		}
	}

	it.queueURI(ItemDesc{URI: uri, Description: desc, ShortDesc: shortDesc})
	return it
}

func (s *fileState) done(it *Item, msg Message, size int64, hash string, cnf *MethodConfig) {
	if s.md5 != "" && hash != "" && !hashes.Equal(s.md5, hash) {
		it.Status = StatError
		it.ErrorText = "MD5Sum mismatch"
		quarantine(it.DestFile)
		return
	}

	it.baseDone(msg, size, hash, cnf)

	fileName := msg.Get("Filename")
	if fileName == "" {
		it.Status = StatError
		it.ErrorText = "Method gave a blank filename"
		return
	}
	it.Complete = true
	if msg.Bool("IMS-Hit", false) {
		return
	}
	if fileName == it.DestFile {
		return
	}

	it.Local = true
	if !s.opts.SourceSymlinks || (cnf != nil && cnf.Removable) {
		desc := it.Desc
		desc.URI = "copy:" + fileName
		it.queueURI(desc)
		return
	}

	// Only an existing symlink may be replaced.
	if info, err := os.Lstat(it.DestFile); err == nil && info.Mode()&os.ModeSymlink != 0 {
		_ = os.Remove(it.DestFile)
	}
	if err := os.Symlink(fileName, it.DestFile); err != nil {
		it.ErrorText = "Link to " + it.DestFile + " failure "
		it.Status = StatError
		it.Complete = false
	}
}

func (s *fileState) failed(it *Item, msg Message, cnf *MethodConfig) {
	it.ErrorText = msg.Get("Message")
	if s.retries != 0 && (cnf == nil || !cnf.LocalOnly) && msg.Bool("Transient-Failure", false) {
		s.retries--
		it.queueURI(it.Desc)
		return
	}
	it.baseFailed(msg, cnf)
}
