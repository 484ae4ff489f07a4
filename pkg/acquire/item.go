// Package acquire implements the download state machines that fetch
// repository metadata and package archives: the pdiff chain, full
// (compressed) indexes, the signed Release file and its signature, package
// archives with mirror fallback and plain files. Transfers themselves are
// delegated to Method implementations selected by URI scheme.
package acquire

import (
	"errors"
	"fmt"
	"os"

	"github.com/glorpus-work/acquire/internal/logger"
	"github.com/glorpus-work/acquire/pkg/fsutil"
)

// Status is the lifecycle state of an Item.
type Status int

const (
	StatIdle Status = iota
	StatFetching
	StatDone
	StatError
	StatAuthError
)

func (s Status) String() string {
	switch s {
	case StatIdle:
		return "idle"
	case StatFetching:
		return "fetching"
	case StatDone:
		return "done"
	case StatError:
		return "error"
	case StatAuthError:
		return "auth-error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Handle identifies a live item in its owner's table.
type Handle uint64

// ItemDesc describes one queued transfer of an item.
type ItemDesc struct {
	URI         string
	Description string
	ShortDesc   string
}

// Owner is the dispatcher an item is registered with.
type Owner interface {
	Register(it *Item) Handle
	// Retire drops a superseded item from the live table.
	Retire(it *Item)
	Enqueue(it *Item, desc ItemDesc)
	// Dequeue removes every queue entry of the item.
	Dequeue(it *Item)
	Fetched(size, resumePoint int64)
	Warn(format string, args ...interface{})
}

// Item is one download unit. The fetcher-specific behaviour lives in state,
// which is one of the fetcher kinds of this package.
type Item struct {
	owner  Owner
	handle Handle
	state  fetcher

	DestFile     string
	FileSize     int64
	PartialSize  int64
	Complete     bool
	Local        bool
	Status       Status
	ErrorText    string
	Mode         string
	QueueCounter int
	Desc         ItemDesc
}

// fetcher is the closed set of item kinds.
type fetcher interface {
	kind() string
}

func newItem(owner Owner, state fetcher) *Item {
	it := &Item{owner: owner, state: state}
	it.handle = owner.Register(it)
	return it
}

// Handle returns the owner-issued handle.
func (it *Item) Handle() Handle { return it.handle }

// Kind names the fetcher kind, for example "index" or "archive".
func (it *Item) Kind() string { return it.state.kind() }

// URI is the resource the item stands for. It differs from Desc.URI while a
// helper method such as gzip: or copy: works on the downloaded file.
func (it *Item) URI() string {
	switch s := it.state.(type) {
	case *diffIndexState:
		return s.realURI
	case *indexDiffsState:
		return s.realURI
	case *indexState:
		return s.realURI
	case *metaSigState:
		return s.realURI
	case *metaIndexState:
		return s.realURI
	case *fileState:
		return s.uri
	default:
		return it.Desc.URI
	}
}

// Start is called when the method begins the transfer.
func (it *Item) Start(_ Message, size int64) {
	it.Status = StatFetching
	if it.FileSize == 0 && !it.Complete {
		it.FileSize = size
	}
}

// Done is called when the method reports success.
func (it *Item) Done(msg Message, size int64, hash string, cnf *MethodConfig) {
	switch s := it.state.(type) {
	case *diffIndexState:
		s.done(it, msg, size, hash, cnf)
	case *indexDiffsState:
		s.done(it, msg, size, hash, cnf)
	case *indexState:
		s.done(it, msg, size, hash, cnf)
	case *metaSigState:
		s.done(it, msg, size, hash, cnf)
	case *metaIndexState:
		s.done(it, msg, size, hash, cnf)
	case *archiveState:
		s.done(it, msg, size, hash, cnf)
	case *fileState:
		s.done(it, msg, size, hash, cnf)
	default:
		it.baseDone(msg, size, hash, cnf)
	}
}

// Failed is called when the method reports a failure.
func (it *Item) Failed(msg Message, cnf *MethodConfig) {
	switch s := it.state.(type) {
	case *diffIndexState:
		s.failed(it, msg, cnf)
	case *indexDiffsState:
		s.failed(it, msg, cnf)
	case *indexState:
		s.failed(it, msg, cnf)
	case *metaSigState:
		s.failed(it, msg, cnf)
	case *metaIndexState:
		s.failed(it, msg, cnf)
	case *archiveState:
		s.failed(it, msg, cnf)
	case *fileState:
		s.failed(it, msg, cnf)
	default:
		it.baseFailed(msg, cnf)
	}
}

// Custom600Headers returns the extra request headers, one "Key: Value" per line.
func (it *Item) Custom600Headers() string {
	switch s := it.state.(type) {
	case *diffIndexState:
		return IndexFileHeaders(s.opts.listsFile(s.realURI) + ".IndexDiff")
	case *indexState:
		return IndexFileHeaders(s.opts.listsFile(s.realURI))
	case *metaSigState:
		return IndexFileHeaders(s.opts.listsFile(s.realURI))
	case *metaIndexState:
		return IndexFileHeaders(s.opts.listsFile(s.realURI))
	default:
		return ""
	}
}

// Finished is called once the session is over.
func (it *Item) Finished() {
	if s, ok := it.state.(*archiveState); ok {
		s.finished(it)
	}
}

func (it *Item) baseDone(msg Message, size int64, _ string, _ *MethodConfig) {
	if !it.Complete && !it.Local && msg.Get("Filename") == it.DestFile {
		it.owner.Fetched(size, msg.Int("Resume-Point", 0))
	}
	if it.FileSize == 0 {
		it.FileSize = size
	}
	it.Status = StatDone
	it.ErrorText = ""
	it.owner.Dequeue(it)
}

func (it *Item) baseFailed(msg Message, cnf *MethodConfig) {
	it.Status = StatIdle
	it.ErrorText = msg.Get("Message")
	if it.QueueCounter > 1 {
		return
	}
	// A local-only method with a transient failure (missing media) may
	// succeed on a later cycle.
	if cnf != nil && cnf.LocalOnly && msg.Bool("Transient-Failure", false) {
		it.owner.Dequeue(it)
		return
	}
	it.Status = StatError
	it.owner.Dequeue(it)
}

// rename moves from to to, flagging the item as failed when that is not possible.
func (it *Item) rename(from, to string) bool {
	if err := os.Rename(from, to); err != nil {
		var le *os.LinkError
		reason := err.Error()
		if errors.As(err, &le) {
			reason = le.Err.Error()
		}
		it.Status = StatError
		it.ErrorText = fmt.Sprintf("rename failed, %s (%s -> %s).", reason, from, to)
		return false
	}
	return true
}

// quarantine keeps a file that failed verification as <path>.FAILED.
func quarantine(path string) {
	if fsutil.FileExists(path) {
		_ = os.Rename(path, path+".FAILED")
	}
}

func chmodDefault(path string) error {
	return os.Chmod(path, fsutil.FileModeDefault)
}

func (it *Item) queueURI(desc ItemDesc) {
	it.Desc = desc
	it.owner.Enqueue(it, desc)
}

// retire hands control to a successor: the item ends as a bookkeeping
// Done without content and leaves the owner's table.
func (it *Item) retire() {
	it.Complete = false
	it.Status = StatDone
	it.owner.Dequeue(it)
	it.owner.Retire(it)
}

func trace(on bool, component, format string, args ...interface{}) {
	if !on {
		return
	}
	logger.InfofWithFields(logger.Fields{"component": component}, format, args...)
}
