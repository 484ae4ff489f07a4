package acquire

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/glorpus-work/acquire/internal/logger"
	pkgerrors "github.com/glorpus-work/acquire/pkg/errors"
	"github.com/glorpus-work/acquire/pkg/metrics"
	"github.com/google/uuid"
)

// Acquire owns the items of one acquisition session and drives them by
// handing their queued transfers to methods. Items are created and mutated
// only from the goroutine that calls the constructors and Run.
type Acquire struct {
	opts        Options
	methods     map[string]Method
	hooks       HookRunner
	progress    Progress
	concurrency int

	nextHandle Handle
	items      map[Handle]*Item

	nextEntry  uint64
	pending    []*entry
	inflight   map[*Item]*entry
	delivering *entry

	session  string
	reported map[*Item]Status
	bytes    int64
	warnings []string
}

type entry struct {
	id   uint64
	item *Item
	desc ItemDesc
	live bool
}

// Option configures an Acquire.
type Option func(*Acquire)

// WithMethod registers m for the access scheme (the URI text before ':').
func WithMethod(access string, m Method) Option {
	return func(a *Acquire) { a.methods[access] = m }
}

// WithHooks sets the runner for post-fetch, post-update and auth-failure hooks.
func WithHooks(h HookRunner) Option {
	return func(a *Acquire) { a.hooks = h }
}

// Progress observes transfers as the loop delivers their reports.
type Progress interface {
	Fetch(desc ItemDesc)
	Done(desc ItemDesc)
	Fail(desc ItemDesc, reason string)
}

// WithProgress sets the transfer observer.
func WithProgress(p Progress) Option {
	return func(a *Acquire) { a.progress = p }
}

// WithConcurrency bounds the number of transfers running at once.
func WithConcurrency(n int) Option {
	return func(a *Acquire) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// New creates an empty session.
func New(opts Options, options ...Option) *Acquire {
	a := &Acquire{
		opts:        opts,
		methods:     make(map[string]Method),
		concurrency: max(2, runtime.NumCPU()/2),
		items:       make(map[Handle]*Item),
		inflight:    make(map[*Item]*entry),
		reported:    make(map[*Item]Status),
	}
	for _, o := range options {
		o(a)
	}
	return a
}

// Options returns the session options.
func (a *Acquire) Options() Options { return a.opts }

// Register adds it to the live table.
func (a *Acquire) Register(it *Item) Handle {
	a.nextHandle++
	a.items[a.nextHandle] = it
	return a.nextHandle
}

// Retire drops it from the live table.
func (a *Acquire) Retire(it *Item) {
	delete(a.items, it.handle)
}

// Lookup returns the live item for h.
func (a *Acquire) Lookup(h Handle) (*Item, bool) {
	it, ok := a.items[h]
	return it, ok
}

// Items returns the live items in registration order.
func (a *Acquire) Items() []*Item {
	handles := slices.Sorted(maps.Keys(a.items))
	out := make([]*Item, 0, len(handles))
	for _, h := range handles {
		out = append(out, a.items[h])
	}
	return out
}

// Enqueue adds a transfer for it.
func (a *Acquire) Enqueue(it *Item, desc ItemDesc) {
	a.nextEntry++
	a.pending = append(a.pending, &entry{id: a.nextEntry, item: it, desc: desc, live: true})
	it.QueueCounter++
	metrics.ItemsQueued.WithLabelValues(it.Kind()).Inc()
}

// Dequeue removes every queue entry of it, including the one whose report
// is being delivered. A running transfer keeps going but its result is
// ignored.
func (a *Acquire) Dequeue(it *Item) {
	a.pending = slices.DeleteFunc(a.pending, func(e *entry) bool {
		if e.item == it {
			e.live = false
			return true
		}
		return false
	})
	if e, ok := a.inflight[it]; ok {
		e.live = false
	}
	if a.delivering != nil && a.delivering.item == it {
		a.delivering.live = false
	}
	it.QueueCounter = 0
}

// queued reports whether it still has a transfer waiting or running.
func (a *Acquire) queued(it *Item) bool {
	if e, ok := a.inflight[it]; ok && e.live {
		return true
	}
	return slices.ContainsFunc(a.pending, func(e *entry) bool { return e.item == it })
}

// Fetched accounts bytes that were transferred from the network.
func (a *Acquire) Fetched(size, resumePoint int64) {
	n := size - resumePoint
	if n <= 0 {
		return
	}
	a.bytes += n
	metrics.BytesFetched.Add(float64(n))
}

// Warn records a non-fatal problem.
func (a *Acquire) Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	a.warnings = append(a.warnings, msg)
	logger.Warn(msg, a.fields())
}

// Summary is the outcome of Run.
type Summary struct {
	SessionID string
	Done      int
	Failed    int
	Pending   int
	Bytes     int64
	Warnings  []string
}

type eventKind int

const (
	eventStart eventKind = iota
	eventDone
	eventFail
)

type event struct {
	entry   *entry
	kind    eventKind
	msg     Message
	elapsed time.Duration
}

// Run dispatches queued transfers until nothing is left. The returned error
// joins the failures of all items that ended in an error state; it is
// ctx.Err() when the context is cancelled.
func (a *Acquire) Run(ctx context.Context) (Summary, error) {
	a.session = uuid.NewString()
	sessionID := a.session
	logger.Debug("Starting acquisition", a.fields())

	events := make(chan event, a.concurrency)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		a.dispatch(ctx, events, &wg)
		if len(a.inflight) == 0 && len(a.pending) == 0 {
			break
		}
		if len(a.inflight) == 0 {
			// Everything left was delivered synchronously; dispatch again.
			continue
		}

		select {
		case <-ctx.Done():
			return a.summary(sessionID), ctx.Err()
		case ev := <-events:
			a.deliver(ev)
		}
	}

	for _, it := range a.Items() {
		it.Finished()
	}
	if a.hooks != nil {
		if err := a.hooks.Run(HookPostUpdate, map[string]interface{}{
			"session":      sessionID,
			"bytesFetched": a.bytes,
		}); err != nil {
			a.Warn("post-update hook failed: %v", err)
		}
	}

	sum := a.summary(sessionID)
	logger.Debug("Acquisition finished", a.fields(logger.Fields{
		"done":   sum.Done,
		"failed": sum.Failed,
		"bytes":  sum.Bytes,
	}))
	return sum, a.itemErrors()
}

// dispatch starts pending transfers while slots are free. Only one transfer
// per item runs at a time, and single-instance methods run one transfer.
func (a *Acquire) dispatch(ctx context.Context, events chan<- event, wg *sync.WaitGroup) {
	for i := 0; i < len(a.pending) && len(a.inflight) < a.concurrency; {
		e := a.pending[i]
		if _, busy := a.inflight[e.item]; busy {
			i++
			continue
		}
		access := accessOf(e.desc.URI)
		method, err := a.method(access)
		if err == nil && method.Config().SingleInstance && a.accessBusy(access) {
			i++
			continue
		}

		a.pending = slices.Delete(a.pending, i, i+1)
		a.inflight[e.item] = e

		if err != nil {
			logger.Debug("Transfer not dispatched", a.fields(logger.Fields{"uri": e.desc.URI, "error": err}))
			a.deliver(event{
				entry: e,
				kind:  eventFail,
				msg:   NewMessage("Message", "Unable to find method "+access),
			})
			// The callback may have queued more work in front of i.
			i = 0
			continue
		}

		it := e.item
		req := Request{
			URI:         e.desc.URI,
			DestFile:    it.DestFile,
			Description: e.desc.Description,
			ResumePoint: it.PartialSize,
		}
		if h := it.Custom600Headers(); h != "" {
			if headers, err := ParseMessage(h); err == nil {
				req.Headers = headers
			}
		}
		it.Status = StatFetching
		metrics.InFlight.Inc()

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer metrics.InFlight.Dec()
			a.transfer(ctx, method, e, req, events)
		}()
	}
}

func (a *Acquire) method(access string) (Method, error) {
	m, ok := a.methods[access]
	if !ok {
		return nil, pkgerrors.ErrNoMethodForScheme(access)
	}
	return m, nil
}

func (a *Acquire) accessBusy(access string) bool {
	for _, e := range a.inflight {
		if accessOf(e.desc.URI) == access {
			return true
		}
	}
	return false
}

// transfer runs in a worker goroutine and reports back through events.
func (a *Acquire) transfer(ctx context.Context, m Method, e *entry, req Request, events chan<- event) {
	send := func(ev event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	start := time.Now()
	msg, err := m.Fetch(ctx, req, func(started Message) {
		send(event{entry: e, kind: eventStart, msg: started})
	})
	elapsed := time.Since(start)
	if err == nil {
		send(event{entry: e, kind: eventDone, msg: msg, elapsed: elapsed})
		return
	}
	if ctx.Err() != nil {
		return
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		send(event{entry: e, kind: eventFail, msg: fe.Message, elapsed: elapsed})
		return
	}
	send(event{entry: e, kind: eventFail, msg: NewMessage("Message", err.Error()), elapsed: elapsed})
}

// deliver hands a method report to its item. Reports for entries that were
// dequeued in the meantime are dropped.
func (a *Acquire) deliver(ev event) {
	e := ev.entry
	it := e.item
	access := accessOf(e.desc.URI)

	if ev.kind == eventStart {
		if e.live {
			it.Start(ev.msg, ev.msg.Int("Size", 0))
			if a.progress != nil {
				a.progress.Fetch(e.desc)
			}
		}
		return
	}

	if a.inflight[it] == e {
		delete(a.inflight, it)
	}
	if !e.live {
		return
	}
	a.delivering = e
	defer func() { a.delivering = nil }()

	var cnf *MethodConfig
	if m, ok := a.methods[access]; ok {
		c := m.Config()
		cnf = &c
		metrics.FetchLatency.WithLabelValues(access).Observe(ev.elapsed.Seconds())
	}

	switch ev.kind {
	case eventDone:
		metrics.FetchResults.WithLabelValues(access, "done").Inc()
		if a.progress != nil {
			a.progress.Done(e.desc)
		}
		it.Done(ev.msg, ev.msg.Int("Size", 0), ev.msg.Get("MD5-Hash"), cnf)
	case eventFail:
		metrics.FetchResults.WithLabelValues(access, "failed").Inc()
		if a.progress != nil {
			a.progress.Fail(e.desc, ev.msg.Get("Message"))
		}
		logger.Debug("Transfer failed", a.fields(logger.Fields{
			"uri":    e.desc.URI,
			"reason": ev.msg.Get("Message"),
		}))
		it.Failed(ev.msg, cnf)
	}

	// The callback may already have dequeued the entry.
	if e.live {
		e.live = false
		it.QueueCounter--
	}
	a.report(it)
}

// report runs the hooks for items that just reached a final state.
func (a *Acquire) report(it *Item) {
	if a.reported[it] == it.Status {
		return
	}
	switch {
	case it.Status == StatAuthError:
		metrics.AuthFailures.Inc()
		logger.Error("Verification failed", a.fields(logger.Fields{"uri": it.URI(), "error": it.ErrorText}))
		a.reported[it] = it.Status
		a.runHook(HookAuthFailure, it)
	case it.Status == StatDone && it.Complete && !a.queued(it):
		a.reported[it] = it.Status
		a.runHook(HookPostFetch, it)
	}
}

func (a *Acquire) runHook(event string, it *Item) {
	if a.hooks == nil {
		return
	}
	vars := map[string]interface{}{
		"session":     a.session,
		"uri":         it.URI(),
		"description": it.Desc.Description,
		"dest_file":   it.DestFile,
		"kind":        it.Kind(),
		"error":       it.ErrorText,
	}
	if err := a.hooks.Run(event, vars); err != nil {
		a.Warn("%s hook failed for %s: %v", event, it.URI(), err)
	}
}

// fields returns the log fields of the running session merged with extra.
func (a *Acquire) fields(extra ...logger.Fields) logger.Fields {
	f := logger.Fields{"session": a.session}
	for _, e := range extra {
		maps.Copy(f, e)
	}
	return f
}

func (a *Acquire) summary(sessionID string) Summary {
	sum := Summary{SessionID: sessionID, Bytes: a.bytes, Warnings: slices.Clone(a.warnings)}
	for _, it := range a.Items() {
		switch it.Status {
		case StatDone:
			sum.Done++
		case StatError, StatAuthError:
			sum.Failed++
		default:
			sum.Pending++
		}
	}
	return sum
}

func (a *Acquire) itemErrors() error {
	var errs []error
	for _, it := range a.Items() {
		if it.Status == StatError || it.Status == StatAuthError {
			errs = append(errs, pkgerrors.Wrapf(pkgerrors.ErrFetchFailed, "%s: %s", it.URI(), it.ErrorText))
		}
	}
	return errors.Join(errs...)
}
