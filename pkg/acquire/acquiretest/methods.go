// Package acquiretest provides in-process transport methods that stand in
// for the network, decompression, patch and signature helpers in tests.
package acquiretest

import (
	"context"
	"crypto/md5" //nolint:gosec // matches the checksum the fetchers verify
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/glorpus-work/acquire/pkg/acquire"
	"github.com/glorpus-work/acquire/pkg/fsutil"
	"github.com/glorpus-work/acquire/pkg/hashes"
	"github.com/mholt/archives"
)

// recorder keeps the requests a fake method has seen.
type recorder struct {
	mu       sync.Mutex
	requests []acquire.Request
}

func (r *recorder) record(req acquire.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
}

// Requests returns a copy of the requests seen so far.
func (r *recorder) Requests() []acquire.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]acquire.Request(nil), r.requests...)
}

// URIs returns the URIs of the requests seen so far.
func (r *recorder) URIs() []string {
	var out []string
	for _, req := range r.Requests() {
		out = append(out, req.URI)
	}
	return out
}

// Mirror serves URIs from a directory tree laid out as <Root>/<host>/<path>.
type Mirror struct {
	recorder

	Root string
	Cfg  acquire.MethodConfig
	// Fail forces the failure report for a URI.
	Fail map[string]acquire.Message
	// IMS answers conditional requests with IMS-Hit when the source is not
	// newer than the Last-Modified header.
	IMS bool
}

// NewMirror returns an "http" mirror rooted at root.
func NewMirror(root string) *Mirror {
	return &Mirror{Root: root, Cfg: acquire.MethodConfig{Access: "http"}, Fail: map[string]acquire.Message{}}
}

func (m *Mirror) Config() acquire.MethodConfig { return m.Cfg }

func (m *Mirror) Fetch(_ context.Context, req acquire.Request, started func(acquire.Message)) (acquire.Message, error) {
	m.record(req)
	if msg, ok := m.Fail[req.URI]; ok {
		return acquire.Message{}, &acquire.FetchError{Message: msg}
	}

	u, err := url.Parse(req.URI)
	if err != nil {
		return acquire.Message{}, err
	}
	src := filepath.Join(m.Root, u.Host, filepath.FromSlash(u.Path))
	info, err := os.Stat(src)
	if err != nil {
		return acquire.Message{}, acquire.Failure("Message", "404  Not Found", "FailReason", "HttpError404")
	}

	if m.IMS {
		if since, err := http.ParseTime(req.Headers.Get("Last-Modified")); err == nil && !info.ModTime().After(since) {
			return acquire.NewMessage("URI", req.URI, "Filename", req.DestFile, "IMS-Hit", "true"), nil
		}
	}

	started(acquire.NewMessage("Size", strconv.FormatInt(info.Size(), 10)))
	msg, err := copyInto(src, req.DestFile)
	if err != nil {
		return acquire.Message{}, err
	}
	msg.Set("URI", req.URI)
	if req.ResumePoint > 0 && req.ResumePoint <= info.Size() {
		msg.Set("Resume-Point", strconv.FormatInt(req.ResumePoint, 10))
	}
	return msg, nil
}

// Copy implements the copy: helper.
type Copy struct {
	recorder
}

func (*Copy) Config() acquire.MethodConfig {
	return acquire.MethodConfig{Access: "copy", LocalOnly: true}
}

func (c *Copy) Fetch(_ context.Context, req acquire.Request, _ func(acquire.Message)) (acquire.Message, error) {
	c.record(req)
	return copyInto(strings.TrimPrefix(req.URI, "copy:"), req.DestFile)
}

// Decompress implements the gzip: and bzip2: helpers.
type Decompress struct {
	recorder

	access string
	format archives.Decompressor
}

// Gzip returns the gzip: helper.
func Gzip() *Decompress { return &Decompress{access: "gzip", format: archives.Gz{}} }

// Bzip2 returns the bzip2: helper.
func Bzip2() *Decompress { return &Decompress{access: "bzip2", format: archives.Bz2{}} }

func (d *Decompress) Config() acquire.MethodConfig {
	return acquire.MethodConfig{Access: d.access, LocalOnly: true}
}

func (d *Decompress) Fetch(_ context.Context, req acquire.Request, _ func(acquire.Message)) (acquire.Message, error) {
	d.record(req)
	src, err := os.Open(strings.TrimPrefix(req.URI, d.access+":"))
	if err != nil {
		return acquire.Message{}, acquire.Failure("Message", err.Error())
	}
	defer func() { _ = src.Close() }()

	r, err := d.format.OpenReader(src)
	if err != nil {
		return acquire.Message{}, acquire.Failure("Message", err.Error())
	}
	defer func() { _ = r.Close() }()
	return writeFrom(r, req.DestFile)
}

// Rred applies the ed script <file>.ed to <file> and writes the result to
// the request destination.
type Rred struct {
	recorder
}

func (*Rred) Config() acquire.MethodConfig {
	return acquire.MethodConfig{Access: "rred", LocalOnly: true}
}

func (r *Rred) Fetch(_ context.Context, req acquire.Request, _ func(acquire.Message)) (acquire.Message, error) {
	r.record(req)
	target := strings.TrimPrefix(req.URI, "rred:")
	original, err := os.ReadFile(target)
	if err != nil {
		return acquire.Message{}, acquire.Failure("Message", err.Error())
	}
	script, err := os.ReadFile(target + ".ed")
	if err != nil {
		return acquire.Message{}, acquire.Failure("Message", err.Error())
	}
	patched, err := ApplyEd(original, script)
	if err != nil {
		return acquire.Message{}, acquire.Failure("Message", err.Error())
	}
	return writeFrom(strings.NewReader(string(patched)), req.DestFile)
}

// Gpgv checks signatures made with Sign. The request URI names the detached
// signature and DestFile the signed file.
type Gpgv struct {
	recorder

	// MissingKeys are reported as NO_PUBKEY status lines.
	MissingKeys []string
}

func (*Gpgv) Config() acquire.MethodConfig {
	return acquire.MethodConfig{Access: "gpgv", LocalOnly: true}
}

func (g *Gpgv) Fetch(_ context.Context, req acquire.Request, _ func(acquire.Message)) (acquire.Message, error) {
	g.record(req)
	sig, err := os.ReadFile(strings.TrimPrefix(req.URI, "gpgv:"))
	if err != nil {
		return acquire.Message{}, acquire.Failure("Message", "Could not read signature: "+err.Error())
	}
	data, err := os.ReadFile(req.DestFile)
	if err != nil {
		return acquire.Message{}, acquire.Failure("Message", err.Error())
	}
	if string(sig) != string(Sign(data)) {
		return acquire.Message{}, acquire.Failure("Message", "The following signatures were invalid: BADSIG")
	}

	lines := []string{"[GNUPG:] GOODSIG 0123456789ABCDEF Test Archive Key"}
	for _, k := range g.MissingKeys {
		lines = append(lines, "[GNUPG:] NO_PUBKEY "+k)
	}
	return acquire.NewMessage(
		"URI", req.URI,
		"Filename", req.DestFile,
		"GPGVOutput", strings.Join(lines, "\n"),
	), nil
}

// Sign returns the detached signature Gpgv accepts for data.
func Sign(data []byte) []byte {
	sum := md5.Sum(data) //nolint:gosec // test signature only
	return []byte("SIG " + hex.EncodeToString(sum[:]) + "\n")
}

func copyInto(src, dst string) (acquire.Message, error) {
	n, err := fsutil.Copy(src, dst)
	if err != nil {
		return acquire.Message{}, acquire.Failure("Message", err.Error())
	}
	return placed(dst, n)
}

func writeFrom(r io.Reader, dst string) (acquire.Message, error) {
	if err := fsutil.EnsureFileDir(dst); err != nil {
		return acquire.Message{}, err
	}
	out, err := os.Create(dst)
	if err != nil {
		return acquire.Message{}, err
	}
	n, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return acquire.Message{}, acquire.Failure("Message", err.Error())
	}
	return placed(dst, n)
}

func placed(dst string, n int64) (acquire.Message, error) {
	sum, err := hashes.FileMD5(dst)
	if err != nil {
		return acquire.Message{}, err
	}
	return acquire.NewMessage(
		"Filename", dst,
		"Size", strconv.FormatInt(n, 10),
		"MD5-Hash", sum,
	), nil
}
