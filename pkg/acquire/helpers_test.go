package acquire_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glorpus-work/acquire/pkg/acquire"
	"github.com/glorpus-work/acquire/pkg/acquire/acquiretest"
	"github.com/glorpus-work/acquire/pkg/fsutil"
	"github.com/glorpus-work/acquire/pkg/hashes"
	"github.com/stretchr/testify/require"
)

const (
	mirrorHost = "deb.example.org"
	baseURI    = "http://" + mirrorHost + "/debian/"
	distURI    = baseURI + "dists/stable/"
	packages   = distURI + "main/binary-amd64/Packages"
)

type fixture struct {
	t      *testing.T
	opts   acquire.Options
	root   string
	mirror *acquiretest.Mirror
	gzip   *acquiretest.Decompress
	cp     *acquiretest.Copy
	rred   *acquiretest.Rred
	gpgv   *acquiretest.Gpgv
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	opts := acquire.Options{
		PDiffs:         true,
		SourceSymlinks: true,
		ListsDir:       filepath.Join(dir, "lists"),
		ArchivesDir:    filepath.Join(dir, "archives"),
		Bzip2Path:      filepath.Join(dir, "no-bzip2"),
	}
	require.NoError(t, fsutil.EnsureDirs(opts.ListsDir, opts.ArchivesDir))

	root := filepath.Join(dir, "mirror")
	return &fixture{
		t:      t,
		opts:   opts,
		root:   root,
		mirror: acquiretest.NewMirror(root),
		gzip:   acquiretest.Gzip(),
		cp:     &acquiretest.Copy{},
		rred:   &acquiretest.Rred{},
		gpgv:   &acquiretest.Gpgv{},
	}
}

func (f *fixture) session(extra ...acquire.Option) *acquire.Acquire {
	options := []acquire.Option{
		acquire.WithMethod("http", f.mirror),
		acquire.WithMethod("gzip", f.gzip),
		acquire.WithMethod("bzip2", acquiretest.Bzip2()),
		acquire.WithMethod("copy", f.cp),
		acquire.WithMethod("rred", f.rred),
		acquire.WithMethod("gpgv", f.gpgv),
		acquire.WithConcurrency(2),
	}
	return acquire.New(f.opts, append(options, extra...)...)
}

// mirrorPath maps an http URI onto the mirror directory.
func (f *fixture) mirrorPath(uri string) string {
	rest := strings.TrimPrefix(uri, "http://")
	return filepath.Join(f.root, filepath.FromSlash(rest))
}

func (f *fixture) serve(uri, content string) {
	f.t.Helper()
	require.NoError(f.t, acquiretest.WriteFile(f.mirrorPath(uri), []byte(content)))
}

func (f *fixture) serveGzip(uri, content string) {
	f.t.Helper()
	require.NoError(f.t, acquiretest.WriteGzip(f.mirrorPath(uri), []byte(content)))
}

func (f *fixture) listsFile(uri string) string {
	return filepath.Join(f.opts.ListsDir, fsutil.URIToFileName(uri))
}

func (f *fixture) listsPartial(uri string) string {
	return filepath.Join(f.opts.ListsDir, fsutil.PartialDir, fsutil.URIToFileName(uri))
}

func (f *fixture) readFile(path string) string {
	f.t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(f.t, err)
	return string(b)
}

func transient(reason string) acquire.Message {
	return acquire.NewMessage("Message", reason, "Transient-Failure", "true")
}

func md5Of(t *testing.T, s string) string {
	t.Helper()
	sum, err := hashes.Reader(hashes.MD5, strings.NewReader(s))
	require.NoError(t, err)
	return sum
}

func sha1Of(t *testing.T, s string) string {
	t.Helper()
	sum, err := hashes.Reader(hashes.SHA1, strings.NewReader(s))
	require.NoError(t, err)
	return sum
}

func kinds(items []*acquire.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Kind())
	}
	return out
}
