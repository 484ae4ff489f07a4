package acquire_test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/glorpus-work/acquire/pkg/acquire"
	"github.com/glorpus-work/acquire/pkg/acquire/acquiretest"
	mock_acquire "github.com/glorpus-work/acquire/pkg/acquire/mocks"
	"github.com/glorpus-work/acquire/pkg/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	readmeURI  = mirror1 + "README"
	readmeData = "Debian mirror\n"
)

func TestFileFetcherDestination(t *testing.T) {
	f := newFixture(t)
	a := f.session()
	dir := t.TempDir()

	it := acquire.NewFileFetcher(a, readmeURI, "", 0, "README", "README", dir, "", f.opts)
	assert.Equal(t, filepath.Join(dir, "README"), it.DestFile)

	explicit := filepath.Join(t.TempDir(), "explicit")
	it = acquire.NewFileFetcher(a, readmeURI, "", 0, "README", "README", dir, explicit, f.opts)
	assert.Equal(t, explicit, it.DestFile)

	it = acquire.NewFileFetcher(a, readmeURI, "", 0, "README", "README", "", "", f.opts)
	assert.Equal(t, "README", it.DestFile)
	assert.Empty(t, it.Custom600Headers())
}

func TestFileFetcherDownloads(t *testing.T) {
	f := newFixture(t)
	f.serve(readmeURI, readmeData)
	dir := t.TempDir()

	a := f.session()
	it := acquire.NewFileFetcher(a, readmeURI, md5Of(t, readmeData), int64(len(readmeData)), "README", "README", dir, "", f.opts)

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, acquire.StatDone, it.Status)
	assert.True(t, it.Complete)
	assert.Equal(t, readmeData, f.readFile(filepath.Join(dir, "README")))
}

func TestFileFetcherDropsOversizedPartial(t *testing.T) {
	f := newFixture(t)
	dest := filepath.Join(t.TempDir(), "README")
	require.NoError(t, acquiretest.WriteFile(dest, []byte(readmeData+readmeData)))

	it := acquire.NewFileFetcher(f.session(), readmeURI, "", int64(len(readmeData)), "README", "README", "", dest, f.opts)
	assert.Zero(t, it.PartialSize)
	assert.False(t, fsutil.FileExists(dest))
}

func TestFileFetcherChecksumMismatch(t *testing.T) {
	f := newFixture(t)
	f.serve(readmeURI, readmeData)
	dest := filepath.Join(t.TempDir(), "README")

	a := f.session()
	it := acquire.NewFileFetcher(a, readmeURI, md5Of(t, "other"), 0, "README", "README", "", dest, f.opts)

	_, err := a.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, acquire.StatError, it.Status)
	assert.Equal(t, "MD5Sum mismatch", it.ErrorText)
	assert.True(t, fsutil.FileExists(dest+".FAILED"))
}

func TestFileFetcherRetries(t *testing.T) {
	f := newFixture(t)
	f.opts.Retries = 1
	f.mirror.Fail[readmeURI] = transient("Temporary failure resolving")

	a := f.session()
	it := acquire.NewFileFetcher(a, readmeURI, "", 0, "README", "README", t.TempDir(), "", f.opts)

	_, err := a.Run(context.Background())
	require.Error(t, err)
	assert.Len(t, f.mirror.Requests(), 2)
	assert.Equal(t, acquire.StatError, it.Status)
	assert.Equal(t, "Temporary failure resolving", it.ErrorText)
}

func TestFileFetcherLocalTransientFailureStaysIdle(t *testing.T) {
	tests := []struct {
		name       string
		cnf        *acquire.MethodConfig
		msg        acquire.Message
		wantStatus acquire.Status
	}{
		{"local-only transient", &acquire.MethodConfig{Access: "cdrom", LocalOnly: true}, transient("Please insert the disc"), acquire.StatIdle},
		{"local-only permanent", &acquire.MethodConfig{Access: "cdrom", LocalOnly: true}, acquire.NewMessage("Message", "Please insert the disc"), acquire.StatError},
		{"network transient", &acquire.MethodConfig{Access: "http"}, transient("Please insert the disc"), acquire.StatError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			a := f.session()
			it := acquire.NewFileFetcher(a, "cdrom:[Debian 12]/README", "", 0, "README", "README", t.TempDir(), "", f.opts)
			require.Equal(t, 1, it.QueueCounter)

			it.Failed(tt.msg, tt.cnf)
			assert.Equal(t, tt.wantStatus, it.Status)
			assert.Equal(t, "Please insert the disc", it.ErrorText)
			assert.Zero(t, it.QueueCounter)
		})
	}
}

// localMethod answers like a file: transport: the data stays where it is.
func localMethod(t *testing.T, ctrl *gomock.Controller, src string) *mock_acquire.MockMethod {
	m := mock_acquire.NewMockMethod(ctrl)
	m.EXPECT().Config().Return(acquire.MethodConfig{Access: "file", LocalOnly: true}).AnyTimes()
	m.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req acquire.Request, _ func(acquire.Message)) (acquire.Message, error) {
			assert.Equal(t, "file:"+src, req.URI)
			return acquire.NewMessage(
				"Filename", src,
				"Size", strconv.Itoa(len(readmeData)),
				"MD5-Hash", md5Of(t, readmeData),
			), nil
		})
	return m
}

func TestFileFetcherSymlinksLocalSource(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(t.TempDir(), "README")
	require.NoError(t, acquiretest.WriteFile(src, []byte(readmeData)))
	dest := filepath.Join(t.TempDir(), "README")

	ctrl := gomock.NewController(t)
	a := f.session(acquire.WithMethod("file", localMethod(t, ctrl, src)))
	it := acquire.NewFileFetcher(a, "file:"+src, md5Of(t, readmeData), 0, "README", "README", "", dest, f.opts)

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, it.Local)
	target, err := os.Readlink(dest)
	require.NoError(t, err)
	assert.Equal(t, src, target)
	assert.Empty(t, f.cp.Requests())
}

func TestFileFetcherCopiesWithoutSymlinks(t *testing.T) {
	f := newFixture(t)
	f.opts.SourceSymlinks = false
	src := filepath.Join(t.TempDir(), "README")
	require.NoError(t, acquiretest.WriteFile(src, []byte(readmeData)))
	dest := filepath.Join(t.TempDir(), "README")

	ctrl := gomock.NewController(t)
	a := f.session(acquire.WithMethod("file", localMethod(t, ctrl, src)))
	it := acquire.NewFileFetcher(a, "file:"+src, md5Of(t, readmeData), 0, "README", "README", "", dest, f.opts)

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, acquire.StatDone, it.Status)
	assert.Equal(t, []string{"copy:" + src}, f.cp.URIs())

	info, err := os.Lstat(dest)
	require.NoError(t, err)
	assert.Zero(t, info.Mode()&os.ModeSymlink)
	assert.Equal(t, readmeData, f.readFile(dest))
}
