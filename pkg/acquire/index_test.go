package acquire_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/glorpus-work/acquire/pkg/acquire"
	"github.com/glorpus-work/acquire/pkg/acquire/acquiretest"
	mock_acquire "github.com/glorpus-work/acquire/pkg/acquire/mocks"
	pkgerrors "github.com/glorpus-work/acquire/pkg/errors"
	"github.com/glorpus-work/acquire/pkg/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const packagesData = "Package: foo\nVersion: 1.0-1\nArchitecture: amd64\n\nPackage: bar\nVersion: 2.0\n"

func TestIndexFetcherSelectsGzWithoutBzip2(t *testing.T) {
	f := newFixture(t)
	a := f.session()

	it := acquire.NewIndexFetcher(a, packages, "stable/main Packages", "Packages", "", "", f.opts)
	assert.Equal(t, packages+".gz", it.Desc.URI)
	assert.Equal(t, 1, it.QueueCounter)
	assert.Equal(t, "index", it.Kind())
}

func TestIndexFetcherPrefersBzip2(t *testing.T) {
	f := newFixture(t)
	bzip2 := f.root + "/bzip2"
	require.NoError(t, acquiretest.WriteFile(bzip2, []byte("#!/bin/sh\n")))
	f.opts.Bzip2Path = bzip2
	a := f.session()

	it := acquire.NewIndexFetcher(a, packages, "stable/main Packages", "Packages", "", "", f.opts)
	require.Equal(t, packages+".bz2", it.Desc.URI)

	// A missing .bz2 falls back to .gz in a successor item.
	it.Failed(acquire.NewMessage("Message", "404  Not Found"), nil)
	assert.Equal(t, acquire.StatDone, it.Status)
	assert.False(t, it.Complete)
	_, live := a.Lookup(it.Handle())
	assert.False(t, live)

	items := a.Items()
	require.Len(t, items, 1)
	assert.Equal(t, packages+".gz", items[0].Desc.URI)
}

func TestIndexFetcherFetchesAndUnpacks(t *testing.T) {
	f := newFixture(t)
	f.serveGzip(packages+".gz", packagesData)

	ctrl := gomock.NewController(t)
	hooks := mock_acquire.NewMockHookRunner(ctrl)
	// post-fetch fires once, after the decompression stage.
	hooks.EXPECT().Run(acquire.HookPostFetch, gomock.Any()).DoAndReturn(
		func(_ string, vars map[string]interface{}) error {
			assert.Equal(t, "index", vars["kind"])
			assert.Equal(t, packages, vars["uri"])
			assert.Equal(t, f.listsFile(packages), vars["dest_file"])
			assert.NotEmpty(t, vars["session"])
			return nil
		}).Times(1)
	hooks.EXPECT().Run(acquire.HookPostUpdate, gomock.Any()).Return(nil)

	a := f.session(acquire.WithHooks(hooks))
	it := acquire.NewIndexFetcher(a, packages, "stable/main Packages", "Packages", md5Of(t, packagesData), "", f.opts)

	sum, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, it.QueueCounter)
	assert.Equal(t, 1, sum.Done)
	assert.Zero(t, sum.Failed)
	assert.NotEmpty(t, sum.SessionID)
	assert.Positive(t, sum.Bytes)

	assert.Equal(t, acquire.StatDone, it.Status)
	assert.True(t, it.Complete)
	assert.Equal(t, packagesData, f.readFile(f.listsFile(packages)))
	assert.False(t, fsutil.FileExists(f.listsPartial(packages)), "compressed download is removed")
	assert.Equal(t, []string{"gzip:" + f.listsPartial(packages)}, f.gzip.URIs())
}

func TestIndexFetcherChecksumMismatch(t *testing.T) {
	f := newFixture(t)
	f.serveGzip(packages+".gz", packagesData)

	ctrl := gomock.NewController(t)
	hooks := mock_acquire.NewMockHookRunner(ctrl)
	// No post-fetch: the intermediate download stage is not a finished item.
	hooks.EXPECT().Run(acquire.HookAuthFailure, gomock.Any()).DoAndReturn(
		func(_ string, vars map[string]interface{}) error {
			assert.Equal(t, packages, vars["uri"])
			assert.Equal(t, "MD5Sum mismatch", vars["error"])
			return nil
		})
	hooks.EXPECT().Run(acquire.HookPostUpdate, gomock.Any()).Return(nil)

	a := f.session(acquire.WithHooks(hooks))
	it := acquire.NewIndexFetcher(a, packages, "stable/main Packages", "Packages", md5Of(t, "something else"), "", f.opts)

	sum, err := a.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrFetchFailed))
	assert.Contains(t, err.Error(), packages+": MD5Sum mismatch")
	assert.NotContains(t, err.Error(), "gzip:", "errors name the index, not the helper stage")
	assert.Equal(t, 1, sum.Failed)

	assert.Equal(t, acquire.StatAuthError, it.Status)
	assert.Equal(t, "MD5Sum mismatch", it.ErrorText)
	assert.False(t, fsutil.FileExists(f.listsFile(packages)))
	assert.True(t, fsutil.FileExists(f.listsPartial(packages)+".decomp.FAILED"))
}

func TestIndexFetcherUnsupportedExtension(t *testing.T) {
	f := newFixture(t)
	a := f.session()
	it := acquire.NewIndexFetcher(a, packages, "stable/main Packages", "Packages", "", ".xz", f.opts)

	it.Done(acquire.NewMessage("Filename", it.DestFile, "Size", "10"), 10, "", nil)
	assert.Equal(t, acquire.StatError, it.Status)
	assert.Equal(t, "Unsupported extension: xz", it.ErrorText)
}

func TestIndexFetcherIMSHitKeepsIndex(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, acquiretest.WriteFile(f.listsFile(packages), []byte(packagesData)))
	a := f.session()
	it := acquire.NewIndexFetcher(a, packages, "stable/main Packages", "Packages", "", "", f.opts)

	assert.True(t, strings.HasPrefix(it.Custom600Headers(), "Index-File: true\nLast-Modified: "))

	it.Done(acquire.NewMessage("Filename", it.DestFile, "IMS-Hit", "true"), 0, "", nil)
	assert.Equal(t, acquire.StatDone, it.Status)
	assert.True(t, it.Complete)
	assert.Zero(t, it.QueueCounter)
	assert.Equal(t, packagesData, f.readFile(f.listsFile(packages)))
}

func TestIndexFetcherBlankFilename(t *testing.T) {
	f := newFixture(t)
	a := f.session()
	it := acquire.NewIndexFetcher(a, packages, "stable/main Packages", "Packages", "", "", f.opts)

	it.Done(acquire.NewMessage("Size", "10"), 10, "", nil)
	assert.Equal(t, acquire.StatError, it.Status)
	assert.Equal(t, "Method gave a blank filename", it.ErrorText)
}

func TestIndexFetcherAltFilename(t *testing.T) {
	f := newFixture(t)
	alt := f.root + "/unpacked/Packages"
	require.NoError(t, acquiretest.WriteFile(alt, []byte(packagesData)))

	a := f.session()
	it := acquire.NewIndexFetcher(a, packages, "stable/main Packages", "Packages", "", "", f.opts)
	it.Done(acquire.NewMessage("Filename", it.DestFile, "Alt-Filename", alt), 0, "", nil)

	assert.Equal(t, "copy:"+alt, it.Desc.URI)
	assert.Equal(t, "copy", it.Mode)
	assert.True(t, it.Local)
	assert.Equal(t, f.listsPartial(packages)+".decomp", it.DestFile)

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, packagesData, f.readFile(f.listsFile(packages)))
	_, statErr := os.Stat(alt)
	assert.NoError(t, statErr, "source of the copy is untouched")
}
