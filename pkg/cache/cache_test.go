package cache_test

import (
	"path/filepath"
	"testing"

	"github.com/glorpus-work/acquire/pkg/cache"
	pkgerrors "github.com/glorpus-work/acquire/pkg/errors"
	"github.com/glorpus-work/acquire/pkg/fsutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	listsDir    = "/var/lib/acquire/lists"
	archivesDir = "/var/cache/acquire/archives"
)

func setupTestCache(t *testing.T) (afero.Fs, *cache.DefaultManager) {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		filepath.Join(listsDir, "deb.example.org_debian_dists_stable_Release"):                    "release data",
		filepath.Join(listsDir, "deb.example.org_debian_dists_stable_main_binary-amd64_Packages"): "index data",
		filepath.Join(listsDir, "partial", "deb.example.org_debian_dists_stable_InRelease"):       "partial",
		filepath.Join(listsDir, "partial", "deb.example.org_debian_dists_stable_Packages.FAILED"): "bad index",
		filepath.Join(archivesDir, "foo_1.0_amd64.deb"):                                           "archive data",
		filepath.Join(archivesDir, "partial", "bar_2.0_amd64.deb"):                                "half",
		filepath.Join(archivesDir, "partial", "baz_3.0_amd64.deb.FAILED"):                         "corrupt archive",
	}
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), fsutil.FileModeDefault))
	}

	mgr, err := cache.NewManagerWithFs(fs, listsDir, archivesDir)
	require.NoError(t, err)
	return fs, mgr
}

func exists(t *testing.T, fs afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, path)
	require.NoError(t, err)
	return ok
}

func TestNewManagerRequiresDirectories(t *testing.T) {
	tests := []struct {
		name     string
		lists    string
		archives string
	}{
		{"empty lists", "", archivesDir},
		{"empty archives", listsDir, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cache.NewManagerWithFs(afero.NewMemMapFs(), tt.lists, tt.archives)
			assert.ErrorIs(t, err, pkgerrors.ErrCacheDirectory)
		})
	}

	mgr, err := cache.NewManager(t.TempDir(), t.TempDir())
	require.NoError(t, err)
	assert.Len(t, mgr.Directories(), 2)
}

func TestCleanDefaultRemovesPartialAndFailed(t *testing.T) {
	fs, mgr := setupTestCache(t)

	result, err := mgr.Clean(cache.CleanOptions{})
	require.NoError(t, err)

	assert.Equal(t, 4, result.FilesRemoved)
	assert.Equal(t, int64(len("partial")+len("half")), result.PartialFreed)
	assert.Equal(t, int64(len("bad index")+len("corrupt archive")), result.FailedFreed)
	assert.Equal(t, result.PartialFreed+result.FailedFreed, result.TotalFreed)

	assert.True(t, exists(t, fs, filepath.Join(listsDir, "deb.example.org_debian_dists_stable_Release")))
	assert.True(t, exists(t, fs, filepath.Join(archivesDir, "foo_1.0_amd64.deb")))
	assert.False(t, exists(t, fs, filepath.Join(archivesDir, "partial", "bar_2.0_amd64.deb")))
	assert.True(t, exists(t, fs, filepath.Join(archivesDir, "partial")), "partial directory should be kept")
}

func TestCleanFailedOnly(t *testing.T) {
	fs, mgr := setupTestCache(t)

	result, err := mgr.Clean(cache.CleanOptions{Failed: true})
	require.NoError(t, err)

	assert.Equal(t, 2, result.FilesRemoved)
	assert.Equal(t, int64(0), result.PartialFreed)
	assert.True(t, exists(t, fs, filepath.Join(archivesDir, "partial", "bar_2.0_amd64.deb")))
	assert.False(t, exists(t, fs, filepath.Join(archivesDir, "partial", "baz_3.0_amd64.deb.FAILED")))
}

func TestCleanAll(t *testing.T) {
	fs, mgr := setupTestCache(t)

	result, err := mgr.Clean(cache.CleanOptions{All: true})
	require.NoError(t, err)
	assert.Equal(t, 7, result.FilesRemoved)
	assert.False(t, exists(t, fs, filepath.Join(listsDir, "deb.example.org_debian_dists_stable_Release")))
	assert.True(t, exists(t, fs, filepath.Join(listsDir, "partial")))
}

func TestCleanNonExistentDirectories(t *testing.T) {
	mgr, err := cache.NewManagerWithFs(afero.NewMemMapFs(), listsDir, archivesDir)
	require.NoError(t, err)

	result, err := mgr.Clean(cache.CleanOptions{All: true})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.TotalFreed, "no data should be freed from non-existent directories")
}

func TestGetInfo(t *testing.T) {
	_, mgr := setupTestCache(t)

	info, err := mgr.GetInfo()
	require.NoError(t, err)

	assert.Equal(t, listsDir, info.ListsDir)
	assert.Equal(t, archivesDir, info.ArchivesDir)
	assert.Equal(t, 2, info.ListsFiles)
	assert.Equal(t, 1, info.ArchivesFiles)
	assert.Equal(t, 4, info.PartialFiles)
	assert.Equal(t, 2, info.FailedFiles)
	assert.Equal(t, info.ListsSize+info.ArchivesSize+info.PartialSize, info.TotalSize)
}

func TestGetInfoEmptyCache(t *testing.T) {
	mgr, err := cache.NewManagerWithFs(afero.NewMemMapFs(), listsDir, archivesDir)
	require.NoError(t, err)

	info, err := mgr.GetInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.TotalSize)
	assert.Equal(t, 0, info.ListsFiles)
	assert.Equal(t, 0, info.ArchivesFiles)
}

func TestFailedListing(t *testing.T) {
	_, mgr := setupTestCache(t)

	files, err := mgr.Failed()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(archivesDir, "partial", "baz_3.0_amd64.deb.FAILED"), files[0].Path)
	assert.Equal(t, filepath.Join(listsDir, "partial", "deb.example.org_debian_dists_stable_Packages.FAILED"), files[1].Path)
	assert.Equal(t, int64(len("corrupt archive")), files[0].Size)
}

func TestOperation_Clean(t *testing.T) {
	_, mgr := setupTestCache(t)
	op := cache.NewOperation(mgr)

	msg, err := op.Clean(false, true, false)
	require.NoError(t, err)
	assert.Contains(t, msg, "Successfully cleaned cache")
	assert.Contains(t, msg, "Partial:")

	msg, err = op.Clean(false, true, false)
	require.NoError(t, err)
	assert.Equal(t, "No files were removed from the cache.", msg)
}

func TestOperation_GetInfo(t *testing.T) {
	_, mgr := setupTestCache(t)
	op := cache.NewOperation(mgr)

	info, err := op.GetInfo()
	require.NoError(t, err)
	assert.Contains(t, info, "Cache Information:")
	assert.Contains(t, info, listsDir)
	assert.Contains(t, info, archivesDir)
	assert.Contains(t, info, "Quarantined:  2 files")
}

func TestOperation_Failed(t *testing.T) {
	_, mgr := setupTestCache(t)
	op := cache.NewOperation(mgr)

	out, err := op.Failed()
	require.NoError(t, err)
	assert.Contains(t, out, "baz_3.0_amd64.deb.FAILED")

	_, err = op.Clean(false, false, true)
	require.NoError(t, err)
	out, err = op.Failed()
	require.NoError(t, err)
	assert.Equal(t, "No quarantined files.", out)
}

func TestOperation_GetInfo_EmptyCache(t *testing.T) {
	mgr, err := cache.NewManagerWithFs(afero.NewMemMapFs(), listsDir, archivesDir)
	require.NoError(t, err)
	op := cache.NewOperation(mgr)

	info, err := op.GetInfo()
	require.NoError(t, err)
	assert.Contains(t, info, "0 B")
}
