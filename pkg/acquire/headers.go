package acquire

import (
	"net/http"

	"github.com/glorpus-work/acquire/pkg/fsutil"
)

// IndexFileHeaders marks a request as an index fetch and, when path exists,
// adds its modification time so the method can do a conditional fetch.
func IndexFileHeaders(path string) string {
	const marker = "Index-File: true"
	mtime, ok := fsutil.ModTime(path)
	if !ok {
		return marker
	}
	return marker + "\nLast-Modified: " + mtime.UTC().Format(http.TimeFormat)
}
