package cache

import "github.com/glorpus-work/acquire/pkg/fsutil"

// CacheDirPerm is the permission mode used when a cleaned directory is recreated.
const CacheDirPerm = fsutil.DirModeDefault

// FailedSuffix marks files that failed verification and were set aside.
const FailedSuffix = ".FAILED"
