package fsutil

// Permissions used for everything written below the lists and archives
// directories.
const (
	FileModeDefault = 0o644 // -rw-r--r--
	FileModeSecure  = 0o640 // -rw-r-----
	DirModeDefault  = 0o755 // drwxr-xr-x
)
