package hooks

import (
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/glorpus-work/acquire/pkg/errors"
)

// HookFileExtensions lists the supported hooks file extensions.
var HookFileExtensions = map[string]bool{
	".tengo": true,
}

// LoadHooksFromDir loads <dir>/<hook-type>.tengo files. A missing directory
// loads nothing.
func LoadHooksFromDir(manager HookManager, dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return pkgerrors.Wrapf(pkgerrors.ErrHookLoad, "failed to read hooks directory %s: %v", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := filepath.Ext(entry.Name())
		if !HookFileExtensions[ext] {
			continue
		}

		hookType := HookType(strings.TrimSuffix(entry.Name(), ext))
		switch hookType {
		case PostFetch, PostUpdate, AuthFailure:
		default:
			continue
		}

		hookPath := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(hookPath)
		if err != nil {
			return pkgerrors.Wrapf(pkgerrors.ErrHookLoad, "error reading hooks file %s: %v", hookPath, err)
		}

		if err := manager.AddHook(Hook{
			Type:    hookType,
			Content: string(content),
		}); err != nil {
			return pkgerrors.Wrapf(err, "error adding hooks %s", hookType)
		}
	}

	return nil
}

// HookTemplate generates a template for a hooks script.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PostFetch:
		return `// Post-fetch hook
// Runs after an item has been fetched and verified.
// Available variables:
// - uri: string - the last URI fetched for the item
// - description: string - human readable description
// - destFile: string - where the file was stored
// - kind: string - fetcher kind, e.g. "index" or "archive"

// Example: log every new archive
/*
fmt := import("fmt")
if kind == "archive" {
    fmt.println("fetched " + destFile)
}
*/`

	case PostUpdate:
		return `// Post-update hook
// Runs once when the acquisition session is over.
// Available variables:
// - session: string - session id
// - bytesFetched: int - bytes fetched from the network

// Example: refuse empty updates
/*
err := ""
if bytesFetched == 0 {
    err = "nothing was downloaded"
}
*/`

	case AuthFailure:
		return `// Auth-failure hook
// Runs when an item fails verification.
// Available variables: uri, description, destFile, kind, errorText

// Example: keep a record of bad mirrors
/*
os := import("os")
f := os.open_file("/var/log/acquire-auth.log", os.o_append|os.o_wronly|os.o_create, 0644)
f.write_string(uri + ": " + errorText + "\n")
f.close()
*/`

	default:
		return "// Unknown hooks type: " + string(hookType)
	}
}
