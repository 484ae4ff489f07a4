package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/glorpus-work/acquire/internal/logger"
)

// Operation renders cache manager results for the command line.
type Operation struct {
	manager Manager
}

// NewOperation creates a new cache operation instance.
func NewOperation(manager Manager) *Operation {
	return &Operation{
		manager: manager,
	}
}

// Clean cleans the cache based on the provided options.
func (op *Operation) Clean(all, partial, failed bool) (string, error) {
	options := CleanOptions{
		All:     all,
		Partial: partial,
		Failed:  failed,
	}

	logger.Debug("Cleaning cache", logger.Fields{
		"all":     options.All,
		"partial": options.Partial,
		"failed":  options.Failed,
	})

	result, err := op.manager.Clean(options)
	if err != nil {
		return "", fmt.Errorf("failed to clean cache: %w", err)
	}

	// Generate a human-readable result message
	var msg string
	if result.FilesRemoved > 0 {
		msg = fmt.Sprintf("Successfully cleaned cache. Removed %d files, freed %s of disk space.",
			result.FilesRemoved, formatBytes(result.TotalFreed))
		if result.PartialFreed > 0 {
			msg += fmt.Sprintf("\n- Partial: %s", formatBytes(result.PartialFreed))
		}
		if result.FailedFreed > 0 {
			msg += fmt.Sprintf("\n- Quarantined: %s", formatBytes(result.FailedFreed))
		}
	} else {
		msg = "No files were removed from the cache."
	}

	return msg, nil
}

// GetInfo returns information about the cache.
func (op *Operation) GetInfo() (string, error) {
	info, err := op.manager.GetInfo()
	if err != nil {
		return "", fmt.Errorf("failed to get cache info: %w", err)
	}

	return fmt.Sprintf(`Cache Information:
  Lists:        %s
  Archives:     %s
  Total Size:   %s
  Indexes:      %s (%d files)
  Packages:     %s (%d files)
  Partial:      %s (%d files)
  Quarantined:  %d files`,
		info.ListsDir,
		info.ArchivesDir,
		formatBytes(info.TotalSize),
		formatBytes(info.ListsSize),
		info.ListsFiles,
		formatBytes(info.ArchivesSize),
		info.ArchivesFiles,
		formatBytes(info.PartialSize),
		info.PartialFiles,
		info.FailedFiles,
	), nil
}

// Failed lists the quarantined files one per line.
func (op *Operation) Failed() (string, error) {
	files, err := op.manager.Failed()
	if err != nil {
		return "", fmt.Errorf("failed to list quarantined files: %w", err)
	}
	if len(files) == 0 {
		return "No quarantined files.", nil
	}
	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", f.ModTime.Format(time.RFC3339), formatBytes(f.Size), f.Path)
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// Directories returns the cache directories.
func (op *Operation) Directories() []string {
	return op.manager.Directories()
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
