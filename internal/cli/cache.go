package cli

import (
	"fmt"

	"github.com/glorpus-work/acquire/internal/logger"
	"github.com/glorpus-work/acquire/pkg/cache"
	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command with subcommands.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the index and archive cache",
		Long:  "Clean, show information about, and list quarantined files of the lists and archives directories",
	}

	cmd.AddCommand(
		newCacheCleanCmd(),
		newCacheInfoCmd(),
		newCacheFailedCmd(),
		newCacheDirCmd(),
	)

	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	var (
		all     bool
		partial bool
		failed  bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the cache",
		Long:  "Remove partial downloads and quarantined files, or everything with --all",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheClean(cmd, all, partial, failed)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Clean all cached files")
	cmd.Flags().BoolVar(&partial, "partial", false, "Clean only partial downloads")
	cmd.Flags().BoolVar(&failed, "failed", false, "Clean only files that failed verification")

	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Long:  "Display sizes and file counts of the cache directories",
		RunE:  runCacheInfo,
	}
}

func newCacheFailedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "failed",
		Short: "List quarantined files",
		Long:  "List downloads that failed verification and were renamed to .FAILED",
		RunE:  runCacheFailed,
	}
}

func newCacheDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dir",
		Short: "Show cache directory paths",
		Long:  "Display the lists and archives directories",
		RunE:  runCacheDir,
	}
}

func cacheOperation() (*cache.Operation, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	manager, err := cache.NewManager(cfg.Settings.ListsDir, cfg.Settings.ArchivesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache manager: %w", err)
	}
	return cache.NewOperation(manager), nil
}

func runCacheClean(cmd *cobra.Command, all, partial, failed bool) error {
	op, err := cacheOperation()
	if err != nil {
		return err
	}

	msg, err := op.Clean(all, partial, failed)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
	logger.Success("Cache cleaning completed")
	return nil
}

func runCacheInfo(cmd *cobra.Command, _ []string) error {
	op, err := cacheOperation()
	if err != nil {
		return err
	}

	info, err := op.GetInfo()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), info)
	return nil
}

func runCacheFailed(cmd *cobra.Command, _ []string) error {
	op, err := cacheOperation()
	if err != nil {
		return err
	}

	out, err := op.Failed()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runCacheDir(cmd *cobra.Command, _ []string) error {
	op, err := cacheOperation()
	if err != nil {
		return err
	}

	for _, dir := range op.Directories() {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), dir)
	}
	return nil
}
