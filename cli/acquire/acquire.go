package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/glorpus-work/acquire/internal/cli"
	"github.com/spf13/cobra"
)

var (
	configPath string
	envFile    string
	verbose    bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	var logFile io.Closer

	cmd := &cobra.Command{
		Use:   "acquire",
		Short: "Inspect and maintain an APT style acquisition cache",
		Long: `acquire manages the state an APT style acquisition pipeline leaves behind:
- config: the YAML configuration of the fetchers
- hooks: Tengo scripts run on acquisition events
- cache: lists and archives directories, partial and quarantined files
- pdiff, release, headers: inspect index updates and Release files`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			closer, err := cli.Setup()
			if err != nil {
				return err
			}
			logFile = closer
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if logFile != nil {
				_ = logFile.Close()
			}
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: $ACQUIRE_CONFIG or the user config dir)")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file loaded before the configuration")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Set up CLI pkg variables
	cli.ConfigPath = &configPath
	cli.EnvFile = &envFile
	cli.Verbose = &verbose

	cmd.AddCommand(
		cli.NewConfigCmd(),
		cli.NewCacheCmd(),
		cli.NewHooksCmd(),
		cli.NewPdiffCmd(),
		cli.NewReleaseCmd(),
		cli.NewHeadersCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
