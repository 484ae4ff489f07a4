package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/glorpus-work/acquire/internal/logger"
	"github.com/glorpus-work/acquire/pkg/acquire"
	"github.com/glorpus-work/acquire/pkg/release"
	"github.com/spf13/cobra"
)

// NewReleaseCmd creates the release command.
func NewReleaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Inspect Release files",
	}

	cmd.AddCommand(newReleaseShowCmd())
	return cmd
}

func newReleaseShowCmd() *cobra.Command {
	var dist string

	cmd := &cobra.Command{
		Use:   "show RELEASE",
		Short: "Show the files listed in a Release file",
		Long: `Parse a Release file and list its entries. With --dist the declared
suite and codename are checked against the distribution of a source list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReleaseShow(cmd, args[0], dist)
		},
	}

	cmd.Flags().StringVar(&dist, "dist", "", "distribution as written in the source list")
	return cmd
}

func runReleaseShow(cmd *cobra.Command, path, dist string) error {
	parser := release.NewParser(dist)
	if err := parser.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Origin:   %s\n", parser.Origin)
	_, _ = fmt.Fprintf(out, "Label:    %s\n", parser.Label)
	_, _ = fmt.Fprintf(out, "Suite:    %s\n", parser.Suite)
	_, _ = fmt.Fprintf(out, "Codename: %s\n", parser.Codename)
	_, _ = fmt.Fprintf(out, "Date:     %s\n\n", parser.Date)

	tabWriter := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "FILE\tSIZE\tMD5")
	for _, e := range parser.Entries() {
		_, _ = fmt.Fprintf(tabWriter, "%s\t%d\t%s\n", e.MetaKey, e.Size, e.MD5Hash)
	}
	if err := tabWriter.Flush(); err != nil {
		return err
	}

	if dist == "" {
		return nil
	}
	transformed := acquire.ExpectedDistTransform(dist)
	if transformed != "" && !parser.CheckDist(transformed) {
		logger.Warn("Conflicting distribution", logger.Fields{
			"file":     path,
			"expected": transformed,
			"got":      parser.Dist(),
		})
		_, _ = fmt.Fprintf(out, "\nConflicting distribution: expected %s but got %s\n", transformed, parser.Dist())
		return nil
	}
	_, _ = fmt.Fprintf(out, "\nDistribution %s matches\n", dist)
	return nil
}
