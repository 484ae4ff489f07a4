package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/glorpus-work/acquire/pkg/acquire"
	"github.com/glorpus-work/acquire/pkg/errors"
	"github.com/spf13/cobra"
)

// NewPdiffCmd creates the pdiff command.
func NewPdiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdiff",
		Short: "Inspect incremental index updates",
	}

	cmd.AddCommand(newPdiffPlanCmd())
	return cmd
}

// Number of arguments expected by the plan command.
const planCommandArgs = 2

func newPdiffPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan DIFF-INDEX INDEX-FILE",
		Short: "Show the patches needed to update an index file",
		Long: `Read a pdiff Index file and a local index file and print the chain of
patches that brings the local file up to date.`,
		Args: cobra.ExactArgs(planCommandArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPdiffPlan(cmd, args[0], args[1])
		},
	}
}

func runPdiffPlan(cmd *cobra.Command, diffIndex, indexFile string) error {
	patches, found, err := acquire.ParseDiffIndex(diffIndex, indexFile)
	if err != nil {
		return fmt.Errorf("failed to read diff index: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: %s needs a full download", errors.ErrNoDiffMatch, indexFile)
	}

	out := cmd.OutOrStdout()
	if len(patches) == 0 {
		_, _ = fmt.Fprintf(out, "%s is up to date\n", indexFile)
		return nil
	}

	tabWriter := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "PATCH\tSIZE\tSHA1")
	for _, p := range patches {
		_, _ = fmt.Fprintf(tabWriter, "%s\t%d\t%s\n", p.File, p.Size, p.SHA1)
	}
	return tabWriter.Flush()
}
