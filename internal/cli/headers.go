package cli

import (
	"fmt"

	"github.com/glorpus-work/acquire/pkg/acquire"
	"github.com/spf13/cobra"
)

// NewHeadersCmd creates the headers command.
func NewHeadersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "headers FILE",
		Short: "Show the conditional fetch headers for a local index file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), acquire.IndexFileHeaders(args[0]))
			return err
		},
	}
}
