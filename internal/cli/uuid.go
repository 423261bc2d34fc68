package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tansive/conductor/internal/catalog"
)

func newUUIDCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "uuid",
		Short: "Print a fresh table uuid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := catalog.NewTableID()
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]string{"uuid": id.String()})
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), id.String())
			return err
		},
	}
}
