package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the conductor command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "conductor",
		Short: "Conductor compiles score files and reconciles catalogs",
		Long: `Conductor compiles a directory of score files into a catalog of tables,
HTTP handlers and policies, computes the edits between two catalogs and
applies them to table storage.`,
		PersistentPreRunE: opts.preRun,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "", "", "Path to configuration file to override default")
	cmd.PersistentFlags().BoolVarP(&opts.jsonOutput, "json", "j", false, "Output in JSON format")
	cmd.PersistentFlags().StringVarP(&opts.logLevel, "log-level", "", "", "Log level (trace, debug, info, warn, error)")

	addCommands(cmd, opts)
	return cmd
}

func addCommands(cmd *cobra.Command, opts *rootOptions) {
	cmd.AddCommand(
		newCompileCmd(opts),
		newDiffCmd(opts),
		newApplyCmd(opts),
		newPoliciesCmd(opts),
		newUUIDCmd(opts),
		newVersionCmd(opts),
	)
}
