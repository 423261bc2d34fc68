package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/tansive/conductor/internal/common/apperrors"
	"github.com/tansive/conductor/internal/score"
)

var ErrUsage = apperrors.New("invalid usage").SetExitCode(apperrors.ExitCodeInput)

func newCompileCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "compile <dir>",
		Short: "Compile a score directory and print the catalog",
		Long: `Compile every file of a score directory into a catalog and print it.

Examples:
  # Print the catalog as formatted score text
  conductor compile ./score

  # Print the catalog as YAML
  conductor compile ./score -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.jsonOutput {
				output = "json"
			}
			c, err := score.Load(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch output {
			case "text":
				for i, ns := range c.SortedNamespaces() {
					if i > 0 {
						fmt.Fprintln(w)
					}
					fmt.Fprint(w, score.Format(ns))
				}
				return nil
			case "json":
				return printJSON(w, c)
			case "yaml":
				b, err := yaml.Marshal(c)
				if err != nil {
					return err
				}
				_, err = w.Write(b)
				return err
			}
			return ErrUsage.Msgf("unknown output format %q; use text, json or yaml", output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")
	return cmd
}
