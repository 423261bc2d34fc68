package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	jsonitor "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tansive/conductor/internal/common/apperrors"
	"github.com/tansive/conductor/internal/common/logtrace"
	"github.com/tansive/conductor/internal/config"
)

var json = jsonitor.ConfigCompatibleWithStandardLibrary

// Version is set at build time.
var Version = "v0.1.0"

type rootOptions struct {
	configFile string
	jsonOutput bool
	logLevel   string

	cfg *config.Config
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := NewRootCmd()
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	jsonOutput, _ := cmd.PersistentFlags().GetBool("json")
	if jsonOutput {
		printJSON(os.Stdout, map[string]any{
			"error":     errorMessage(err),
			"exit_code": ExitCode(err),
		})
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", errorMessage(err))
	}
	return ExitCode(err)
}

func (o *rootOptions) preRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}
	o.cfg = cfg

	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	logtrace.InitLogger(level)
	cmd.SetContext(log.Logger.WithContext(cmd.Context()))
	return nil
}

// ExitCode maps err to the process exit code of its error family.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return apperrors.ExitCodeGeneric
}

// errorMessage renders err with the causes its message does not already
// include.
func errorMessage(err error) string {
	msg := err.Error()
	appErr, ok := err.(apperrors.Error)
	if !ok {
		return msg
	}
	for _, cause := range appErr.Unwrap() {
		if cause == nil || strings.Contains(msg, cause.Error()) {
			continue
		}
		msg += ": " + cause.Error()
	}
	return msg
}

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of conductor",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if opts.jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]string{"version": Version})
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), "conductor "+Version)
		},
	}
}

// printJSON prints data as indented JSON to w.
func printJSON(w io.Writer, data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}
