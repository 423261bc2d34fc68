package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tansive/conductor/internal/catalog"
	"github.com/tansive/conductor/internal/score"
)

// watchDebounce is how long the watcher waits for a burst of file events
// to settle before diffing again.
const watchDebounce = 200 * time.Millisecond

type editJSON struct {
	Kind      catalog.EditKind `json:"kind"`
	Namespace string           `json:"namespace"`
	Edit      string           `json:"edit"`
}

func newDiffCmd(opts *rootOptions) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "diff <dir-a> <dir-b>",
		Short: "Print the edits that turn the catalog of dir-a into the catalog of dir-b",
		Long: `Compile two score directories and print the edit script between them,
one edit per line.

Examples:
  conductor diff ./score-v1 ./score-v2

  # Print the diff again whenever a file in either directory changes
  conductor diff ./score-v1 ./score-v2 --watch`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			render := func() error {
				return diffDirs(cmd.OutOrStdout(), args[0], args[1], opts.jsonOutput)
			}
			if watch {
				return watchDirs(cmd.Context(), cmd.OutOrStdout(), args, render)
			}
			return render()
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Watch both directories and diff again on change")
	return cmd
}

func diffDirs(w io.Writer, a, b string, jsonOutput bool) error {
	from, err := score.Load(a)
	if err != nil {
		return err
	}
	to, err := score.Load(b)
	if err != nil {
		return err
	}
	edits, err := catalog.Diff(from, to)
	if err != nil {
		return err
	}
	return printEdits(w, edits, jsonOutput)
}

// watchDirs calls render once and again after every settled burst of
// changes in dirs, until ctx is done. Render errors are printed and do not
// stop the watch.
func watchDirs(ctx context.Context, w io.Writer, dirs []string, render func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return ErrUsage.MsgErr("unable to watch "+dir, err)
		}
	}

	run := func() {
		if err := render(); err != nil {
			fmt.Fprintf(w, "Error: %s\n", errorMessage(err))
		}
	}
	run()

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			log.Ctx(ctx).Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("score changed")
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Ctx(ctx).Warn().Err(err).Msg("watch error")
		case <-timer.C:
			fmt.Fprintln(w, "---")
			run()
		}
	}
}
