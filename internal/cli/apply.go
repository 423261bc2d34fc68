package cli

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tansive/conductor/internal/config"
	"github.com/tansive/conductor/internal/ensemble"
	"github.com/tansive/conductor/internal/ensemble/localfs"
	"github.com/tansive/conductor/internal/ensemble/metrics"
	"github.com/tansive/conductor/internal/ensemble/store"
	"github.com/tansive/conductor/internal/score"
)

type applyResult struct {
	Edits     []editJSON `json:"edits"`
	Actions   []string   `json:"actions"`
	Committed bool       `json:"committed"`
}

func newApplyCmd(opts *rootOptions) *cobra.Command {
	var commit bool
	cmd := &cobra.Command{
		Use:   "apply <dir>",
		Short: "Reconcile the persisted catalog with a score directory",
		Long: `Compile a score directory, diff it against the persisted catalog and
print the edits and the table actions they imply. With --commit the
actions are executed and the new catalog is persisted.

Examples:
  # Show what would change
  conductor apply ./score

  # Apply the changes
  conductor apply ./score --commit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, opts, args[0], commit)
		},
	}
	cmd.Flags().BoolVarP(&commit, "commit", "", false, "Execute the actions and persist the catalog")
	return cmd
}

func runApply(cmd *cobra.Command, opts *rootOptions, dir string, commit bool) error {
	ctx := cmd.Context()
	to, err := score.Load(dir)
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(ctx, opts.cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	collector := metrics.New()
	storage := localfs.New(opts.cfg.StorageRoot())
	session, edits, err := ensemble.Plan(ctx, storage, st, to, ensemble.Options{Recorder: collector})
	if err != nil {
		return err
	}

	if commit {
		err = session.Commit(ctx)
		if opts.cfg.MetricsTextfile != "" {
			if werr := collector.WriteTextfile(opts.cfg.MetricsTextfile); werr != nil {
				log.Ctx(ctx).Warn().Err(werr).Str("path", opts.cfg.MetricsTextfile).Msg("unable to write metrics")
			}
		}
		if err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	if opts.jsonOutput {
		res := applyResult{Edits: make([]editJSON, len(edits)), Actions: []string{}, Committed: commit}
		for i, e := range edits {
			res.Edits[i] = editJSON{Kind: e.Kind(), Namespace: e.NamespaceName(), Edit: e.String()}
		}
		for _, a := range session.Pending() {
			res.Actions = append(res.Actions, a.String())
		}
		return printJSON(w, res)
	}

	if err := printEdits(w, edits, false); err != nil {
		return err
	}
	if len(edits) == 0 {
		return nil
	}
	if commit {
		printSummary(w, "Committed %d edits and %d table actions.\n", len(edits), len(session.Pending()))
	} else {
		printSummary(w, "Dry run: %d edits and %d table actions not applied. Use --commit to apply.\n", len(edits), len(session.Pending()))
	}
	return nil
}

// openStore opens the catalog store selected by cfg.
func openStore(ctx context.Context, cfg *config.Config) (ensemble.CatalogStore, func() error, error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres, config.BackendSQLite:
		dialect := store.DialectPostgres
		if cfg.Store.Backend == config.BackendSQLite {
			dialect = store.DialectSQLite
		}
		s, err := store.OpenSQLStore(ctx, dialect, cfg.Store.DSN, cfg.Store.Compress)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return store.NewFileStore(cfg.DataPath, cfg.Store.Compress), func() error { return nil }, nil
}
