package ensemble

import (
	"context"

	"github.com/tansive/conductor/internal/catalog"
)

// Plan loads the persisted catalog from store, diffs it against to and
// stages the resulting edits on a new session.
func Plan(ctx context.Context, storage TableStorage, store CatalogStore, to *catalog.Catalog, opts Options) (*Session, []catalog.Edit, error) {
	from, err := store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	edits, err := catalog.Diff(from, to)
	if err != nil {
		return nil, nil, err
	}
	s := NewSession(from, storage, store, opts)
	if err := s.StageAll(ctx, edits); err != nil {
		return nil, nil, err
	}
	return s, edits, nil
}
