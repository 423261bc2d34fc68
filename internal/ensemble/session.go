package ensemble

import (
	"context"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog/log"

	"github.com/tansive/conductor/internal/catalog"
)

type Options struct {
	Recorder Recorder
}

// Session applies edits to a working copy of a catalog and queues their
// physical actions. Nothing reaches storage until Commit. A Session is not
// safe for concurrent use.
type Session struct {
	id        string
	working   *catalog.Catalog
	storage   TableStorage
	store     CatalogStore
	recorder  Recorder
	pending   []Action
	staged    int
	committed bool
}

func NewSession(base *catalog.Catalog, storage TableStorage, store CatalogStore, opts Options) *Session {
	if base == nil {
		base = catalog.New()
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	id, err := gonanoid.New(12)
	if err != nil {
		id = "session"
	}
	return &Session{
		id:       id,
		working:  base.Clone(),
		storage:  storage,
		store:    store,
		recorder: recorder,
	}
}

func (s *Session) ID() string {
	return s.id
}

// Stage applies edit to the working catalog and queues the physical
// action it implies. A failed edit leaves the session unchanged.
func (s *Session) Stage(ctx context.Context, edit catalog.Edit) error {
	if s.committed {
		return ErrSessionCommitted
	}
	next, err := catalog.Apply(s.working, edit)
	if err != nil {
		return err
	}
	s.working = next
	if a, ok := actionFor(next, edit); ok {
		s.pending = enqueue(s.pending, a)
	}
	s.staged++
	s.recorder.EditStaged(edit.Kind())
	log.Ctx(ctx).Debug().Str("session", s.id).Str("edit", edit.String()).Msg("staged edit")
	return nil
}

// StageAll stages edits in order and stops at the first failure.
func (s *Session) StageAll(ctx context.Context, edits []catalog.Edit) error {
	for i, edit := range edits {
		if err := s.Stage(ctx, edit); err != nil {
			return ErrStage.MsgErr(fmt.Sprintf("unable to stage edit %d: %s", i, edit), err)
		}
	}
	return nil
}

// Pending returns a copy of the queued physical actions.
func (s *Session) Pending() []Action {
	return append([]Action(nil), s.pending...)
}

// Catalog returns the working snapshot. Callers must not modify it.
func (s *Session) Catalog() *catalog.Catalog {
	return s.working
}

// Staged reports how many edits were staged.
func (s *Session) Staged() int {
	return s.staged
}

// Commit validates the working catalog, runs the queued actions in order
// and saves the catalog only when all of them succeed. After a failed
// action the store still holds the previous snapshot while the actions
// already run stay in effect. A session commits at most once.
func (s *Session) Commit(ctx context.Context) error {
	if s.committed {
		return ErrSessionCommitted
	}
	if err := s.working.Validate(); err != nil {
		s.recorder.CommitFailed()
		return ErrCommit.MsgErr("working catalog is invalid", err)
	}
	s.committed = true

	logger := log.Ctx(ctx).With().Str("session", s.id).Logger()
	for i, a := range s.pending {
		if err := ctx.Err(); err != nil {
			s.recorder.CommitFailed()
			return &CommitError{Index: i, Action: a, Err: err}
		}
		if err := a.execute(ctx, s.storage); err != nil {
			s.recorder.CommitFailed()
			logger.Error().Err(err).Int("index", i).Str("action", a.String()).Msg("commit failed")
			return &CommitError{Index: i, Action: a, Err: err}
		}
		s.recorder.ActionExecuted(a.Kind)
	}

	if err := s.store.Save(ctx, s.working); err != nil {
		s.recorder.CommitFailed()
		logger.Error().Err(err).Msg("unable to save catalog")
		return ErrCommit.MsgErr("unable to save catalog", err)
	}
	s.recorder.Committed()
	logger.Info().Int("edits", s.staged).Int("actions", len(s.pending)).Msg("committed session")
	return nil
}
