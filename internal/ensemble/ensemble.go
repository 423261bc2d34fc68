// Package ensemble stages catalog edits together with the physical table
// actions they imply and commits both: actions first, then the catalog
// snapshot.
package ensemble

import (
	"context"
	"fmt"

	"github.com/tansive/conductor/internal/catalog"
	"github.com/tansive/conductor/internal/common/apperrors"
)

var ErrEnsemble = apperrors.New("ensemble error")

var (
	ErrCommit           = ErrEnsemble.New("unable to commit session").SetExitCode(apperrors.ExitCodeStorage)
	ErrSessionCommitted = ErrEnsemble.New("session already committed").SetExitCode(apperrors.ExitCodeState)
	ErrStage            = ErrEnsemble.New("unable to stage edit").SetExitCode(apperrors.ExitCodeState)
)

// TableRef locates a physical table. Storage is keyed by namespace and id;
// Name is carried for messages only.
type TableRef struct {
	Namespace string
	ID        catalog.TableID
	Name      string
}

func RefOf(t *catalog.Table) TableRef {
	return TableRef{Namespace: t.Namespace, ID: t.ID, Name: t.Name}
}

func (r TableRef) String() string {
	return fmt.Sprintf("%s.%s (%s)", r.Namespace, r.Name, r.ID)
}

// TableStorage is the physical side of the catalog.
type TableStorage interface {
	CreateTable(ctx context.Context, def *catalog.Table) error
	DropTable(ctx context.Context, ref TableRef) error
	// OpenTable returns a writer holding the table's single-writer lock
	// until Close.
	OpenTable(ctx context.Context, ref TableRef) (TableWriter, error)
}

type TableWriter interface {
	UpdateSchema(ctx context.Context, def *catalog.Table) error
	Close() error
}

// CatalogStore persists catalog snapshots. Load returns an empty catalog
// when nothing has been saved yet.
type CatalogStore interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
	Save(ctx context.Context, c *catalog.Catalog) error
}

// Recorder receives session events. metrics.Collector implements it.
type Recorder interface {
	EditStaged(kind catalog.EditKind)
	ActionExecuted(kind ActionKind)
	CommitFailed()
	Committed()
}

type nopRecorder struct{}

func (nopRecorder) EditStaged(catalog.EditKind) {}
func (nopRecorder) ActionExecuted(ActionKind)   {}
func (nopRecorder) CommitFailed()               {}
func (nopRecorder) Committed()                  {}

// CommitError reports the action that stopped a commit. Actions before
// Index were executed and are not rolled back.
type CommitError struct {
	Index  int
	Action Action
	Err    error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("%s: action %d (%s) failed: %v", ErrCommit.Error(), e.Index, e.Action, e.Err)
}

func (e *CommitError) Unwrap() []error {
	return []error{ErrCommit, e.Err}
}

func (e *CommitError) ExitCode() int {
	return ErrCommit.ExitCode()
}
