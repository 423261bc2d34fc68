// Package localfs is a TableStorage backed by directories on the local
// file system. Each table lives at <root>/<namespace>/<uuid>/ with its
// schema in _table.json.
package localfs

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	jsonitor "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/tansive/conductor/internal/catalog"
	"github.com/tansive/conductor/internal/common/apperrors"
	"github.com/tansive/conductor/internal/ensemble"
)

var json = jsonitor.ConfigCompatibleWithStandardLibrary

const SchemaFile = "_table.json"

var (
	ErrStorage       = apperrors.New("table storage error").SetExitCode(apperrors.ExitCodeStorage)
	ErrTableExists   = ErrStorage.New("table already exists")
	ErrTableNotFound = ErrStorage.New("table not found")
	ErrWriterClosed  = ErrStorage.New("table writer is closed")
)

// Storage implements ensemble.TableStorage. A table accepts one writer at a
// time; drops and opens wait for the current writer to close.
type Storage struct {
	root string

	mu    sync.Mutex
	locks map[string]chan struct{}
}

var _ ensemble.TableStorage = (*Storage)(nil)

func New(root string) *Storage {
	return &Storage{root: root, locks: make(map[string]chan struct{})}
}

func (s *Storage) Root() string {
	return s.root
}

// TableDir is the directory holding the table. Namespace names are path
// escaped.
func (s *Storage) TableDir(ref ensemble.TableRef) string {
	return filepath.Join(s.root, url.PathEscape(ref.Namespace), ref.ID.String())
}

func (s *Storage) lockFor(ref ensemble.TableRef) chan struct{} {
	key := ref.Namespace + "/" + ref.ID.String()
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[key] = l
	}
	return l
}

func (s *Storage) acquire(ctx context.Context, ref ensemble.TableRef) (func(), error) {
	l := s.lockFor(ref)
	select {
	case l <- struct{}{}:
		return func() { <-l }, nil
	case <-ctx.Done():
		return nil, ErrStorage.MsgErr("timed out waiting for table "+ref.String(), ctx.Err())
	}
}

func (s *Storage) CreateTable(ctx context.Context, def *catalog.Table) error {
	ref := ensemble.RefOf(def)
	release, err := s.acquire(ctx, ref)
	if err != nil {
		return err
	}
	defer release()

	dir := s.TableDir(ref)
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return ErrStorage.MsgErr("unable to create namespace directory", errors.Wrapf(err, "mkdir %s", filepath.Dir(dir)))
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		if os.IsExist(err) {
			return ErrTableExists.Msg("table " + ref.String() + " already exists")
		}
		return ErrStorage.MsgErr("unable to create table directory", errors.Wrapf(err, "mkdir %s", dir))
	}
	if err := writeSchema(dir, def); err != nil {
		os.RemoveAll(dir)
		return err
	}
	log.Ctx(ctx).Info().Str("table", ref.String()).Str("path", dir).Msg("created table")
	return nil
}

func (s *Storage) DropTable(ctx context.Context, ref ensemble.TableRef) error {
	release, err := s.acquire(ctx, ref)
	if err != nil {
		return err
	}
	defer release()

	dir := s.TableDir(ref)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return ErrTableNotFound.Msg("table " + ref.String() + " not found")
	}
	if err := os.RemoveAll(dir); err != nil {
		return ErrStorage.MsgErr("unable to drop table", errors.Wrapf(err, "remove %s", dir))
	}
	// The namespace directory goes once its last table is dropped.
	os.Remove(filepath.Dir(dir))
	log.Ctx(ctx).Info().Str("table", ref.String()).Msg("dropped table")
	return nil
}

// OpenTable returns a writer holding the table lock. It waits for the
// current writer, if any, until ctx is done.
func (s *Storage) OpenTable(ctx context.Context, ref ensemble.TableRef) (ensemble.TableWriter, error) {
	release, err := s.acquire(ctx, ref)
	if err != nil {
		return nil, err
	}
	dir := s.TableDir(ref)
	if _, err := os.Stat(filepath.Join(dir, SchemaFile)); err != nil {
		release()
		if os.IsNotExist(err) {
			return nil, ErrTableNotFound.Msg("table " + ref.String() + " not found")
		}
		return nil, ErrStorage.MsgErr("unable to open table", errors.Wrapf(err, "stat %s", dir))
	}
	return &writer{ref: ref, dir: dir, release: release}, nil
}

// ReadSchema returns the schema last written for the table.
func (s *Storage) ReadSchema(ref ensemble.TableRef) (*catalog.Table, error) {
	path := filepath.Join(s.TableDir(ref), SchemaFile)
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrTableNotFound.Msg("table " + ref.String() + " not found")
	}
	if err != nil {
		return nil, ErrStorage.MsgErr("unable to read table schema", errors.Wrapf(err, "read %s", path))
	}
	t := &catalog.Table{}
	if err := json.Unmarshal(b, t); err != nil {
		return nil, ErrStorage.MsgErr("unable to decode table schema", errors.Wrapf(err, "decode %s", path))
	}
	return t, nil
}

type writer struct {
	ref     ensemble.TableRef
	dir     string
	release func()
	closed  bool
}

func (w *writer) UpdateSchema(ctx context.Context, def *catalog.Table) error {
	if w.closed {
		return ErrWriterClosed
	}
	if err := writeSchema(w.dir, def); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("table", w.ref.String()).Msg("updated table schema")
	return nil
}

func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.release()
	return nil
}

func writeSchema(dir string, def *catalog.Table) error {
	b, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return ErrStorage.MsgErr("unable to encode table schema", errors.Wrap(err, "encode schema"))
	}
	path := filepath.Join(dir, SchemaFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return ErrStorage.MsgErr("unable to write table schema", errors.Wrapf(err, "write %s", tmp))
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return ErrStorage.MsgErr("unable to write table schema", errors.Wrapf(err, "rename %s", tmp))
	}
	return nil
}
