package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/tansive/conductor/internal/catalog"
)

// RecordName is the file name, and the SQL key, of the persisted catalog.
const RecordName = "_conductor_catalog.json"

// FileStore keeps the catalog record in a single file inside a directory.
type FileStore struct {
	dir      string
	compress bool
}

func NewFileStore(dir string, compress bool) *FileStore {
	return &FileStore{dir: dir, compress: compress}
}

func (s *FileStore) Path() string {
	return filepath.Join(s.dir, RecordName)
}

func (s *FileStore) Load(ctx context.Context) (*catalog.Catalog, error) {
	b, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		log.Ctx(ctx).Debug().Str("path", s.Path()).Msg("no persisted catalog")
		return catalog.New(), nil
	}
	if err != nil {
		return nil, ErrStore.MsgErr("unable to read catalog record", err)
	}
	return Decode(b)
}

// Save writes the record to a temporary file and renames it over the
// previous one.
func (s *FileStore) Save(ctx context.Context, c *catalog.Catalog) error {
	b, err := Encode(c, s.compress)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return ErrStore.MsgErr("unable to create catalog directory", err)
	}
	tmp, err := os.CreateTemp(s.dir, RecordName+".*")
	if err != nil {
		return ErrStore.MsgErr("unable to create catalog record", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return ErrStore.MsgErr("unable to write catalog record", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return ErrStore.MsgErr("unable to write catalog record", err)
	}
	if err := tmp.Close(); err != nil {
		return ErrStore.MsgErr("unable to write catalog record", err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return ErrStore.MsgErr("unable to replace catalog record", err)
	}
	log.Ctx(ctx).Debug().Str("path", s.Path()).Int("bytes", len(b)).Msg("saved catalog")
	return nil
}
