package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/jackc/pgx/v4/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/tansive/conductor/internal/catalog"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

func (d Dialect) driver() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite3"
}

func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (d Dialect) blobType() string {
	if d == DialectPostgres {
		return "BYTEA"
	}
	return "BLOB"
}

func (d Dialect) timeType() string {
	if d == DialectPostgres {
		return "TIMESTAMPTZ"
	}
	return "TIMESTAMP"
}

// SQLStore keeps the catalog record in the conductor_catalog table, keyed
// by RecordName.
type SQLStore struct {
	db       *sql.DB
	dialect  Dialect
	compress bool
}

// OpenSQLStore connects to dsn, retrying the initial ping with backoff, and
// creates the catalog table when missing.
func OpenSQLStore(ctx context.Context, dialect Dialect, dsn string, compress bool) (*SQLStore, error) {
	if dialect != DialectPostgres && dialect != DialectSQLite {
		return nil, ErrStore.Msgf("unsupported sql dialect %q", dialect)
	}
	db, err := sql.Open(dialect.driver(), dsn)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to open db")
		return nil, ErrStore.MsgErr("unable to open catalog database", err)
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	err = retry.Do(
		func() error {
			return db.PingContext(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().Err(err).Uint("attempt", n+1).Msg("failed to ping db, retrying")
		}),
	)
	if err != nil {
		db.Close()
		return nil, ErrStore.MsgErr("unable to reach catalog database", err)
	}

	s := &SQLStore{db: db, dialect: dialect, compress: compress}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS conductor_catalog (
	key TEXT PRIMARY KEY,
	data %s NOT NULL,
	fingerprint TEXT NOT NULL,
	updated_at %s NOT NULL
)`, s.dialect.blobType(), s.dialect.timeType())
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return ErrStore.MsgErr("unable to create catalog table", err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context) (*catalog.Catalog, error) {
	query := "SELECT data FROM conductor_catalog WHERE key = " + s.dialect.placeholder(1)
	var data []byte
	err := s.db.QueryRowContext(ctx, query, RecordName).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		log.Ctx(ctx).Debug().Msg("no persisted catalog")
		return catalog.New(), nil
	}
	if err != nil {
		return nil, ErrStore.MsgErr("unable to read catalog record", err)
	}
	return Decode(data)
}

func (s *SQLStore) Save(ctx context.Context, c *catalog.Catalog) error {
	data, err := Encode(c, s.compress)
	if err != nil {
		return err
	}
	fp, err := Fingerprint(c)
	if err != nil {
		return ErrStore.MsgErr("unable to fingerprint catalog", err)
	}
	p := s.dialect.placeholder
	stmt := fmt.Sprintf(`INSERT INTO conductor_catalog (key, data, fingerprint, updated_at)
VALUES (%s, %s, %s, %s)
ON CONFLICT (key) DO UPDATE SET data = excluded.data, fingerprint = excluded.fingerprint, updated_at = excluded.updated_at`,
		p(1), p(2), p(3), p(4))
	if _, err := s.db.ExecContext(ctx, stmt, RecordName, data, fp, time.Now().UTC()); err != nil {
		return ErrStore.MsgErr("unable to write catalog record", err)
	}
	log.Ctx(ctx).Debug().Str("fingerprint", fp).Int("bytes", len(data)).Msg("saved catalog")
	return nil
}

// Fingerprint returns the fingerprint column of the stored record, or ""
// when nothing is stored.
func (s *SQLStore) Fingerprint(ctx context.Context) (string, error) {
	query := "SELECT fingerprint FROM conductor_catalog WHERE key = " + s.dialect.placeholder(1)
	var fp string
	err := s.db.QueryRowContext(ctx, query, RecordName).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", ErrStore.MsgErr("unable to read catalog fingerprint", err)
	}
	return fp, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
