package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/aussiebroadwan/credauth/internal/auth/domain"
	"github.com/aussiebroadwan/credauth/internal/auth/store"
	"github.com/aussiebroadwan/credauth/internal/auth/store/drivers/sqlite/gen"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Store struct {
	db  *sql.DB
	q   *gen.Queries
	dsn string
}

// NewStore opens dsn with the modernc driver. File databases get WAL and a
// busy timeout unless the DSN already sets pragmas. In-memory databases are
// pinned to a single connection since each connection would otherwise see
// its own empty database.
func NewStore(dsn string) (*Store, error) {
	inMemory := isMemoryDSN(dsn)
	if !strings.Contains(dsn, "_pragma=") {
		dsn = withDefaultPragmas(dsn, inMemory)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if inMemory {
		db.SetMaxOpenConns(1)
	}

	return &Store{
		db:  db,
		q:   gen.New(db),
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Principals() store.Principals { return &principalsRepo{q: s.q} }

func isMemoryDSN(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") ||
		strings.Contains(dsn, "mode=memory") ||
		dsn == ""
}

func withDefaultPragmas(dsn string, inMemory bool) string {
	pragmas := "_pragma=busy_timeout(5000)"
	if !inMemory {
		pragmas += "&_pragma=journal_mode(WAL)"
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + pragmas
	}
	return dsn + "?" + pragmas
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapUniqueViolation turns a UNIQUE or PRIMARY KEY constraint failure into
// store.ErrAlreadyExists.
func mapUniqueViolation(err error) error {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return store.ErrAlreadyExists
		}
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func mapPrincipal(row gen.Principal) domain.Principal {
	return domain.Principal{
		ID:         row.ID,
		Username:   row.Username,
		SecretHash: row.SecretHash,
		CreatedAt:  row.CreatedAt.UTC(),
	}
}
