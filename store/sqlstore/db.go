// Package sqlstore persists codes, token audit records and federated
// identities in SQLite or PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	apperrors "github.com/lmaotrigine/indieauth/internal/errors"
	"github.com/lmaotrigine/indieauth/store/sqlstore/migrations"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	// Register pgx driver
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB wraps the shared handle. Queries are written with ? placeholders and
// rebound for PostgreSQL.
type DB struct {
	db     *sql.DB
	driver string
}

// Open connects to the database named by driver and dsn. For SQLite dsn is
// a file path.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	var (
		sqlDB *sql.DB
		err   error
	)
	switch driver {
	case DriverSQLite:
		if strings.TrimSpace(dsn) == "" {
			return nil, errors.New("[sqlstore.Open] sqlite path is required")
		}
		sqlDB, err = sql.Open("sqlite", filepath.Clean(dsn)+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)")
	case DriverPostgres:
		sqlDB, err = sql.Open("pgx", dsn)
	default:
		return nil, errors.Errorf("[sqlstore.Open] unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[sqlstore.Open] failed to open %s database", driver)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrapf(err, "[sqlstore.Open] failed to ping %s database", driver)
	}
	return &DB{db: sqlDB, driver: driver}, nil
}

// Migrate applies the embedded migrations.
func (d *DB) Migrate(ctx context.Context) error {
	dialect := "sqlite3"
	if d.driver == DriverPostgres {
		dialect = "pgx"
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return errors.Wrap(err, "[DB.Migrate] failed to set goose dialect")
	}
	if err := goose.UpContext(ctx, d.db, "."); err != nil {
		return errors.Wrap(err, "[DB.Migrate] failed to apply migrations")
	}
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (d *DB) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// handleError maps driver errors onto the internal error sentinels.
func handleError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperrors.ErrConflict
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return apperrors.ErrConflict
		}
	}
	return apperrors.Wrapf(apperrors.ErrPersistence, "%s", err.Error())
}
