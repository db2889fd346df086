package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

// ErrDirtySchema means a previous migration stopped halfway and the
// database needs manual repair before the ledger can use it.
var ErrDirtySchema = errors.New("schema is dirty")

// migrateSchema applies every pending migration to the database at path and
// returns the resulting schema version. migrate owns the connection it is
// handed and closes it, so the ledger's pool is never passed in.
func migrateSchema(path string) (uint, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, fmt.Errorf("open %s for migration: %w", path, err)
	}

	driver, err := sqlite.WithInstance(conn, &sqlite.Config{})
	if err != nil {
		conn.Close()
		return 0, fmt.Errorf("sqlite migration driver: %w", err)
	}
	src, err := iofs.New(schemaFS, "migrations")
	if err != nil {
		conn.Close()
		return 0, fmt.Errorf("embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		conn.Close()
		return 0, fmt.Errorf("migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read schema version: %w", err)
	case dirty:
		return version, fmt.Errorf("version %d: %w", version, ErrDirtySchema)
	}
	return version, nil
}
