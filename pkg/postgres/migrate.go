package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // register postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // register file source driver
)

// SourceURL turns a plain directory into a file:// migration source. Values
// that already carry a scheme are returned unchanged.
func SourceURL(dir string) string {
	if strings.Contains(dir, "://") {
		return dir
	}
	return "file://" + dir
}

// RunMigrations applies all pending migrations from dir. No pending
// migrations is not an error.
func RunMigrations(dsn string, dir string) error {
	m, err := migrate.New(SourceURL(dir), dsn)
	if err != nil {
		return fmt.Errorf("postgres: create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: run migrations up: %w", err)
	}

	return nil
}

// SchemaVersion reports the applied migration version and whether the last
// migration left the schema dirty. ErrNilVersion from migrate means none has
// run and is reported as version 0.
func SchemaVersion(dsn string, dir string) (uint, bool, error) {
	m, err := migrate.New(SourceURL(dir), dsn)
	if err != nil {
		return 0, false, fmt.Errorf("postgres: create migrator: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("postgres: read schema version: %w", err)
	}
	return version, dirty, nil
}

// RunMigrationsDown rolls back all migrations.
func RunMigrationsDown(dsn string, dir string) error {
	m, err := migrate.New(SourceURL(dir), dsn)
	if err != nil {
		return fmt.Errorf("postgres: create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: run migrations down: %w", err)
	}

	return nil
}
