package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Migrator applies the SQL migrations under migrations/ against the
// school database schema. It wraps golang-migrate with logging.
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New builds a Migrator on top of an open postgres connection.
func New(db *sql.DB, migrationsPath string, log *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &Migrator{m: m, log: log}, nil
}

// Up applies every pending migration.
func (mg *Migrator) Up() error {
	mg.log.Info("Applying pending schema migrations")

	if err := mg.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("Schema already up to date")
			return nil
		}
		return fmt.Errorf("migration up failed: %w", err)
	}

	version, dirty, err := mg.m.Version()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	mg.log.Info("Schema migrated", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// Down rolls every migration back.
func (mg *Migrator) Down() error {
	mg.log.Info("Rolling back all schema migrations")

	if err := mg.m.Down(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("Nothing to roll back")
			return nil
		}
		return fmt.Errorf("migration down failed: %w", err)
	}

	mg.log.Info("Schema rolled back to empty")
	return nil
}

// Steps applies n migrations forward, or rolls back -n when n is negative.
func (mg *Migrator) Steps(n int) error {
	mg.log.Info("Stepping schema migrations", zap.Int("steps", n))

	if err := mg.m.Steps(n); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("Schema already up to date")
			return nil
		}
		return fmt.Errorf("migration steps failed: %w", err)
	}

	version, dirty, err := mg.m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	mg.log.Info("Schema stepped", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// GoTo migrates up or down until the schema sits at the given version.
func (mg *Migrator) GoTo(version uint) error {
	mg.log.Info("Migrating schema to version", zap.Uint("target_version", version))

	if err := mg.m.Migrate(version); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("Schema already at target version")
			return nil
		}
		return fmt.Errorf("migration to version %d failed: %w", version, err)
	}

	mg.log.Info("Schema at target version", zap.Uint("version", version))
	return nil
}

// Version reports the current schema version. A fresh database with no
// applied migrations reports version 0 rather than an error.
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, nil
}

// Force overwrites the recorded schema version without running any SQL.
// Only for repairing a dirty version record after a failed migration.
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("Forcing schema version record", zap.Int("version", version))

	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}

	mg.log.Info("Schema version record forced", zap.Int("version", version))
	return nil
}

// Drop removes every object in the database, student and payment data
// included.
func (mg *Migrator) Drop() error {
	mg.log.Warn("Dropping all database objects")

	if err := mg.m.Drop(); err != nil {
		return fmt.Errorf("failed to drop database: %w", err)
	}

	mg.log.Info("Database dropped")
	return nil
}

// Close releases the migration source and database handles.
func (mg *Migrator) Close() error {
	sourceErr, dbErr := mg.m.Close()
	if sourceErr != nil {
		return fmt.Errorf("failed to close migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close migration database handle: %w", dbErr)
	}
	return nil
}
