package database

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/JaimeStill/promptops/pkg/query"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
)

// NewMigrator builds a migrator reading scripts from the fsys directory
// named after the configured dialect ("postgres" or "sqlite").
func NewMigrator(cfg *Config, fsys fs.FS) (*migrate.Migrate, error) {
	return NewMigratorURL(cfg.Dialect(), cfg.URL(), fsys)
}

// NewMigratorURL builds a migrator for an explicit database URL
// (postgres://... or sqlite://path).
func NewMigratorURL(d query.Dialect, url string, fsys fs.FS) (*migrate.Migrate, error) {
	source, err := iofs.New(fsys, d.String())
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// Migrate applies all pending up migrations. No pending changes is not an error.
func Migrate(cfg *Config, fsys fs.FS) error {
	m, err := NewMigrator(cfg, fsys)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
