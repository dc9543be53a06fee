// Package migrations holds the run store schema and applies it with
// golang-migrate.
//
// golang-migrate's own sqlite3 driver links mattn/go-sqlite3, which registers
// the same "sqlite3" driver name as ncruces/go-sqlite3. This package carries a
// small driver that works on any *sql.DB instead (see driver.go).
//
// Usage:
//
//	db, _ := sql.Open("sqlite3", "file:runs.db")
//	err := migrations.RunMigrations(db)
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/zjrosen/lineage/internal/log"
)

//go:embed *.sql
var embeddedMigrationsFS embed.FS

// MigrationsFS returns the embedded migration files.
func MigrationsFS() fs.FS {
	return embeddedMigrationsFS
}

// NewMigrate builds a migrate instance over db and the embedded files.
func NewMigrate(db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(embeddedMigrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	driver, err := WithInstance(db, &Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}
	return migrate.NewWithInstance("iofs", source, "sqlite3", driver)
}

// RunMigrations applies all pending migrations. An up-to-date schema is not
// an error.
func RunMigrations(db *sql.DB) error {
	m, err := NewMigrate(db)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug(log.CatDB, "Schema up to date")
			return nil
		}
		return err
	}

	if version, dirty, err := m.Version(); err == nil {
		log.Info(log.CatDB, "Applied migrations", "version", version, "dirty", dirty)
	}
	return nil
}
