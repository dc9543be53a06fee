// Package sqlite stores recorded walks in a local SQLite database.
// It owns the connection lifecycle, schema migrations and the
// domain.RunRepository implementation.
package sqlite

import (
	"database/sql"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	domain "github.com/zjrosen/lineage/internal/history/domain"
	"github.com/zjrosen/lineage/internal/infrastructure/migrations"
	"github.com/zjrosen/lineage/internal/log"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// connectionPragmas apply to every pooled connection.
var connectionPragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// DB manages the run store connection.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens the database at path, creating its directory if needed, and
// migrates it. An existing file is first copied to {path}.bak.
//
// Example:
//
//	db, err := sqlite.NewDB(filepath.Join(config.StateDir(), "runs.db"))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
func NewDB(path string) (*DB, error) {
	log.Debug(log.CatDB, "Opening database", "path", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		log.ErrorErr(log.CatDB, "Failed to create database directory", err, "path", dir)
		return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}

	if _, err := os.Stat(path); err == nil {
		backupPath := path + ".bak"
		if err := copyFile(path, backupPath); err != nil {
			log.ErrorErr(log.CatDB, "Failed to create pre-migration backup", err, "path", path, "backup", backupPath)
			return nil, fmt.Errorf("failed to create pre-migration backup: %w", err)
		}
		log.Debug(log.CatDB, "Created pre-migration backup", "backup", backupPath)
	}

	conn, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		log.ErrorErr(log.CatDB, "Failed to open database", err, "path", path)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		log.ErrorErr(log.CatDB, "Failed to ping database", err, "path", path)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// journal_mode is persistent, so once per file is enough.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		log.ErrorErr(log.CatDB, "Failed to enable WAL mode", err)
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := migrations.RunMigrations(conn); err != nil {
		_ = conn.Close()
		log.ErrorErr(log.CatDB, "Failed to run migrations", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info(log.CatDB, "Database initialized", "path", path)
	return &DB{conn: conn, path: path}, nil
}

func dsn(path string) string {
	q := url.Values{"_pragma": connectionPragmas}
	return "file:" + path + "?" + q.Encode()
}

// Close releases database resources.
func (db *DB) Close() error {
	if db.conn != nil {
		log.Debug(log.CatDB, "Closing database", "path", db.path)
		return db.conn.Close()
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// RunRepository returns a domain.RunRepository over this connection.
func (db *DB) RunRepository() domain.RunRepository {
	return newRunRepository(db.conn)
}

// Connection returns the underlying *sql.DB for testing purposes.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// copyFile copies src over dst, keeping src's permissions. A failed close of
// dst is reported so a truncated backup is never mistaken for a good one.
func copyFile(src, dst string) (retErr error) {
	in, err := os.Open(src) //nolint:gosec // G304: src is the configured database path
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := in.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("failed to close source file: %w", closeErr)
		}
	}()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, info.Mode()) //nolint:gosec // G304: dst is derived from the database path
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("failed to close backup file: %w", closeErr)
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
