package migrations

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/require"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err, "ncruces driver should open :memory: database")
	// Every pooled connection would get its own in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var exists bool
	err := db.QueryRow(`SELECT COUNT(*) > 0 FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func TestRunMigrations_FreshDB(t *testing.T) {
	db := openMemory(t)

	require.NoError(t, RunMigrations(db))
	require.True(t, tableExists(t, db, "walk_runs"))
	require.True(t, tableExists(t, db, "walk_steps"))
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := openMemory(t)

	require.NoError(t, RunMigrations(db), "first migration run should succeed")
	require.NoError(t, RunMigrations(db), "second migration run should not error")
	require.True(t, tableExists(t, db, "walk_runs"))
}

func TestMigrations_Schema(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, RunMigrations(db))

	tests := []struct {
		table   string
		columns []string
		indexes []string
	}{
		{
			table:   "walk_runs",
			columns: []string{"id", "guid", "repo_dir", "start_hash", "source", "commit_count", "created_at"},
			indexes: []string{"idx_walk_runs_repo_created"},
		},
		{
			table:   "walk_steps",
			columns: []string{"run_id", "position", "hash", "author_time", "committer_time", "replayed", "out_of_order", "subject"},
			indexes: []string{"idx_walk_steps_hash"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, tt.table)
			require.NoError(t, err)
			columns := make(map[string]bool)
			for rows.Next() {
				var name string
				require.NoError(t, rows.Scan(&name))
				columns[name] = true
			}
			require.NoError(t, rows.Err())
			require.NoError(t, rows.Close())
			for _, col := range tt.columns {
				require.True(t, columns[col], "column %s should exist", col)
			}

			indexRows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?`, tt.table)
			require.NoError(t, err)
			indexes := make(map[string]bool)
			for indexRows.Next() {
				var name string
				require.NoError(t, indexRows.Scan(&name))
				indexes[name] = true
			}
			require.NoError(t, indexRows.Err())
			require.NoError(t, indexRows.Close())
			for _, idx := range tt.indexes {
				require.True(t, indexes[idx], "index %s should exist", idx)
			}
		})
	}
}

func TestMigrations_Down(t *testing.T) {
	db := openMemory(t)

	m, err := NewMigrate(db)
	require.NoError(t, err)
	require.NoError(t, m.Up(), "migrations should apply")
	require.True(t, tableExists(t, db, "walk_steps"))

	require.NoError(t, m.Down(), "down migrations should succeed")
	require.False(t, tableExists(t, db, "walk_runs"))
	require.False(t, tableExists(t, db, "walk_steps"))

	var indexCount int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND tbl_name IN ('walk_runs', 'walk_steps')`).Scan(&indexCount)
	require.NoError(t, err)
	require.Zero(t, indexCount, "all indexes should be dropped")
}

func TestMigrate_SecondInstanceReportsNoChange(t *testing.T) {
	db := openMemory(t)

	m1, err := NewMigrate(db)
	require.NoError(t, err)
	require.NoError(t, m1.Up())

	m2, err := NewMigrate(db)
	require.NoError(t, err)
	err = m2.Up()
	require.True(t, errors.Is(err, migrate.ErrNoChange), "got: %v", err)

	version, dirty, err := m2.Version()
	require.NoError(t, err)
	require.Equal(t, uint(1), version)
	require.False(t, dirty)
}

func TestMigrationsFS_Embedded(t *testing.T) {
	entries, err := embeddedMigrationsFS.ReadDir(".")
	require.NoError(t, err)

	fileNames := make(map[string]bool)
	for _, entry := range entries {
		fileNames[entry.Name()] = true
	}
	require.True(t, fileNames["000001_create_walk_runs.up.sql"])
	require.True(t, fileNames["000001_create_walk_runs.down.sql"])

	up, err := embeddedMigrationsFS.ReadFile("000001_create_walk_runs.up.sql")
	require.NoError(t, err)
	require.Contains(t, string(up), "CREATE TABLE walk_runs")
}

func TestWithInstance_NilConfig(t *testing.T) {
	_, err := WithInstance(openMemory(t), nil)
	require.ErrorIs(t, err, ErrNilConfig)
}

func TestDriver_Drop(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, RunMigrations(db))

	driver, err := WithInstance(db, &Config{MigrationsTable: "other_migrations"})
	require.NoError(t, err)
	require.NoError(t, driver.Drop())

	require.False(t, tableExists(t, db, "walk_runs"))
	require.False(t, tableExists(t, db, "schema_migrations"))
}

func TestInsertAndQueryWithMigration(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, RunMigrations(db))

	_, err := db.Exec(`PRAGMA foreign_keys=ON`)
	require.NoError(t, err)

	result, err := db.Exec(`
		INSERT INTO walk_runs (guid, repo_dir, start_hash, source, commit_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, "guid-1", "/repo", "abc", "cli", 3, 1706000000)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO walk_steps (run_id, position, hash, author_time, committer_time) VALUES (?, 0, 'abc', 1, 1)`, id)
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO walk_runs (guid, repo_dir, start_hash, source, commit_count, created_at)
		VALUES ('guid-2', '/repo', 'abc', 'svn', 0, 0)
	`)
	require.Error(t, err, "CHECK constraint should reject unknown source")

	_, err = db.Exec(`INSERT INTO walk_steps (run_id, position, hash, author_time, committer_time) VALUES (999, 0, 'abc', 1, 1)`)
	require.Error(t, err, "foreign key should reject unknown run")

	_, err = db.Exec(`DELETE FROM walk_runs WHERE id = ?`, id)
	require.NoError(t, err)
	var steps int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM walk_steps`).Scan(&steps))
	require.Zero(t, steps, "steps should cascade")
}
