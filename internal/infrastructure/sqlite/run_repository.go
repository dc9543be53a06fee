package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/zjrosen/lineage/internal/history/domain"
	"github.com/zjrosen/lineage/internal/log"
)

// runRepository implements domain.RunRepository using SQLite.
type runRepository struct {
	db *sql.DB
}

func newRunRepository(db *sql.DB) *runRepository {
	return &runRepository{db: db}
}

// Ensure runRepository implements domain.RunRepository.
var _ domain.RunRepository = (*runRepository)(nil)

const runColumns = `id, guid, repo_dir, start_hash, source, commit_count, created_at`

// Save inserts the run and all of its steps in one transaction and sets
// run.ID.
func (r *runRepository) Save(run *domain.Run) (retErr error) {
	if run.ID != 0 {
		return fmt.Errorf("run %s is already saved", run.GUID)
	}
	model := toRunModel(run)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.Exec(
		`INSERT INTO walk_runs (guid, repo_dir, start_hash, source, commit_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		model.GUID, model.RepoDir, model.StartHash, model.Source, model.CommitCount, model.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO walk_steps (run_id, position, hash, author_time, committer_time, replayed, out_of_order, subject)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare step insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, step := range run.Steps {
		m := toStepModel(id, step)
		if _, err := stmt.Exec(m.RunID, m.Position, m.Hash, m.AuthorTime, m.CommitterTime, m.Replayed, m.OutOfOrder, m.Subject); err != nil {
			return fmt.Errorf("failed to insert step %d: %w", step.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	run.ID = id
	log.Debug(log.CatDB, "Saved run", "guid", run.GUID, "id", id, "steps", len(run.Steps))
	return nil
}

// FindByGUID returns the run and its steps in walk order.
// Returns RunNotFoundError if no run matches.
func (r *runRepository) FindByGUID(guid string) (*domain.Run, error) {
	var model RunModel
	err := r.db.QueryRow(
		`SELECT `+runColumns+` FROM walk_runs WHERE guid = ?`, guid,
	).Scan(&model.ID, &model.GUID, &model.RepoDir, &model.StartHash, &model.Source, &model.CommitCount, &model.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.RunNotFoundError{GUID: guid}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find run by guid: %w", err)
	}

	steps, err := r.steps(model.ID)
	if err != nil {
		return nil, err
	}
	return model.toDomain(steps), nil
}

func (r *runRepository) steps(runID int64) ([]StepModel, error) {
	rows, err := r.db.Query(
		`SELECT run_id, position, hash, author_time, committer_time, replayed, out_of_order, subject
		 FROM walk_steps
		 WHERE run_id = ?
		 ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var steps []StepModel
	for rows.Next() {
		var m StepModel
		if err := rows.Scan(&m.RunID, &m.Position, &m.Hash, &m.AuthorTime, &m.CommitterTime, &m.Replayed, &m.OutOfOrder, &m.Subject); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate steps: %w", err)
	}
	return steps, nil
}

// List returns runs newest first, without steps.
func (r *runRepository) List(repoDir string, limit int) ([]*domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM walk_runs`
	var args []any
	if repoDir != "" {
		query += ` WHERE repo_dir = ?`
		args = append(args, repoDir)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := []*domain.Run{}
	for rows.Next() {
		var m RunModel
		if err := rows.Scan(&m.ID, &m.GUID, &m.RepoDir, &m.StartHash, &m.Source, &m.CommitCount, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, m.toDomain(nil))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// Delete removes a run; its steps go with it.
// Returns RunNotFoundError if no run matches.
func (r *runRepository) Delete(guid string) error {
	result, err := r.db.Exec(`DELETE FROM walk_runs WHERE guid = ?`, guid)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.RunNotFoundError{GUID: guid}
	}
	log.Debug(log.CatDB, "Deleted run", "guid", guid)
	return nil
}
