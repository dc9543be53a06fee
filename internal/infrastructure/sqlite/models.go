package sqlite

import (
	"time"

	domain "github.com/zjrosen/lineage/internal/history/domain"
)

// RunModel is a walk_runs row. Times are Unix seconds.
type RunModel struct {
	ID          int64
	GUID        string
	RepoDir     string
	StartHash   string
	Source      string
	CommitCount int64
	CreatedAt   int64
}

// StepModel is a walk_steps row.
type StepModel struct {
	RunID         int64
	Position      int64
	Hash          string
	AuthorTime    int64
	CommitterTime int64
	Replayed      bool
	OutOfOrder    bool
	Subject       string
}

func toRunModel(r *domain.Run) *RunModel {
	return &RunModel{
		ID:          r.ID,
		GUID:        r.GUID,
		RepoDir:     r.RepoDir,
		StartHash:   r.StartHash,
		Source:      string(r.Source),
		CommitCount: int64(r.CommitCount),
		CreatedAt:   r.CreatedAt.Unix(),
	}
}

func toStepModel(runID int64, s domain.RunStep) StepModel {
	return StepModel{
		RunID:         runID,
		Position:      int64(s.Position),
		Hash:          s.Hash,
		AuthorTime:    s.AuthorTime.Unix(),
		CommitterTime: s.CommitterTime.Unix(),
		Replayed:      s.Replayed,
		OutOfOrder:    s.OutOfOrder,
		Subject:       s.Subject,
	}
}

func (m *RunModel) toDomain(steps []StepModel) *domain.Run {
	run := &domain.Run{
		ID:          m.ID,
		GUID:        m.GUID,
		RepoDir:     m.RepoDir,
		StartHash:   m.StartHash,
		Source:      domain.SourceKind(m.Source),
		CommitCount: int(m.CommitCount),
		CreatedAt:   time.Unix(m.CreatedAt, 0),
	}
	if len(steps) > 0 {
		run.Steps = make([]domain.RunStep, len(steps))
		for i, s := range steps {
			run.Steps[i] = s.toDomain()
		}
	}
	return run
}

func (m StepModel) toDomain() domain.RunStep {
	return domain.RunStep{
		Position:      int(m.Position),
		Hash:          m.Hash,
		AuthorTime:    time.Unix(m.AuthorTime, 0).UTC(),
		CommitterTime: time.Unix(m.CommitterTime, 0).UTC(),
		Replayed:      m.Replayed,
		OutOfOrder:    m.OutOfOrder,
		Subject:       m.Subject,
	}
}
