package domain

import "time"

// SourceKind names the loader that produced a run's commits.
type SourceKind string

const (
	// SourceCLI reads history by running the git binary.
	SourceCLI SourceKind = "cli"
	// SourceGoGit reads history in-process through go-git.
	SourceGoGit SourceKind = "gogit"
)

// Valid reports whether k is a known source kind.
func (k SourceKind) Valid() bool {
	return k == SourceCLI || k == SourceGoGit
}

// Run is a walk recorded for later inspection.
type Run struct {
	ID          int64 // Database ID, zero until saved
	GUID        string
	RepoDir     string
	StartHash   string
	Source      SourceKind
	CommitCount int // Commits loaded when the walk ran
	CreatedAt   time.Time
	Steps       []RunStep
}

// RunStep is the stored form of a Step. The full message is not kept.
type RunStep struct {
	Position      int
	Hash          string
	AuthorTime    time.Time
	CommitterTime time.Time
	Replayed      bool
	OutOfOrder    bool
	Subject       string
}

// NewRunSteps converts walk steps to their stored form.
func NewRunSteps(steps []Step) []RunStep {
	out := make([]RunStep, len(steps))
	for i, s := range steps {
		out[i] = RunStep{
			Position:      s.Position,
			Hash:          s.Commit.Hash,
			AuthorTime:    s.Commit.Author.When,
			CommitterTime: s.Commit.Committer.When,
			Replayed:      s.Replayed,
			OutOfOrder:    s.OutOfOrder,
			Subject:       s.Commit.Subject(),
		}
	}
	return out
}

// RunRepository persists walk runs.
type RunRepository interface {
	// Save inserts a run and its steps, setting run.ID.
	Save(run *Run) error
	// FindByGUID returns the run with its steps.
	// Returns RunNotFoundError if no run matches.
	FindByGUID(guid string) (*Run, error)
	// List returns runs for repoDir, newest first, without steps.
	// An empty repoDir lists every repository. limit <= 0 means no limit.
	List(repoDir string, limit int) ([]*Run, error)
	// Delete removes a run and its steps.
	// Returns RunNotFoundError if no run matches.
	Delete(guid string) error
}
