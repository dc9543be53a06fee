package application

import (
	"context"

	domain "github.com/zjrosen/lineage/internal/history/domain"
)

// CommandRunner runs argv in dir and returns its decoded stdout.
// This abstraction allows loaders to be tested without a git binary.
type CommandRunner interface {
	// Run blocks until the command exits. A non-zero exit is returned as a
	// *domain.CommandError; an expired context as domain.ErrCommandTimeout.
	Run(ctx context.Context, dir string, argv []string) (string, error)
}

// CommitSource loads the full commit list of one repository.
type CommitSource interface {
	// LoadCommits returns every commit in scope, newest first as git lists
	// them. Returns an empty slice for empty repositories.
	LoadCommits(ctx context.Context) ([]domain.Commit, error)
	// RepoDir returns the repository working directory.
	RepoDir() string
	// Kind names the loader implementation.
	Kind() domain.SourceKind
}

// RevisionResolver resolves ref names and revision expressions
// (e.g. "HEAD", "main", "v1.2.0", "HEAD~2") to full hashes.
type RevisionResolver interface {
	ResolveRevision(ctx context.Context, rev string) (string, error)
}

// Invalidator drops any history cached for the repository.
type Invalidator interface {
	Invalidate()
}
