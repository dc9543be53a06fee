package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	apphistory "github.com/zjrosen/lineage/internal/history/application"
	domain "github.com/zjrosen/lineage/internal/history/domain"
	"github.com/zjrosen/lineage/internal/log"
)

// Compile-time interface checks.
var (
	_ apphistory.CommitSource     = (*GoGitSource)(nil)
	_ apphistory.RevisionResolver = (*GoGitSource)(nil)
)

// GoGitSource reads commits from the object database without a git binary.
type GoGitSource struct {
	repo    *git.Repository
	repoDir string
}

// OpenGoGitSource opens the repository containing dir.
func OpenGoGitSource(dir string) (*GoGitSource, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotGitRepo, dir)
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return NewGoGitSource(repo, dir), nil
}

// NewGoGitSource wraps an already opened repository.
func NewGoGitSource(repo *git.Repository, repoDir string) *GoGitSource {
	return &GoGitSource{repo: repo, repoDir: repoDir}
}

// RepoDir returns the directory the repository was opened from.
func (s *GoGitSource) RepoDir() string { return s.repoDir }

// Kind returns domain.SourceGoGit.
func (s *GoGitSource) Kind() domain.SourceKind { return domain.SourceGoGit }

// LoadCommits returns every commit reachable from HEAD or any reference,
// newest committer date first.
func (s *GoGitSource) LoadCommits(ctx context.Context) ([]domain.Commit, error) {
	iter, err := s.repo.Log(&git.LogOptions{All: true})
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return []domain.Commit{}, nil
		}
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	defer iter.Close()

	commits := []domain.Commit{}
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		commits = append(commits, fromObject(c))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}

	// Reference iteration order is unspecified; match rev-list's default.
	sort.Slice(commits, func(i, j int) bool {
		ci, cj := commits[i].Committer.When, commits[j].Committer.When
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return commits[i].Hash < commits[j].Hash
	})

	log.Debug(log.CatGit, "Loaded commits with go-git", "repo", s.repoDir, "commits", len(commits))
	return commits, nil
}

// ResolveRevision resolves rev with go-git's revision parser.
func (s *GoGitSource) ResolveRevision(_ context.Context, rev string) (string, error) {
	hash, err := s.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", rev, err)
	}
	return hash.String(), nil
}

func fromObject(c *object.Commit) domain.Commit {
	parents := make([]string, len(c.ParentHashes))
	for i, p := range c.ParentHashes {
		parents[i] = p.String()
	}
	return domain.Commit{
		Hash:    c.Hash.String(),
		Parents: parents,
		Message: strings.TrimRightFunc(c.Message, unicode.IsSpace),
		Author: domain.Signature{
			Name:  c.Author.Name,
			Email: c.Author.Email,
			When:  c.Author.When.UTC(),
		},
		Committer: domain.Signature{
			Name:  c.Committer.Name,
			Email: c.Committer.Email,
			When:  c.Committer.When.UTC(),
		},
	}
}
