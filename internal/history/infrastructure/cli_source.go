package infrastructure

import (
	"context"
	"strings"

	apphistory "github.com/zjrosen/lineage/internal/history/application"
	domain "github.com/zjrosen/lineage/internal/history/domain"
	"github.com/zjrosen/lineage/internal/log"
)

// Compile-time interface checks.
var (
	_ apphistory.CommitSource     = (*CLISource)(nil)
	_ apphistory.RevisionResolver = (*CLISource)(nil)
)

// CLIConfig configures a CLISource. Zero values fall back to defaults.
type CLIConfig struct {
	RepoDir   string
	Binary    string   // default "git"
	Scope     []string // rev-list scope flags, default ["--all"]
	Delimiter string   // default DefaultDelimiter
}

// CLISource loads commits by running `git rev-list` in the repository.
type CLISource struct {
	runner    apphistory.CommandRunner
	repoDir   string
	binary    string
	scope     []string
	delimiter string
}

// NewCLISource creates a CLISource that runs commands through runner.
func NewCLISource(runner apphistory.CommandRunner, cfg CLIConfig) *CLISource {
	s := &CLISource{
		runner:    runner,
		repoDir:   cfg.RepoDir,
		binary:    cfg.Binary,
		scope:     cfg.Scope,
		delimiter: cfg.Delimiter,
	}
	if s.binary == "" {
		s.binary = "git"
	}
	if len(s.scope) == 0 {
		s.scope = []string{"--all"}
	}
	if s.delimiter == "" {
		s.delimiter = DefaultDelimiter
	}
	return s
}

// RepoDir returns the directory commands run in.
func (s *CLISource) RepoDir() string { return s.repoDir }

// Kind returns domain.SourceCLI.
func (s *CLISource) Kind() domain.SourceKind { return domain.SourceCLI }

// LoadCommits runs rev-list over the configured scope and parses the result.
func (s *CLISource) LoadCommits(ctx context.Context) ([]domain.Commit, error) {
	out, err := s.runner.Run(ctx, s.repoDir, s.revListArgs())
	if err != nil {
		return nil, err
	}
	commits := ParseRevList(out, s.delimiter)
	log.Debug(log.CatGit, "Parsed rev-list output", "repo", s.repoDir, "commits", len(commits), "bytes", len(out))
	return commits, nil
}

func (s *CLISource) revListArgs() []string {
	argv := make([]string, 0, len(s.scope)+3)
	argv = append(argv, s.binary, "rev-list")
	argv = append(argv, s.scope...)
	return append(argv, "--format="+RevListFormat(s.delimiter))
}

// ResolveRevision resolves rev to the full hash of the commit it names.
func (s *CLISource) ResolveRevision(ctx context.Context, rev string) (string, error) {
	out, err := s.runner.Run(ctx, s.repoDir, []string{
		s.binary, "rev-parse", "--verify", "--quiet", "--end-of-options", rev + "^{commit}",
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
