package infrastructure

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apphistory "github.com/zjrosen/lineage/internal/history/application"
	domain "github.com/zjrosen/lineage/internal/history/domain"
	"github.com/zjrosen/lineage/internal/mocks"
)

func TestCLISource_Defaults(t *testing.T) {
	s := NewCLISource(mocks.NewMockCommandRunner(t), CLIConfig{RepoDir: "/repo"})

	require.Equal(t, "/repo", s.RepoDir())
	require.Equal(t, domain.SourceCLI, s.Kind())
	require.Equal(t, []string{"git", "rev-list", "--all", "--format=" + RevListFormat(DefaultDelimiter)}, s.revListArgs())
}

func TestCLISource_LoadCommits(t *testing.T) {
	runner := mocks.NewMockCommandRunner(t)
	runner.EXPECT().
		Run(mock.Anything, "/repo", []string{"/usr/bin/git", "rev-list", "--remotes", "--format=" + RevListFormat("|")}).
		Return("commit aaaa\n\nA\na@x\n10\nC\nc@x\n20\nfirst\n|\n", nil).
		Once()

	s := NewCLISource(runner, CLIConfig{
		RepoDir:   "/repo",
		Binary:    "/usr/bin/git",
		Scope:     []string{"--remotes"},
		Delimiter: "|",
	})

	commits, err := s.LoadCommits(context.Background())
	require.NoError(t, err)
	require.Len(t, commits, 1)
	require.Equal(t, "aaaa", commits[0].Hash)
	require.Equal(t, "first", commits[0].Message)
}

func TestCLISource_LoadCommits_CommandError(t *testing.T) {
	cmdErr := &domain.CommandError{Args: []string{"rev-list"}, ExitCode: 128, Stderr: "fatal: not a git repository"}
	runner := mocks.NewMockCommandRunner(t)
	runner.EXPECT().Run(mock.Anything, "/nope", mock.Anything).Return("", cmdErr).Once()

	_, err := NewCLISource(runner, CLIConfig{RepoDir: "/nope"}).LoadCommits(context.Background())
	require.ErrorIs(t, err, cmdErr)
}

func TestCLISource_ResolveRevision(t *testing.T) {
	runner := mocks.NewMockCommandRunner(t)
	runner.EXPECT().
		Run(mock.Anything, "/repo", []string{"git", "rev-parse", "--verify", "--quiet", "--end-of-options", "main^{commit}"}).
		Return("0123456789abcdef\n", nil).
		Once()

	hash, err := NewCLISource(runner, CLIConfig{RepoDir: "/repo"}).ResolveRevision(context.Background(), "main")
	require.NoError(t, err)
	require.Equal(t, "0123456789abcdef", hash)
}

// initGitRepo creates an empty repository with an isolated git config and
// returns a runner for it plus a helper running git inside it. Skips the test
// when no git binary is installed.
func initGitRepo(t *testing.T) (*ExecRunner, string, func(args ...string)) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	dir := t.TempDir()
	runner := NewExecRunner(30 * time.Second)
	runner.Env = []string{
		"GIT_CONFIG_NOSYSTEM=1",
		"GIT_CONFIG_GLOBAL=" + filepath.Join(dir, "gitconfig"),
		"GIT_AUTHOR_NAME=Ada", "GIT_AUTHOR_EMAIL=ada@example.com",
		"GIT_COMMITTER_NAME=Ada", "GIT_COMMITTER_EMAIL=ada@example.com",
	}
	repo := filepath.Join(dir, "repo")
	_, err := runner.Run(context.Background(), dir, []string{"git", "init", "-q", repo})
	require.NoError(t, err)

	git := func(args ...string) {
		t.Helper()
		_, err := runner.Run(context.Background(), repo, append([]string{"git"}, args...))
		require.NoError(t, err)
	}
	return runner, repo, git
}

// TestCLISource_Git runs a real git binary over a history where a commit was
// re-applied onto another branch.
func TestCLISource_Git(t *testing.T) {
	runner, repo, git := initGitRepo(t)
	ctx := context.Background()

	git("checkout", "-q", "-b", "alpha")
	git("commit", "-q", "--allow-empty", "--date", "3 minutes ago", "-m", "Commit #1")
	git("checkout", "-q", "-b", "beta")
	git("commit", "-q", "--allow-empty", "--date", "2 minutes ago", "-m", "Commit #2")
	git("checkout", "-q", "alpha")
	git("commit", "-q", "--allow-empty", "--date", "1 minute ago", "-m", "Commit #3")
	git("cherry-pick", "--allow-empty", "beta")

	source := NewCLISource(runner, CLIConfig{RepoDir: repo})
	svc := apphistory.NewService(source)

	result, err := svc.Ancestry(ctx, "alpha")
	require.NoError(t, err)

	var messages []string
	for _, c := range result.Commits() {
		messages = append(messages, c.Subject())
	}
	require.Equal(t, []string{"Commit #2", "Commit #3", "Commit #1"}, messages)
	require.Equal(t, 4, result.Total)

	_, err = svc.Ancestry(ctx, "no-such-branch")
	var notFound *domain.RevisionNotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestExecRunner_Errors(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	t.Run("non-zero exit", func(t *testing.T) {
		_, err := NewExecRunner(0).Run(context.Background(), t.TempDir(), []string{"git", "rev-list", "--all"})
		var cmdErr *domain.CommandError
		require.ErrorAs(t, err, &cmdErr)
		require.Equal(t, 128, cmdErr.ExitCode)
		require.Contains(t, cmdErr.Stderr, "not a git repository")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewExecRunner(0).Run(ctx, t.TempDir(), []string{"git", "version"})
		require.ErrorIs(t, err, domain.ErrCommandTimeout)
	})

	t.Run("empty argv", func(t *testing.T) {
		_, err := NewExecRunner(0).Run(context.Background(), t.TempDir(), nil)
		require.Error(t, err)
	})
}
