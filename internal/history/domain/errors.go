package domain

import (
	"errors"
	"fmt"
	"strings"
)

// History errors.
var (
	// ErrEmptyHistory indicates the loader returned no commits, so there is
	// no default start commit.
	ErrEmptyHistory = errors.New("repository has no commits")

	// ErrCommandTimeout is returned when a git command is cancelled or its
	// deadline expires.
	ErrCommandTimeout = errors.New("git command timed out")

	// ErrNotGitRepo indicates the directory is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")
)

// AmbiguousRevisionError indicates a hash prefix matched several commits.
type AmbiguousRevisionError struct {
	Rev     string
	Matches []string
}

// Error implements the error interface.
func (e *AmbiguousRevisionError) Error() string {
	return fmt.Sprintf("ambiguous revision %q matches %d commits: %s",
		e.Rev, len(e.Matches), strings.Join(e.Matches, ", "))
}

// RevisionNotFoundError indicates a revision resolved to no loaded commit.
type RevisionNotFoundError struct {
	Rev string
}

// Error implements the error interface.
func (e *RevisionNotFoundError) Error() string {
	return fmt.Sprintf("revision not found: %q", e.Rev)
}

// CommandError describes a git invocation that exited unsuccessfully.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: exit status %d", strings.Join(e.Args, " "), e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// Unwrap returns the underlying process error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// LoadError wraps a failure to read the commit list of a repository.
type LoadError struct {
	RepoDir string
	Err     error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("loading commits from %s: %v", e.RepoDir, e.Err)
}

// Unwrap returns the underlying loader error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// RunNotFoundError indicates no persisted run has the given GUID.
type RunNotFoundError struct {
	GUID string
}

// Error implements the error interface.
func (e *RunNotFoundError) Error() string {
	return fmt.Sprintf("run not found: guid=%q", e.GUID)
}
