package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	apphistory "github.com/zjrosen/lineage/internal/history/application"
	domain "github.com/zjrosen/lineage/internal/history/domain"
	"github.com/zjrosen/lineage/internal/log"
)

var _ apphistory.CommandRunner = (*ExecRunner)(nil)

// ExecRunner runs commands as subprocesses and captures their whole output.
type ExecRunner struct {
	// Timeout bounds each command. Zero means only ctx applies.
	Timeout time.Duration
	// Env is appended to the inherited environment.
	Env []string
}

// NewExecRunner creates an ExecRunner with the given per-command timeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

// Run executes argv in dir and returns stdout.
func (r *ExecRunner) Run(ctx context.Context, dir string, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", errors.New("exec runner: empty command")
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // G204: argv is built by the loaders
	cmd.Dir = dir
	// Never block on credential prompts or editors.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "GIT_EDITOR=true")
	cmd.Env = append(cmd.Env, r.Env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug(log.CatGit, "Running command", "dir", dir, "args", strings.Join(argv, " "))
	started := time.Now()
	err := cmd.Run()

	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Warn(log.CatGit, "Command cancelled", "args", strings.Join(argv, " "), "error", ctxErr)
		return "", fmt.Errorf("%w: %s: %w", domain.ErrCommandTimeout, strings.Join(argv, " "), ctxErr)
	}
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return "", &domain.CommandError{
			Args:     argv[1:],
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}

	log.Debug(log.CatGit, "Command finished", "args", argv[0]+" "+firstArg(argv), "bytes", stdout.Len(), "elapsed", time.Since(started))
	return stdout.String(), nil
}

func firstArg(argv []string) string {
	if len(argv) < 2 {
		return ""
	}
	return argv[1]
}
