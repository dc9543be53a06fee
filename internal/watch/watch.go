// Package watch re-runs a callback when a repository's refs move.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"

	domain "github.com/zjrosen/lineage/internal/history/domain"
	"github.com/zjrosen/lineage/internal/log"
)

// Watcher observes the git directory of one repository.
type Watcher struct {
	gitDir    string // per-worktree state such as HEAD
	commonDir string // shared refs; equals gitDir outside linked worktrees
	debounce  time.Duration
}

// New creates a Watcher for the repository containing repoDir. Like git,
// it searches upward from repoDir and follows a .git file to the real git
// directory, so subdirectories, submodules and linked worktrees all work.
func New(repoDir string, debounce time.Duration) (*Watcher, error) {
	repo, err := git.PlainOpenWithOptions(repoDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotGitRepo, repoDir)
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	storage, ok := repo.Storer.(*filesystem.Storage)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotGitRepo, repoDir)
	}

	gitDir := storage.Filesystem().Root()
	commonDir, err := resolveCommonDir(gitDir)
	if err != nil {
		return nil, err
	}
	return &Watcher{gitDir: gitDir, commonDir: commonDir, debounce: debounce}, nil
}

// resolveCommonDir reads the commondir file a linked worktree's git
// directory carries. Without one the git directory is its own common dir.
func resolveCommonDir(gitDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(gitDir, "commondir")) //nolint:gosec // G304: path is inside the git dir
	if os.IsNotExist(err) {
		return gitDir, nil
	}
	if err != nil {
		return "", fmt.Errorf("reading commondir: %w", err)
	}
	dir := strings.TrimSpace(string(data))
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(gitDir, dir)
	}
	return filepath.Clean(dir), nil
}

// GitDir returns the git directory being watched.
func (w *Watcher) GitDir() string {
	return w.gitDir
}

// Paths returns the directories watched for ref changes: the git
// directories themselves, watched flat, then the refs trees, watched
// recursively.
func (w *Watcher) Paths() []string {
	return append(w.gitDirs(), w.refTrees()...)
}

func (w *Watcher) gitDirs() []string {
	if w.commonDir != w.gitDir {
		return []string{w.gitDir, w.commonDir}
	}
	return []string{w.gitDir}
}

func (w *Watcher) refTrees() []string {
	return []string{
		filepath.Join(w.commonDir, "refs", "heads"),
		filepath.Join(w.commonDir, "refs", "remotes"),
		filepath.Join(w.commonDir, "refs", "tags"),
	}
}

// Run blocks until ctx is done, calling onChange once per burst of ref
// updates that is followed by debounce of quiet.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	for _, dir := range w.gitDirs() {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	for _, root := range w.refTrees() {
		if err := addTree(fw, root); err != nil {
			return err
		}
	}
	log.Info(log.CatWatch, "Watching repository", "git_dir", w.gitDir, "debounce", w.debounce)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug(log.CatWatch, "Watcher stopped", "git_dir", w.gitDir)
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && w.underRefs(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addTree(fw, event.Name)
				}
			}
			if !relevant(event) {
				continue
			}
			log.Debug(log.CatWatch, "Ref change", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.ErrorErr(log.CatWatch, "Watcher error", err, "git_dir", w.gitDir)

		case <-fire:
			fire = nil
			onChange(ctx)
		}
	}
}

func (w *Watcher) underRefs(path string) bool {
	rel, err := filepath.Rel(filepath.Join(w.commonDir, "refs"), path)
	return err == nil && !strings.HasPrefix(rel, "..")
}

// relevant filters out lock files, index updates and permission changes,
// none of which move a ref.
func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	switch {
	case strings.HasSuffix(base, ".lock"):
		return false
	case base == "index", base == "COMMIT_EDITMSG", base == "objects", base == "logs":
		return false
	}
	return true
}

// addTree watches root and every directory below it. A missing root is
// skipped; refs/remotes and refs/tags do not exist in every repository.
func addTree(fw *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
	return err
}
