package cmd

import (
	"errors"
	"fmt"

	"github.com/zjrosen/lineage/internal/config"
	apphistory "github.com/zjrosen/lineage/internal/history/application"
	domain "github.com/zjrosen/lineage/internal/history/domain"
	infrahistory "github.com/zjrosen/lineage/internal/history/infrastructure"
	"github.com/zjrosen/lineage/internal/infrastructure/sqlite"
)

// errRunsDisabled is returned by commands that need the run store when
// db.enabled is false.
var errRunsDisabled = errors.New("run history is disabled (db.enabled: false)")

// newSource builds the commit loader selected by c.Source, cached when
// cache.ttl is positive.
func newSource(c config.Config) (apphistory.CommitSource, error) {
	var src apphistory.CommitSource
	switch domain.SourceKind(c.Source) {
	case domain.SourceGoGit:
		s, err := infrahistory.OpenGoGitSource(c.RepoDir)
		if err != nil {
			return nil, err
		}
		src = s
	case domain.SourceCLI:
		src = infrahistory.NewCLISource(infrahistory.NewExecRunner(c.Git.Timeout), infrahistory.CLIConfig{
			RepoDir:   c.RepoDir,
			Binary:    c.Git.Binary,
			Scope:     c.Git.Scope,
			Delimiter: c.Git.Delimiter,
		})
	default:
		return nil, fmt.Errorf("unknown source %q", c.Source)
	}

	if c.Cache.TTL > 0 {
		src = infrahistory.NewCachedSource(src, c.Cache.TTL)
	}
	return src, nil
}

// openRuns opens the run store. The caller closes the returned DB.
func openRuns(c config.Config) (*sqlite.DB, error) {
	if !c.DB.Enabled {
		return nil, errRunsDisabled
	}
	return sqlite.NewDB(c.DB.Path)
}
