package render

import (
	"fmt"
	"strings"

	domain "github.com/zjrosen/lineage/internal/history/domain"
)

// Runs prints one line per recorded run, newest first as given.
func (p *Printer) Runs(runs []*domain.Run) error {
	if len(runs) == 0 {
		return p.println(p.styles.faint.Render("no recorded runs"))
	}
	for _, r := range runs {
		line := strings.Join([]string{
			r.GUID,
			r.CreatedAt.UTC().Format(TimeLayout),
			p.styles.hash.Render(shortHash(r.StartHash)),
			string(r.Source),
			fmt.Sprintf("%d commits", r.CommitCount),
			r.RepoDir,
		}, "\t")
		if err := p.println(line); err != nil {
			return err
		}
	}
	return nil
}

// Run prints a run header followed by its steps in the walk text format.
func (p *Printer) Run(run *domain.Run) error {
	header := []string{
		"run     " + run.GUID,
		"repo    " + run.RepoDir,
		fmt.Sprintf("start   %s (%s, %d commits loaded)", run.StartHash, run.Source, run.CommitCount),
		"created " + run.CreatedAt.UTC().Format(TimeLayout),
		"",
	}
	for _, line := range header {
		if err := p.println(p.styles.faint.Render(line)); err != nil {
			return err
		}
	}

	rows := make([]row, len(run.Steps))
	for i, s := range run.Steps {
		rows[i] = row{
			Hash:       s.Hash,
			AuthorTime: s.AuthorTime,
			Replayed:   s.Replayed,
			OutOfOrder: s.OutOfOrder,
			Subject:    s.Subject,
		}
	}
	return p.rows(rows)
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
