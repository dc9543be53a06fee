package application

import (
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	domain "github.com/zjrosen/lineage/internal/history/domain"
)

// DiffKind classifies a divergence line.
type DiffKind int

const (
	// DiffEqual lines sit at the same relative place in both orders.
	DiffEqual DiffKind = iota
	// DiffDelete lines appear here in the walk but elsewhere by commit time.
	DiffDelete
	// DiffInsert lines appear here by commit time but elsewhere in the walk.
	DiffInsert
)

// String returns the diff prefix for the kind.
func (k DiffKind) String() string {
	switch k {
	case DiffDelete:
		return "-"
	case DiffInsert:
		return "+"
	default:
		return " "
	}
}

// DiffLine is one line of a divergence report.
type DiffLine struct {
	Kind DiffKind
	Text string // "<short hash> <subject>"
}

// Divergence diffs the walk order (authoring order) against the same commits
// sorted by committer time, newest first. Commits with equal committer times
// keep their walk order. Equal lines on both sides mean integration followed
// authoring; insert/delete pairs mark commits that were integrated out of
// authoring order.
func Divergence(walk []domain.Commit) []DiffLine {
	if len(walk) == 0 {
		return nil
	}

	byCommitTime := make([]domain.Commit, len(walk))
	copy(byCommitTime, walk)
	sort.SliceStable(byCommitTime, func(i, j int) bool {
		return byCommitTime[i].Committer.When.After(byCommitTime[j].Committer.When)
	})

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(diffText(walk), diffText(byCommitTime))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []DiffLine
	for _, d := range diffs {
		kind := DiffEqual
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			kind = DiffDelete
		case diffmatchpatch.DiffInsert:
			kind = DiffInsert
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out = append(out, DiffLine{Kind: kind, Text: line})
		}
	}
	return out
}

// HasDivergence reports whether any line differs.
func HasDivergence(lines []DiffLine) bool {
	for _, l := range lines {
		if l.Kind != DiffEqual {
			return true
		}
	}
	return false
}

func diffText(commits []domain.Commit) string {
	var b strings.Builder
	for _, c := range commits {
		b.WriteString(c.ShortHash())
		b.WriteByte(' ')
		b.WriteString(c.Subject())
		b.WriteByte('\n')
	}
	return b.String()
}
