package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/zjrosen/lineage/internal/history/domain"
)

// sides rebuilds both orders from a report.
func sides(lines []DiffLine) (walk, byCommit []string) {
	for _, l := range lines {
		switch l.Kind {
		case DiffEqual:
			walk = append(walk, l.Text)
			byCommit = append(byCommit, l.Text)
		case DiffDelete:
			walk = append(walk, l.Text)
		case DiffInsert:
			byCommit = append(byCommit, l.Text)
		}
	}
	return walk, byCommit
}

func TestDivergence_InOrderHistory(t *testing.T) {
	walk := []domain.Commit{commitAt("cccccccc", 3), commitAt("bbbbbbbb", 2), commitAt("aaaaaaaa", 1)}

	lines := Divergence(walk)
	require.Len(t, lines, 3)
	require.False(t, HasDivergence(lines))
	require.Equal(t, "ccccccc Commit cccccccc", lines[0].Text)
}

func TestDivergence_LateIntegration(t *testing.T) {
	// b was authored before a but committed after it.
	a := commitAt("aaaaaaaa", 5)
	b := commitAt("bbbbbbbb", 3)
	b.Committer.When = t0.Add(9 * time.Minute)
	root := commitAt("rrrrrrrr", 0)

	lines := Divergence([]domain.Commit{a, b, root})
	require.True(t, HasDivergence(lines))

	walk, byCommit := sides(lines)
	require.Equal(t, []string{"aaaaaaa Commit aaaaaaaa", "bbbbbbb Commit bbbbbbbb", "rrrrrrr Commit rrrrrrrr"}, walk)
	require.Equal(t, []string{"bbbbbbb Commit bbbbbbbb", "aaaaaaa Commit aaaaaaaa", "rrrrrrr Commit rrrrrrrr"}, byCommit)
}

func TestDivergence_Empty(t *testing.T) {
	require.Nil(t, Divergence(nil))
	require.False(t, HasDivergence(nil))
}

func TestDiffKind_String(t *testing.T) {
	require.Equal(t, " ", DiffEqual.String())
	require.Equal(t, "-", DiffDelete.String())
	require.Equal(t, "+", DiffInsert.String())
}
