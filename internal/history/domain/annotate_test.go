package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAnnotate_MarksReplayAndRegression(t *testing.T) {
	c1 := mk("c1", -3)
	c2 := mk("c2", -2, "c1")
	c3 := mk("c3", -1, "c1")
	c2b := replay(c2, "c2b", 0, "c3")

	steps := Annotate(Walk([]Commit{c2b, c3, c1}, c2b))
	require.Len(t, steps, 3)

	require.Equal(t, "c2b", steps[0].Commit.Hash)
	require.Equal(t, 0, steps[0].Position)
	require.True(t, steps[0].Replayed)
	require.False(t, steps[0].OutOfOrder)

	require.Equal(t, "c3", steps[1].Commit.Hash)
	require.False(t, steps[1].Replayed)
	require.False(t, steps[1].OutOfOrder)

	require.Equal(t, "c1", steps[2].Commit.Hash)
	require.Equal(t, 2, steps[2].Position)
	require.False(t, steps[2].OutOfOrder)
}

func TestAnnotate_CommittedAfterPreviousStep(t *testing.T) {
	// b was authored before a but merged in later.
	a := mk("a", 5)
	b := mk("b", 3)
	b.Committer.When = base.Add(9 * time.Minute)

	steps := Annotate([]Commit{a, b})
	require.False(t, steps[0].OutOfOrder)
	require.True(t, steps[1].OutOfOrder)
	require.True(t, steps[1].Replayed)
}

func TestAnnotate_Empty(t *testing.T) {
	require.Empty(t, Annotate(nil))
}

func TestNewRunSteps(t *testing.T) {
	c := mk("abc", 1)
	c.Message = "Subject line\n\nbody"
	steps := NewRunSteps([]Step{{Commit: c, Position: 0, Replayed: true}})

	require.Len(t, steps, 1)
	require.Equal(t, "abc", steps[0].Hash)
	require.Equal(t, "Subject line", steps[0].Subject)
	require.True(t, steps[0].Replayed)
	require.Equal(t, c.Author.When, steps[0].AuthorTime)
}
