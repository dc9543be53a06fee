package domain

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emirpasic/gods/trees/binaryheap"
)

// candidate is a frontier entry. batch is the iteration that queued it and
// slot its position within that commit's parent list.
type candidate struct {
	commit Commit
	batch  int
	slot   int
}

// byRecency orders candidates by author time, newest first. Equal author
// times fall back to the most recently queued batch, then to parent order.
// This is the order a stable re-sort of a list gives when each iteration's
// parents are inserted at its front.
func byRecency(a, b any) int {
	x, y := a.(candidate), b.(candidate)
	switch {
	case x.commit.Author.When.After(y.commit.Author.When):
		return -1
	case y.commit.Author.When.After(x.commit.Author.When):
		return 1
	case x.batch != y.batch:
		return y.batch - x.batch
	default:
		return x.slot - y.slot
	}
}

// Walk returns the ancestry of start in visitation order.
//
// The walk keeps a frontier of discovered but unvisited commits. Each step
// visits the frontier commit with the newest author time, then queues those
// of its parents that resolve through all and have been neither visited nor
// queued. Parent hashes missing from all are skipped.
//
// start is always the first element, even if it is absent from all. Each
// hash appears at most once in the result.
func Walk(all []Commit, start Commit) []Commit {
	index := NewIndex(all)

	frontier := binaryheap.NewWith(byRecency)
	frontier.Push(candidate{commit: start})
	queued := mapset.NewThreadUnsafeSet(start.Hash)
	visited := mapset.NewThreadUnsafeSet[string]()

	var sequence []Commit
	for batch := 1; ; batch++ {
		next, ok := frontier.Pop()
		if !ok {
			break
		}
		current := next.(candidate).commit
		queued.Remove(current.Hash)
		visited.Add(current.Hash)
		sequence = append(sequence, current)

		slot := 0
		for _, hash := range current.Parents {
			parent, ok := index.Lookup(hash)
			if !ok || visited.Contains(parent.Hash) || queued.Contains(parent.Hash) {
				continue
			}
			queued.Add(parent.Hash)
			frontier.Push(candidate{commit: parent, batch: batch, slot: slot})
			slot++
		}
	}
	return sequence
}
