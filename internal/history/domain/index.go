package domain

// Index provides constant-time lookup of commits by hash.
// Later commits with a duplicate hash replace earlier ones.
type Index struct {
	byHash map[string]Commit
}

// NewIndex builds an index over commits.
func NewIndex(commits []Commit) *Index {
	byHash := make(map[string]Commit, len(commits))
	for _, c := range commits {
		byHash[c.Hash] = c
	}
	return &Index{byHash: byHash}
}

// Lookup returns the commit with the given hash.
func (i *Index) Lookup(hash string) (Commit, bool) {
	c, ok := i.byHash[hash]
	return c, ok
}

// Len returns the number of distinct hashes in the index.
func (i *Index) Len() int {
	return len(i.byHash)
}
