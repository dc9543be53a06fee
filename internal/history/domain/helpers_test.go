package domain

import "time"

var base = time.Date(2021, 3, 14, 12, 0, 0, 0, time.UTC)

// mk builds a commit authored and committed at base+minutes.
func mk(hash string, minutes int, parents ...string) Commit {
	when := base.Add(time.Duration(minutes) * time.Minute)
	return Commit{
		Hash:      hash,
		Parents:   parents,
		Message:   "Commit " + hash,
		Author:    Signature{Name: "Ada", Email: "ada@example.com", When: when},
		Committer: Signature{Name: "Ada", Email: "ada@example.com", When: when},
	}
}

// replay returns c re-applied onto parent, committed at base+minutes.
func replay(c Commit, hash string, minutes int, parent string) Commit {
	c.Hash = hash
	c.Parents = []string{parent}
	c.Committer.When = base.Add(time.Duration(minutes) * time.Minute)
	return c
}

func hashes(commits []Commit) []string {
	out := make([]string, len(commits))
	for i, c := range commits {
		out[i] = c.Hash
	}
	return out
}

func messages(commits []Commit) []string {
	out := make([]string, len(commits))
	for i, c := range commits {
		out[i] = c.Message
	}
	return out
}
