package domain

import (
	"strings"
	"time"
)

// shortHashLen matches git's default abbreviation.
const shortHashLen = 7

// Signature identifies who authored or committed a change, and when.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Commit is a single commit record. Values are never mutated after a loader
// produces them; Parents must be treated as read-only.
type Commit struct {
	Hash      string   // Full object hash
	Parents   []string // Direct ancestors in git's parent order, empty for roots
	Message   string   // Full message, trailing whitespace trimmed
	Author    Signature
	Committer Signature
}

// ShortHash returns the abbreviated hash.
func (c Commit) ShortHash() string {
	if len(c.Hash) <= shortHashLen {
		return c.Hash
	}
	return c.Hash[:shortHashLen]
}

// Subject returns the first line of the message.
func (c Commit) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return subject
}

// IsMerge reports whether the commit has more than one parent.
func (c Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

// IsRoot reports whether the commit has no parents.
func (c Commit) IsRoot() bool {
	return len(c.Parents) == 0
}

// Replayed reports whether the commit was authored and committed at different
// times, as happens after a cherry-pick, rebase or amend.
func (c Commit) Replayed() bool {
	return !c.Author.When.Equal(c.Committer.When)
}
