package domain

// Step is one visited commit with its position and divergence markers.
type Step struct {
	Commit   Commit
	Position int

	// Replayed is set when author and committer times differ.
	Replayed bool

	// OutOfOrder is set when this commit was committed later than the
	// commit visited just before it, i.e. integration order runs against
	// visitation order here. Never set on the first step.
	OutOfOrder bool
}

// Annotate computes the markers for every commit of a walk.
func Annotate(walk []Commit) []Step {
	steps := make([]Step, len(walk))
	for i, c := range walk {
		steps[i] = Step{
			Commit:   c,
			Position: i,
			Replayed: c.Replayed(),
		}
		if i > 0 && walk[i-1].Committer.When.Before(c.Committer.When) {
			steps[i].OutOfOrder = true
		}
	}
	return steps
}
