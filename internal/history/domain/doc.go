// Package domain holds the commit model and the ancestry walk for lineage.
//
// This package has no knowledge of git binaries, object databases or storage.
// It works on plain Commit values produced by a loader and is safe to call
// from many goroutines over the same commit slice.
//
// # Core Types
//
// Commit is an immutable record of one git commit: hash, ordered parent
// hashes, message, and author/committer signatures.
//
// Index maps hashes to commits for the duration of one walk.
//
// Step is one element of an annotated walk, carrying the replay and
// out-of-order markers.
//
// Run is a walk persisted through a RunRepository.
//
// # Walking
//
// Walk visits the ancestry of a start commit, always descending into the
// most recently authored outstanding candidate next. Author time decides the
// order; committer time is only used by Annotate.
//
// # Import Aliasing
//
// There is also an application package for the history service. When
// importing both, alias them:
//
//	import (
//	    domain "github.com/zjrosen/lineage/internal/history/domain"
//	    apphistory "github.com/zjrosen/lineage/internal/history/application"
//	)
package domain
