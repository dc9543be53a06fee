// Package application implements the history service for lineage.
//
// The service bridges the pure domain walk to the loaders and the run store:
//   - Loads commits through a CommitSource port
//   - Resolves the start revision (default, hash, prefix or ref name)
//   - Runs and annotates the walk
//   - Records runs through a domain.RunRepository
//
// # Ports (Interfaces)
//
//   - CommandRunner: runs an external command and returns its stdout
//   - CommitSource: loads the full commit list of one repository
//   - RevisionResolver: optional, resolves ref names to hashes
//   - Invalidator: optional, drops cached history
//
// # Infrastructure Adapters
//
// The history infrastructure package provides CLISource (git binary through a
// CommandRunner), GoGitSource (go-git object database), CachedSource and
// ExecRunner.
package application
