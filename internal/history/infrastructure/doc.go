// Package infrastructure provides the loaders behind the history ports.
//
//   - ExecRunner runs commands with os/exec (application.CommandRunner)
//   - CLISource runs `git rev-list` and parses its output
//   - GoGitSource reads the object database in-process with go-git
//   - CachedSource keeps a loaded commit list for a configurable TTL
package infrastructure
