package vcs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrGitUnavailable means the git binary cannot be executed at all.
	ErrGitUnavailable = errors.New("git is not installed or not on PATH")

	// ErrNotRepository means the working directory is outside a git work tree.
	ErrNotRepository = errors.New("not inside a git repository")

	// ErrUnknownRef means a baseline reference does not resolve to a commit.
	ErrUnknownRef = errors.New("unknown reference")

	// ErrMissingBaseline means the path does not exist at the reference.
	ErrMissingBaseline = errors.New("path not present at reference")
)

// CommandError is a git invocation that ran but exited unsuccessfully.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("git %s: %v: %s", strings.Join(e.Args, " "), e.Err, stderr)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err means git itself cannot be used, as opposed to
// a failure scoped to a single file.
func IsFatal(err error) bool {
	return errors.Is(err, ErrGitUnavailable) ||
		errors.Is(err, ErrNotRepository) ||
		errors.Is(err, ErrUnknownRef)
}
