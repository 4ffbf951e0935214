// Package vcstest builds throwaway git repositories for tests.
package vcstest

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// Repo is a git work tree under t.TempDir().
type Repo struct {
	t    testing.TB
	Root string
}

// RequireGit skips the test when git is not installed.
func RequireGit(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// NewRepo initializes an empty repository.
func NewRepo(t testing.TB) *Repo {
	t.Helper()
	RequireGit(t)

	root := t.TempDir()
	// Resolve symlinked temp dirs (macOS /var -> /private/var) so paths match
	// what git reports.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	r := &Repo{t: t, Root: root}
	r.Git("init", "-q")
	return r
}

// Write creates or replaces a file relative to the repository root.
func (r *Repo) Write(rel, content string) {
	r.t.Helper()
	path := filepath.Join(r.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		r.t.Fatalf("failed to create dir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		r.t.Fatalf("failed to write %s: %v", rel, err)
	}
}

// Remove deletes a file relative to the repository root.
func (r *Repo) Remove(rel string) {
	r.t.Helper()
	if err := os.Remove(filepath.Join(r.Root, filepath.FromSlash(rel))); err != nil {
		r.t.Fatalf("failed to remove %s: %v", rel, err)
	}
}

// Commit stages everything and records a commit.
func (r *Repo) Commit(message string) {
	r.t.Helper()
	r.Git("add", "-A")
	r.Git("commit", "-q", "--allow-empty", "-m", message)
}

// Git runs a git command in the repository and returns its stdout.
func (r *Repo) Git(args ...string) string {
	r.t.Helper()
	base := []string{
		"-c", "user.name=bit",
		"-c", "user.email=bit@example.com",
		"-c", "commit.gpgsign=false",
		"-c", "init.defaultBranch=main",
	}
	cmd := exec.Command("git", append(base, args...)...)
	cmd.Dir = r.Root
	out, err := cmd.Output()
	if err != nil {
		stderr := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = string(exitErr.Stderr)
		}
		r.t.Fatalf("git %v failed: %v: %s", args, err, stderr)
	}
	return string(out)
}
