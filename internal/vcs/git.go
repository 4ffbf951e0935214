// Package vcs wraps the git commands the change detector depends on.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Git runs git commands in a fixed working directory.
//
// Git is safe for concurrent use; every call starts its own process.
type Git struct {
	dir    string
	binary string
}

// Option customizes a Git client.
type Option func(*Git)

// WithBinary overrides the git executable.
func WithBinary(binary string) Option {
	return func(g *Git) {
		g.binary = binary
	}
}

// NewGit creates a client rooted at dir.
func NewGit(dir string, opts ...Option) *Git {
	g := &Git{dir: dir, binary: "git"}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Dir returns the working directory commands run in.
func (g *Git) Dir() string {
	return g.dir
}

// CheckAvailable verifies that the git binary can be found.
func (g *Git) CheckAvailable() error {
	if _, err := exec.LookPath(g.binary); err != nil {
		return fmt.Errorf("%w: %v", ErrGitUnavailable, err)
	}
	return nil
}

// RepoRoot returns the absolute top-level directory of the work tree.
func (g *Git) RepoRoot(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", notRepository(err)
	}
	return strings.TrimSpace(string(out)), nil
}

// GitDir returns the absolute path of the repository's git directory.
func (g *Git) GitDir(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", notRepository(err)
	}
	return strings.TrimSpace(string(out)), nil
}

// VerifyRef resolves ref to a commit hash.
func (g *Git) VerifyRef(ctx context.Context, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", fmt.Errorf("%w: empty reference", ErrUnknownRef)
	}
	out, err := g.run(ctx, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			return "", fmt.Errorf("%w: %s", ErrUnknownRef, ref)
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Status lists tracked paths with staged or unstaged changes.
func (g *Git) Status(ctx context.Context) ([]StatusEntry, error) {
	out, err := g.run(ctx, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return nil, notRepository(err)
	}
	return ParseStatus(string(out)), nil
}

// Show returns the content of path at ref. A path that cannot be shown at ref
// yields ErrMissingBaseline.
func (g *Git) Show(ctx context.Context, ref, path string) ([]byte, error) {
	object := ref + ":" + filepath.ToSlash(path)
	out, err := g.run(ctx, "show", object)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			return nil, fmt.Errorf("%w: %s: %s", ErrMissingBaseline, object, strings.TrimSpace(cmdErr.Stderr))
		}
		return nil, err
	}
	return out, nil
}

// Diff returns the unified diff of path between ref and the working tree. An
// unchanged path yields an empty diff.
func (g *Git) Diff(ctx context.Context, ref, path string) (string, error) {
	if _, err := g.VerifyRef(ctx, ref); err != nil {
		return "", err
	}
	out, err := g.run(ctx, "diff", "--no-color", ref, "--", filepath.ToSlash(path))
	if err != nil {
		return "", notRepository(err)
	}
	return string(out), nil
}

func (g *Git) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, g.binary, args...)
	cmd.Dir = g.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrGitUnavailable, err)
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// The process never started (bad working directory, permissions).
			return nil, fmt.Errorf("%w: %v", ErrGitUnavailable, err)
		}
		return nil, &CommandError{Args: args, Stderr: stderr.String(), Err: err}
	}
	return stdout.Bytes(), nil
}

func notRepository(err error) error {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return fmt.Errorf("%w: %s", ErrNotRepository, strings.TrimSpace(cmdErr.Stderr))
	}
	return err
}
