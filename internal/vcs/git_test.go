package vcs

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/morozRed/bit/internal/vcs/vcstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitStatusShowAndRefs(t *testing.T) {
	repo := vcstest.NewRepo(t)
	repo.Write("app.py", "def f():\n    return 1\n")
	repo.Commit("initial")
	repo.Write("app.py", "def f():\n    return 2\n")
	repo.Write("fresh.py", "def g():\n    pass\n")
	repo.Git("add", "fresh.py")

	ctx := context.Background()
	git := NewGit(repo.Root)
	require.NoError(t, git.CheckAvailable())

	root, err := git.RepoRoot(ctx)
	require.NoError(t, err)
	assert.Equal(t, repo.Root, root)

	entries, err := git.Status(ctx)
	require.NoError(t, err)
	assert.Contains(t, entries, StatusEntry{Code: "M", Path: "app.py"})
	assert.Contains(t, entries, StatusEntry{Code: "A", Path: "fresh.py"})

	content, err := git.Show(ctx, "HEAD", "app.py")
	require.NoError(t, err)
	assert.Equal(t, "def f():\n    return 1\n", string(content))

	_, err = git.Show(ctx, "HEAD", "fresh.py")
	assert.ErrorIs(t, err, ErrMissingBaseline)
	assert.False(t, IsFatal(err))

	sha, err := git.VerifyRef(ctx, "HEAD")
	require.NoError(t, err)
	assert.Len(t, sha, 40)

	_, err = git.VerifyRef(ctx, "no-such-branch")
	assert.ErrorIs(t, err, ErrUnknownRef)
	assert.True(t, IsFatal(err))
}

func TestGitOutsideRepository(t *testing.T) {
	vcstest.RequireGit(t)

	_, err := NewGit(t.TempDir()).RepoRoot(context.Background())
	assert.ErrorIs(t, err, ErrNotRepository)
}

func TestGitUnavailable(t *testing.T) {
	git := NewGit(t.TempDir(), WithBinary("bit-test-no-such-git"))

	assert.ErrorIs(t, git.CheckAvailable(), ErrGitUnavailable)

	_, err := git.Status(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGitUnavailable), "got %v", err)
	assert.True(t, IsFatal(err))
}

func TestGitDiff(t *testing.T) {
	repo := vcstest.NewRepo(t)
	repo.Write("app.py", "def f():\n    return 1\n")
	repo.Write("same.py", "def g():\n    return 1\n")
	repo.Commit("initial")
	repo.Write("app.py", "def f():\n    return 2\n")

	ctx := context.Background()
	git := NewGit(repo.Root)

	diff, err := git.Diff(ctx, "HEAD", "app.py")
	require.NoError(t, err)
	assert.Contains(t, diff, "-    return 1")
	assert.Contains(t, diff, "+    return 2")

	diff, err = git.Diff(ctx, "HEAD", "same.py")
	require.NoError(t, err)
	assert.Empty(t, diff)

	_, err = git.Diff(ctx, "no-such-branch", "app.py")
	assert.ErrorIs(t, err, ErrUnknownRef)
}

func TestGitLog(t *testing.T) {
	repo := vcstest.NewRepo(t)
	git := NewGit(repo.Root)
	ctx := context.Background()

	commits, err := git.Log(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, commits)

	repo.Write("app.py", "def f():\n    return 1\n")
	repo.Commit("first change")
	repo.Write("app.py", "def f():\n    return 2\n")
	repo.Commit("second change")
	repo.Commit("third change")

	commits, err = git.Log(ctx, 2)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "third change", commits[0].Message)
	assert.Equal(t, "second change", commits[1].Message)
	assert.Equal(t, "bit", commits[0].Author)
	assert.Len(t, commits[0].Hash, 40)
	assert.True(t, strings.HasPrefix(commits[0].Hash, commits[0].ShortHash))
	assert.False(t, commits[0].Date.IsZero())

	_, err = git.Log(ctx, 0)
	assert.Error(t, err)
}

func TestParseLogRejectsMalformedRecords(t *testing.T) {
	commits, err := ParseLog("")
	require.NoError(t, err)
	assert.Empty(t, commits)

	_, err = ParseLog("abc\x1fa\x1e")
	assert.Error(t, err)
}
