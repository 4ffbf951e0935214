package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morozRed/bit/internal/fileutil"
	"github.com/morozRed/bit/internal/vcs"
)

const (
	HookStart = "# >>> bit analyze hook >>>"
	HookEnd   = "# <<< bit analyze hook <<<"
)

func RunInstallHook(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}

	repoRoot, gitDir, err := ResolveGitPaths(cmd, rootPath)
	if err != nil {
		return err
	}

	hookPath := filepath.Join(gitDir, "hooks", "pre-commit")
	existing := ""
	if data, err := os.ReadFile(hookPath); err == nil {
		existing = string(data)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read existing hook: %w", err)
	}

	updated := UpsertBitHook(existing, repoRoot)
	written, err := fileutil.WriteIfChanged(hookPath, []byte(updated), 0755)
	if err != nil {
		return fmt.Errorf("failed to write hook: %w", err)
	}

	if written {
		fmt.Fprintf(cmd.OutOrStdout(), "Installed pre-commit hook at %s\n", hookPath)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Pre-commit hook already up to date at %s\n", hookPath)
	}
	return nil
}

func ResolveGitPaths(cmd *cobra.Command, workingDir string) (repoRoot string, gitDir string, err error) {
	git := vcs.NewGit(workingDir)
	if err := git.CheckAvailable(); err != nil {
		return "", "", err
	}
	ctx := commandContext(cmd)
	repoRoot, err = git.RepoRoot(ctx)
	if err != nil {
		return "", "", err
	}
	gitDir, err = git.GitDir(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve git directory: %w", err)
	}
	return repoRoot, gitDir, nil
}

func UpsertBitHook(existingHook, repoRoot string) string {
	block := BuildBitHookBlock(repoRoot)

	if existingHook == "" {
		return "#!/bin/sh\n\n" + block + "\n"
	}

	start := strings.Index(existingHook, HookStart)
	end := strings.Index(existingHook, HookEnd)
	if start >= 0 && end >= start {
		end += len(HookEnd)
		updated := existingHook[:start] + block + existingHook[end:]
		return fileutil.EnsureTrailingNewline(updated)
	}

	base := fileutil.EnsureTrailingNewline(existingHook)
	if !strings.HasPrefix(base, "#!") {
		base = "#!/bin/sh\n" + base
	}
	return base + "\n" + block + "\n"
}

// BuildBitHookBlock prints the symbol report before each commit. It never
// blocks the commit.
func BuildBitHookBlock(repoRoot string) string {
	return fmt.Sprintf(
		"%s\nrepo_root=%q\nif command -v bit >/dev/null 2>&1; then\n  (cd \"$repo_root\" && bit analyze --quiet) || true\nfi\n%s",
		HookStart,
		repoRoot,
		HookEnd,
	)
}
