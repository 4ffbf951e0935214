package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/morozRed/bit/internal/config"
	"github.com/morozRed/bit/internal/fileutil"
	"github.com/morozRed/bit/internal/ignore"
	"github.com/morozRed/bit/internal/vcs"
)

const configHeader = "# bit configuration. Flags passed on the command line take precedence.\n"

const ignoreTemplate = `# Paths excluded from symbol analysis (gitignore syntax).
# migrations/
# *_pb2.py
`

func RunInit(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	// Prefer the repository top level so every command finds the same file.
	if root, err := vcs.NewGit(rootPath).RepoRoot(commandContext(cmd)); err == nil {
		rootPath = root
	}

	body, err := config.Default().Marshal()
	if err != nil {
		return fmt.Errorf("failed to render default config: %w", err)
	}

	out := cmd.OutOrStdout()
	files := []struct {
		name string
		data []byte
	}{
		{config.FileName, append([]byte(configHeader), body...)},
		{ignore.FileName, []byte(ignoreTemplate)},
	}
	for _, f := range files {
		path := filepath.Join(rootPath, f.name)
		created, err := fileutil.WriteIfMissing(path, f.data, 0644)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		if created {
			fmt.Fprintf(out, "Created %s\n", path)
		} else {
			fmt.Fprintf(out, "Kept existing %s\n", path)
		}
	}
	return nil
}
