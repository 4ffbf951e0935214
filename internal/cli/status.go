package cli

import (
	"github.com/spf13/cobra"
)

func RunStatus(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	ws, err := openWorkspace(ctx, cmd)
	if err != nil {
		return err
	}
	analyzer, err := ws.analyzer(cmd, nil)
	if err != nil {
		return err
	}
	candidates, err := analyzer.Candidates(ctx)
	if err != nil {
		return err
	}

	summary := StatusSummary{
		Mode:       "status",
		RootPath:   ws.Root,
		Languages:  ws.Registry.Languages(),
		Candidates: len(candidates),
		Files:      candidates,
	}
	return PrintStatusSummary(cmd.OutOrStdout(), summary, asJSON)
}
