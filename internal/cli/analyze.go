package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/morozRed/bit/internal/report"
)

func RunAnalyze(cmd *cobra.Command, args []string) error {
	format, err := ParseOutputFormat(cmd)
	if err != nil {
		return err
	}
	details, err := OptionalBoolFlag(cmd, "details", false)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	ws, err := openWorkspace(ctx, cmd)
	if err != nil {
		return err
	}
	ref, err := ws.baseline(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := ws.withTimeout(ctx)
	defer cancel()

	progress := newAnalyzeProgressReporter("analyze", 0, format != report.FormatText)
	analyzer, err := ws.analyzer(cmd, progress.Update)
	if err != nil {
		return err
	}
	candidates, err := analyzer.Candidates(ctx)
	if err != nil {
		return err
	}
	if len(candidates) == 0 && format == report.FormatText {
		fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render("No modified source files found."))
		return nil
	}
	files := report.CandidatePaths(candidates)
	progress.total = len(files)

	r, err := analyzer.AnalyzeFiles(ctx, ref, files)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	progress.Done(len(r.Files))

	out := cmd.OutOrStdout()
	if err := report.Write(out, r, format); err != nil {
		return err
	}
	if format != report.FormatText {
		return nil
	}
	if details {
		PrintDetails(out, r)
	}
	if !r.Changed() {
		fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render(fmt.Sprintf("No modified functions in %d file(s).", len(r.Files))))
	}
	return nil
}
