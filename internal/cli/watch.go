package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/morozRed/bit/internal/report"
	"github.com/morozRed/bit/internal/watch"
)

func RunWatch(cmd *cobra.Command, args []string) error {
	format, err := ParseOutputFormat(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ws, err := openWorkspace(ctx, cmd)
	if err != nil {
		return err
	}
	ref, err := ws.baseline(cmd)
	if err != nil {
		return err
	}
	analyzer, err := ws.analyzer(cmd, nil)
	if err != nil {
		return err
	}

	watcher, err := watch.New(watch.Options{
		Root:     ws.Root,
		Registry: ws.Registry,
		Ignore:   ws.Ignore,
		Logger:   ws.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	out := cmd.OutOrStdout()
	run := func(ctx context.Context, changed []string) error {
		runCtx, cancel := ws.withTimeout(ctx)
		defer cancel()

		r, err := analyzer.Analyze(runCtx, ref)
		if err != nil {
			return err
		}
		if format == report.FormatText {
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("[%s] %d modified (changed: %s)",
				time.Now().Format("15:04:05"), len(r.Entries), SummarizePaths(changed, 5))))
		}
		return report.Write(out, r, format)
	}

	if err := run(ctx, nil); err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	ws.Logger.Info("watching for changes", "root", ws.Root, "ref", ref)
	return watcher.Run(ctx, run)
}
