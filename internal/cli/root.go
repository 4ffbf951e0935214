package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/morozRed/bit/internal/config"
	"github.com/morozRed/bit/internal/report"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bit",
		Short: "Report which functions structurally changed since a git reference",
		Long: `Bit compares the functions in your modified files against a git
reference (HEAD by default) and reports only those whose syntax tree
changed. Whitespace, comment and formatting edits are ignored.

Settings are read from .bit.yaml at the repository root.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only log errors")

	// Core Commands
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "List functions modified since the baseline reference",
		Args:  cobra.NoArgs,
		RunE:  RunAnalyze,
	}
	addAnalysisFlags(analyzeCmd)
	analyzeCmd.Flags().String("format", string(report.FormatText), "Output format: text|json|jsonl")
	analyzeCmd.Flags().Bool("details", false, "Show added, removed and modified functions per file")
	analyzeCmd.Flags().Int("workers", 0, "Files compared in parallel (default from config)")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show modified files that analyze would compare",
		Args:  cobra.NoArgs,
		RunE:  RunStatus,
	}
	statusCmd.Flags().StringSliceP("lang", "l", []string{}, "Languages to include: python|go|ruby (default from config)")
	statusCmd.Flags().Bool("json", false, "Print machine-readable status output")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the symbol report over HTTP",
		Args:  cobra.NoArgs,
		RunE:  RunServe(version),
	}
	addAnalysisFlags(serveCmd)
	serveCmd.Flags().String("addr", "", fmt.Sprintf("Listen address (default from config, %s)", config.DefaultAddr))
	serveCmd.Flags().Int("workers", 0, "Files compared in parallel (default from config)")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run analyze whenever a source file changes",
		Args:  cobra.NoArgs,
		RunE:  RunWatch,
	}
	addAnalysisFlags(watchCmd)
	watchCmd.Flags().String("format", string(report.FormatText), "Output format: text|json|jsonl")
	watchCmd.Flags().Int("workers", 0, "Files compared in parallel (default from config)")

	// Setup Commands
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write default .bit.yaml and .bitignore files",
		Args:  cobra.NoArgs,
		RunE:  RunInit,
	}

	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check git, configuration and grammar availability",
		Args:  cobra.NoArgs,
		RunE:  RunDoctor,
	}
	doctorCmd.Flags().Bool("json", false, "Print machine-readable doctor output")

	installHookCmd := &cobra.Command{
		Use:   "install-hook",
		Short: "Install a git pre-commit hook that prints the symbol report",
		Args:  cobra.NoArgs,
		RunE:  RunInstallHook,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bit %s\n", version)
		},
	}

	rootCmd.AddCommand(
		analyzeCmd,
		statusCmd,
		serveCmd,
		watchCmd,
		initCmd,
		doctorCmd,
		installHookCmd,
		versionCmd,
	)

	return rootCmd
}

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().String("ref", "", "Baseline git reference (default from config, HEAD)")
	cmd.Flags().StringSliceP("lang", "l", []string{}, "Languages to include: python|go|ruby (default from config)")
	cmd.Flags().String("scope", "", "Functions to compare: top-level|all (default from config)")
}
