package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/morozRed/bit/internal/config"
	"github.com/morozRed/bit/internal/ignore"
	"github.com/morozRed/bit/internal/languages"
	"github.com/morozRed/bit/internal/parser"
	"github.com/morozRed/bit/internal/report"
	"github.com/morozRed/bit/internal/vcs"
)

// workspace is the repository a command operates on, with its config applied.
type workspace struct {
	Root     string
	Config   config.Config
	Git      *vcs.Git
	Registry *parser.Registry
	Scope    parser.Scope
	Ignore   *ignore.Matcher
	Logger   *slog.Logger
}

// openWorkspace locates the repository containing the working directory and
// loads .bit.yaml, letting --lang and --scope override it when present.
func openWorkspace(ctx context.Context, cmd *cobra.Command) (*workspace, error) {
	cwd, err := resolveWorkingDirectory()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd)

	git := vcs.NewGit(cwd)
	if err := git.CheckAvailable(); err != nil {
		return nil, err
	}
	root, err := git.RepoRoot(ctx)
	if err != nil {
		return nil, err
	}
	git = vcs.NewGit(root)

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	langs, err := ParseLanguageFilter(cmd)
	if err != nil {
		return nil, err
	}
	if len(langs) > 0 {
		cfg.Languages = langs
	}
	if scope, err := OptionalStringFlag(cmd, "scope"); err != nil {
		return nil, err
	} else if scope != "" {
		cfg.Scope = scope
	}

	scope, err := parser.ParseScope(cfg.Scope)
	if err != nil {
		return nil, err
	}
	registry, err := languages.NewRegistryFor(cfg.Languages)
	if err != nil {
		return nil, err
	}
	matcher, err := ignore.Load(root, cfg.Ignore)
	if err != nil {
		return nil, err
	}

	logger.Debug("workspace",
		"root", root,
		"languages", registry.Languages(),
		"scope", scope.String(),
		"workers", cfg.Workers,
	)
	return &workspace{
		Root:     root,
		Config:   cfg,
		Git:      git,
		Registry: registry,
		Scope:    scope,
		Ignore:   matcher,
		Logger:   logger,
	}, nil
}

// analyzer builds a report.Analyzer, letting --workers override the config.
func (ws *workspace) analyzer(cmd *cobra.Command, onFile func(string, int)) (*report.Analyzer, error) {
	workers, err := OptionalIntFlag(cmd, "workers", 0)
	if err != nil {
		return nil, err
	}
	if workers < 0 {
		return nil, fmt.Errorf("--workers must not be negative, got %d", workers)
	}
	if workers == 0 {
		workers = ws.Config.Workers
	}
	return report.NewAnalyzer(report.Options{
		Root:     ws.Root,
		Git:      ws.Git,
		Registry: ws.Registry,
		Scope:    ws.Scope,
		Workers:  workers,
		Ignore:   ws.Ignore,
		Logger:   ws.Logger,
		OnFile:   onFile,
	})
}

// baseline returns --ref when given, else the configured baseline.
func (ws *workspace) baseline(cmd *cobra.Command) (string, error) {
	ref, err := OptionalStringFlag(cmd, "ref")
	if err != nil {
		return "", err
	}
	if ref == "" {
		ref = ws.Config.Baseline
	}
	return ref, nil
}

// withTimeout applies the configured analysis timeout, if any.
func (ws *workspace) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ws.Config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, ws.Config.Timeout)
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := OptionalBoolFlag(cmd, "verbose", false); verbose {
		level = slog.LevelDebug
	}
	if quiet, _ := OptionalBoolFlag(cmd, "quiet", false); quiet {
		level = slog.LevelError
	}
	var w io.Writer = os.Stderr
	if cmd != nil {
		w = cmd.ErrOrStderr()
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
