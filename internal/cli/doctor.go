package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morozRed/bit/internal/config"
	"github.com/morozRed/bit/internal/fileutil"
	"github.com/morozRed/bit/internal/languages"
	"github.com/morozRed/bit/internal/parser"
	"github.com/morozRed/bit/internal/vcs"
)

var grammarProbes = map[string]string{
	"python": "def probe():\n    pass\n",
	"go":     "package probe\n\nfunc probe() {}\n",
	"ruby":   "def probe\nend\n",
}

func RunDoctor(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	summary := DoctorSummary{
		Mode:     "doctor",
		RootPath: rootPath,
		Grammars: make(map[string]GrammarStatus),
	}

	git := vcs.NewGit(rootPath)
	if err := git.CheckAvailable(); err != nil {
		summary.Missing = append(summary.Missing, "git executable")
		summary.Suggestions = append(summary.Suggestions, "install git and make sure it is on PATH")
	} else {
		summary.GitAvailable = true
	}

	enabled := map[string]bool{}
	if summary.GitAvailable {
		if root, err := git.RepoRoot(ctx); err != nil {
			summary.Missing = append(summary.Missing, "git repository")
			summary.Suggestions = append(summary.Suggestions, "run bit inside a git work tree")
		} else {
			summary.Repository = true
			summary.RootPath = root
			git = vcs.NewGit(root)
		}
	}

	cfg := config.Default()
	if _, err := os.Stat(filepath.Join(summary.RootPath, config.FileName)); err == nil {
		summary.ConfigFile = true
	} else {
		summary.Suggestions = append(summary.Suggestions, "run bit init")
	}
	if loaded, err := config.Load(summary.RootPath); err != nil {
		summary.Missing = append(summary.Missing, "valid "+config.FileName)
		summary.Suggestions = append(summary.Suggestions, "fix "+config.FileName+": "+err.Error())
	} else {
		summary.ConfigValid = true
		cfg = loaded
	}
	for _, lang := range cfg.Languages {
		enabled[lang] = true
	}
	summary.Baseline = cfg.Baseline

	if summary.Repository {
		if _, err := git.VerifyRef(ctx, cfg.Baseline); err != nil {
			summary.Missing = append(summary.Missing, "baseline "+cfg.Baseline)
			summary.Suggestions = append(summary.Suggestions, "commit once or set baseline in "+config.FileName)
		} else {
			summary.BaselineValid = true
		}
		if gitDir, err := git.GitDir(ctx); err == nil {
			if data, err := os.ReadFile(filepath.Join(gitDir, "hooks", "pre-commit")); err == nil {
				summary.HookInstalled = strings.Contains(string(data), HookStart)
			}
		}
	}

	registry := languages.NewDefaultRegistry()
	for _, lang := range registry.Languages() {
		if err := probeGrammar(ctx, registry, lang); err != nil {
			summary.Missing = append(summary.Missing, lang+" grammar")
			continue
		}
		summary.Grammars[lang] = GrammarStatus{
			Enabled:    enabled[lang],
			Extensions: extensionsFor(registry, lang),
		}
	}

	summary.Missing = fileutil.DedupeStrings(summary.Missing)
	sort.Strings(summary.Missing)
	summary.Suggestions = fileutil.DedupeStrings(summary.Suggestions)
	sort.Strings(summary.Suggestions)
	summary.Healthy = summary.GitAvailable && summary.Repository && summary.ConfigValid && summary.BaselineValid && len(summary.Missing) == 0

	out := cmd.OutOrStdout()
	if asJSON {
		return fileutil.PrintJSON(out, summary)
	}

	status := "issues"
	if summary.Healthy {
		status = "ok"
	}
	fmt.Fprintf(out, "doctor: %s\n", status)
	fmt.Fprintf(out, "git: available=%t repository=%t baseline=%s valid=%t\n", summary.GitAvailable, summary.Repository, summary.Baseline, summary.BaselineValid)
	fmt.Fprintf(out, "config: file=%t valid=%t hook=%t\n", summary.ConfigFile, summary.ConfigValid, summary.HookInstalled)
	for _, lang := range fileutil.MapKeysSorted(summary.Grammars) {
		grammar := summary.Grammars[lang]
		fmt.Fprintf(out, "grammar: %s enabled=%t (%s)\n", lang, grammar.Enabled, strings.Join(grammar.Extensions, ", "))
	}
	if len(summary.Missing) > 0 {
		fmt.Fprintf(out, "missing (%d): %s\n", len(summary.Missing), SummarizePaths(summary.Missing, 8))
	}
	for _, suggestion := range summary.Suggestions {
		fmt.Fprintf(out, "next: %s\n", suggestion)
	}
	return nil
}

func probeGrammar(ctx context.Context, registry *parser.Registry, lang string) error {
	exts := extensionsFor(registry, lang)
	if len(exts) == 0 {
		return fmt.Errorf("no extensions registered for %s", lang)
	}
	file, err := registry.ParseContent(ctx, "probe"+exts[0], []byte(grammarProbes[lang]), parser.ScopeTopLevel)
	if err != nil {
		return err
	}
	defer file.Close()
	if len(file.Functions) != 1 {
		return fmt.Errorf("%s probe found %d functions", lang, len(file.Functions))
	}
	return nil
}

func extensionsFor(registry *parser.Registry, lang string) []string {
	filtered, err := registry.Filter(map[string]bool{lang: true})
	if err != nil {
		return nil
	}
	return filtered.SupportedExtensions()
}
