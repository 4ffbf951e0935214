package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morozRed/bit/internal/fileutil"
	"github.com/morozRed/bit/internal/report"
	"github.com/morozRed/bit/internal/vcs"
)

var (
	fileStyle     = lipgloss.NewStyle().Bold(true)
	addedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	removedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	modifiedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type StatusSummary struct {
	Mode       string            `json:"mode"`
	RootPath   string            `json:"root_path"`
	Languages  []string          `json:"languages"`
	Candidates int               `json:"candidates"`
	Files      []vcs.StatusEntry `json:"files"`
}

type DoctorSummary struct {
	Mode          string                   `json:"mode"`
	RootPath      string                   `json:"root_path,omitempty"`
	GitAvailable  bool                     `json:"git_available"`
	Repository    bool                     `json:"repository"`
	ConfigFile    bool                     `json:"config_file"`
	ConfigValid   bool                     `json:"config_valid"`
	Baseline      string                   `json:"baseline,omitempty"`
	BaselineValid bool                     `json:"baseline_valid"`
	HookInstalled bool                     `json:"hook_installed"`
	Grammars      map[string]GrammarStatus `json:"grammars,omitempty"`
	Healthy       bool                     `json:"healthy"`
	Missing       []string                 `json:"missing,omitempty"`
	Suggestions   []string                 `json:"suggestions,omitempty"`
}

type GrammarStatus struct {
	Enabled    bool     `json:"enabled"`
	Extensions []string `json:"extensions"`
}

func PrintStatusSummary(w io.Writer, summary StatusSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	fmt.Fprintf(w, "status: candidates=%d languages=%s\n", summary.Candidates, strings.Join(summary.Languages, ","))
	for _, entry := range summary.Files {
		fmt.Fprintf(w, "  %-2s %s\n", entry.Code, entry.Path)
	}
	return nil
}

// PrintDetails writes the per-file change breakdown for `analyze --details`.
func PrintDetails(w io.Writer, r *report.Report) {
	for _, file := range r.Files {
		header := fileStyle.Render(file.Path)
		if file.BaselineMissing {
			header += " " + mutedStyle.Render("(new at "+r.Ref+")")
		}
		fmt.Fprintln(w, header)
		if !file.Changes.HasChanges() {
			fmt.Fprintf(w, "  %s\n", mutedStyle.Render("no structural changes"))
		}
		writeNames(w, addedStyle, "+", file.Changes.Added)
		writeNames(w, removedStyle, "-", file.Changes.Removed)
		writeNames(w, modifiedStyle, "~", file.Changes.Modified)
		if n := len(file.Changes.Unchanged); n > 0 {
			fmt.Fprintf(w, "  %s\n", mutedStyle.Render(fmt.Sprintf("%d unchanged", n)))
		}
	}
	for _, issue := range r.Issues {
		if issue.Kind == report.IssueMissingBaseline {
			continue
		}
		fmt.Fprintf(w, "%s %s: %s\n", warningStyle.Render(string(issue.Severity)), issue.File, issue.Message)
	}
}

func writeNames(w io.Writer, style lipgloss.Style, marker string, names []string) {
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", style.Render(marker+" "+name+"()"))
	}
}

func SummarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}
