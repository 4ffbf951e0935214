package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/morozRed/bit/internal/ignore"
	"github.com/morozRed/bit/internal/parser"
	"github.com/morozRed/bit/internal/symbols"
	"github.com/morozRed/bit/internal/vcs"
)

// Git is the subset of the git client the analyzer needs.
type Git interface {
	CheckAvailable() error
	Status(ctx context.Context) ([]vcs.StatusEntry, error)
	VerifyRef(ctx context.Context, ref string) (string, error)
	Show(ctx context.Context, ref, path string) ([]byte, error)
}

// Options configures an Analyzer.
type Options struct {
	// Root is the repository top level; status paths are relative to it.
	Root     string
	Git      Git
	Registry *parser.Registry
	Scope    parser.Scope
	// Workers bounds concurrent per-file work. Values below 1 mean 1.
	Workers int
	Ignore  *ignore.Matcher
	Logger  *slog.Logger
	// OnFile is called after each file finishes, never concurrently.
	OnFile func(path string, done int)
}

// Analyzer compares working-copy files against a baseline reference.
type Analyzer struct {
	opts   Options
	logger *slog.Logger

	mu   sync.Mutex
	done int
}

// NewAnalyzer validates opts and returns an Analyzer.
func NewAnalyzer(opts Options) (*Analyzer, error) {
	if opts.Git == nil {
		return nil, errors.New("report: git client is required")
	}
	if opts.Registry == nil {
		return nil, errors.New("report: parser registry is required")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{opts: opts, logger: logger}, nil
}

// Candidates lists the modified files the analyzer would compare.
func (a *Analyzer) Candidates(ctx context.Context) ([]vcs.StatusEntry, error) {
	if err := a.opts.Git.CheckAvailable(); err != nil {
		return nil, err
	}
	entries, err := a.opts.Git.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query git status: %w", err)
	}
	out := make([]vcs.StatusEntry, 0, len(entries))
	for _, entry := range entries {
		if !entry.Modified() {
			continue
		}
		if !a.opts.Registry.Supports(entry.Path) {
			continue
		}
		if a.opts.Ignore.ShouldIgnore(entry.Path, false) {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// Analyze compares every candidate file against ref.
func (a *Analyzer) Analyze(ctx context.Context, ref string) (*Report, error) {
	candidates, err := a.Candidates(ctx)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeFiles(ctx, ref, CandidatePaths(candidates))
}

// CandidatePaths returns the paths of entries in order.
func CandidatePaths(entries []vcs.StatusEntry) []string {
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, entry.Path)
	}
	return paths
}

type fileOutcome struct {
	result  *FileResult
	entries []Entry
	issues  []Issue
}

// AnalyzeFiles compares the given repository-relative paths against ref.
// The ref is resolved once when there is anything to compare. Per-file
// failures are recorded as issues; only an unusable git, an unknown ref or a
// cancelled context fails the run, and then no partial report is returned.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, ref string, files []string) (*Report, error) {
	if len(files) > 0 {
		if _, err := a.opts.Git.VerifyRef(ctx, ref); err != nil {
			return nil, err
		}
	}

	a.mu.Lock()
	a.done = 0
	a.mu.Unlock()

	outcomes := make([]fileOutcome, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for i, path := range files {
		g.Go(func() error {
			outcome, err := a.analyzeFile(gctx, ref, path)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			a.fileDone(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := &Report{
		RunID:   uuid.NewString(),
		Ref:     ref,
		Root:    a.opts.Root,
		Entries: make([]Entry, 0),
		Files:   make([]FileResult, 0, len(files)),
		Issues:  make([]Issue, 0),
	}
	for _, outcome := range outcomes {
		if outcome.result != nil {
			r.Files = append(r.Files, *outcome.result)
		}
		r.Entries = append(r.Entries, outcome.entries...)
		r.Issues = append(r.Issues, outcome.issues...)
	}
	r.sort()

	a.logger.Debug("analysis complete",
		"run_id", r.RunID,
		"ref", ref,
		"files", len(r.Files),
		"modified", len(r.Entries),
		"issues", len(r.Issues),
	)
	return r, nil
}

func (a *Analyzer) analyzeFile(ctx context.Context, ref, path string) (fileOutcome, error) {
	var outcome fileOutcome

	p, ok := a.opts.Registry.GetParserForFile(path)
	if !ok {
		return outcome, nil
	}
	lang := p.Language()

	current, err := a.readCurrent(path)
	if err != nil {
		outcome.issues = append(outcome.issues, a.issue(Issue{
			File:     path,
			Language: lang,
			Severity: SeverityError,
			Kind:     IssueIO,
			Message:  err.Error(),
			Err:      err,
		}))
		return outcome, nil
	}

	result := &FileResult{Path: path, Language: lang}

	baseline, err := a.opts.Git.Show(ctx, ref, path)
	if err != nil {
		if !errors.Is(err, vcs.ErrMissingBaseline) {
			return outcome, err
		}
		result.BaselineMissing = true
		baseline = nil
		outcome.issues = append(outcome.issues, a.issue(Issue{
			File:     path,
			Language: lang,
			Severity: SeverityWarning,
			Kind:     IssueMissingBaseline,
			Message:  fmt.Sprintf("not present at %s; all functions count as added", ref),
			Err:      err,
		}))
	}

	currentTable, issue, err := a.buildTable(ctx, p, path, current)
	if err != nil {
		return outcome, err
	}
	if issue != nil {
		issue.Snapshot = "working tree"
		outcome.issues = append(outcome.issues, a.issue(*issue))
	}
	baselineTable, issue, err := a.buildTable(ctx, p, path, baseline)
	if err != nil {
		return outcome, err
	}
	if issue != nil {
		issue.Snapshot = ref
		outcome.issues = append(outcome.issues, a.issue(*issue))
	}

	result.Changes = symbols.Diff(currentTable, baselineTable)
	a.logger.Debug("file compared",
		"file", path,
		"functions", result.Changes.Len(),
		"modified", len(result.Changes.Modified),
	)
	for _, name := range result.Changes.Modified {
		outcome.entries = append(outcome.entries, Entry{File: path, Function: name})
	}
	outcome.result = result
	return outcome, nil
}

func (a *Analyzer) readCurrent(path string) ([]byte, error) {
	content, err := os.ReadFile(filepath.Join(a.opts.Root, filepath.FromSlash(path)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &ReadError{Path: path, Err: err}
	}
	return content, nil
}

// buildTable parses content into a symbol table. Malformed source yields an
// empty table plus an issue; only cancellation is returned as an error.
func (a *Analyzer) buildTable(ctx context.Context, p parser.LanguageParser, path string, content []byte) (*symbols.Table, *Issue, error) {
	if len(content) == 0 {
		return symbols.NewTable(), nil, nil
	}
	file, err := p.Parse(ctx, path, content, a.opts.Scope)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		return symbols.NewTable(), &Issue{
			File:     path,
			Language: p.Language(),
			Severity: SeverityWarning,
			Kind:     IssueParse,
			Message:  err.Error(),
			Err:      err,
		}, nil
	}
	defer file.Close()

	table := symbols.Build(file)
	if shadowed := table.Shadowed(); len(shadowed) > 0 {
		a.logger.Debug("duplicate function names, last definition wins",
			"file", path,
			"names", shadowed,
		)
	}
	return table, nil, nil
}

func (a *Analyzer) issue(is Issue) Issue {
	attrs := []any{"file", is.File, "kind", string(is.Kind)}
	if is.Snapshot != "" {
		attrs = append(attrs, "snapshot", is.Snapshot)
	}
	attrs = append(attrs, "error", is.Message)
	if is.Severity == SeverityError {
		a.logger.Error("file skipped", attrs...)
	} else {
		a.logger.Warn("file recovered", attrs...)
	}
	return is
}

func (a *Analyzer) fileDone(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.done++
	if a.opts.OnFile != nil {
		a.opts.OnFile(path, a.done)
	}
}
