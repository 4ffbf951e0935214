// Package report runs the change detector across a work tree and collects
// the modified functions into one ordered report.
package report

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/morozRed/bit/internal/symbols"
)

// Entry is one structurally modified function.
type Entry struct {
	File     string `json:"file"`
	Function string `json:"function"`
}

// String renders the entry as "<file> :: <name>()".
func (e Entry) String() string {
	return fmt.Sprintf("%s :: %s()", e.File, e.Function)
}

// FileResult is the comparison of one file against the baseline.
type FileResult struct {
	Path            string            `json:"path"`
	Language        string            `json:"language"`
	Changes         symbols.ChangeSet `json:"changes"`
	BaselineMissing bool              `json:"baseline_missing,omitempty"`
}

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type IssueKind string

const (
	IssueParse           IssueKind = "parse"
	IssueMissingBaseline IssueKind = "missing-baseline"
	IssueIO              IssueKind = "io"
)

// Issue is a per-file failure that was recovered or caused the file to be
// skipped. It never aborts a run.
type Issue struct {
	File     string    `json:"file"`
	Language string    `json:"language,omitempty"`
	Snapshot string    `json:"snapshot,omitempty"`
	Severity Severity  `json:"severity"`
	Kind     IssueKind `json:"kind"`
	Message  string    `json:"message"`
	Err      error     `json:"-"`
}

// Report is the result of one analysis run. It is built fresh per run.
type Report struct {
	RunID   string
	Ref     string
	Root    string
	Entries []Entry
	Files   []FileResult
	Issues  []Issue
}

// Functions returns the entries in their "<file> :: <name>()" form.
func (r *Report) Functions() []string {
	out := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, e.String())
	}
	return out
}

// Changed reports whether any function was modified.
func (r *Report) Changed() bool {
	return len(r.Entries) > 0
}

func (r *Report) MarshalJSON() ([]byte, error) {
	files := r.Files
	if files == nil {
		files = []FileResult{}
	}
	issues := r.Issues
	if issues == nil {
		issues = []Issue{}
	}
	return json.Marshal(struct {
		RunID     string       `json:"run_id,omitempty"`
		Ref       string       `json:"ref"`
		Functions []string     `json:"functions"`
		Files     []FileResult `json:"files"`
		Issues    []Issue      `json:"issues"`
	}{
		RunID:     r.RunID,
		Ref:       r.Ref,
		Functions: r.Functions(),
		Files:     files,
		Issues:    issues,
	})
}

func (r *Report) sort() {
	sort.Slice(r.Entries, func(i, j int) bool {
		if r.Entries[i].File != r.Entries[j].File {
			return r.Entries[i].File < r.Entries[j].File
		}
		return r.Entries[i].Function < r.Entries[j].Function
	})
	sort.Slice(r.Files, func(i, j int) bool {
		return r.Files[i].Path < r.Files[j].Path
	})
	sort.SliceStable(r.Issues, func(i, j int) bool {
		if r.Issues[i].File != r.Issues[j].File {
			return r.Issues[i].File < r.Issues[j].File
		}
		return r.Issues[i].Kind < r.Issues[j].Kind
	})
}

// ReadError is a working-copy file that exists but cannot be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
