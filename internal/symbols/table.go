package symbols

import (
	"sort"

	"github.com/morozRed/bit/internal/parser"
)

// Table maps function names to digests for one file snapshot.
//
// When a file defines the same name twice, the definition seen last in
// traversal order wins and the name is recorded in Shadowed. Which
// definition should win is an open question; the behavior is kept
// deliberately rather than guessed at.
type Table struct {
	digests  map[string]Digest
	shadowed []string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{digests: make(map[string]Digest)}
}

// Build hashes every function of file in extraction order. A nil file yields
// an empty table.
func Build(file *parser.ParsedFile) *Table {
	t := NewTable()
	if file == nil {
		return t
	}
	for _, fn := range file.Functions {
		t.Set(fn.Name, Hash(fn.Node, file.Source))
	}
	return t
}

// Set stores name's digest, replacing any earlier entry.
func (t *Table) Set(name string, digest Digest) {
	if _, exists := t.digests[name]; exists {
		t.shadowed = append(t.shadowed, name)
	}
	t.digests[name] = digest
}

// Lookup returns the digest stored for name.
func (t *Table) Lookup(name string) (Digest, bool) {
	if t == nil {
		return Digest{}, false
	}
	d, ok := t.digests[name]
	return d, ok
}

// Len returns the number of distinct names.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.digests)
}

// Names returns the distinct names, sorted.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.digests))
	for name := range t.digests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Shadowed lists names that were overwritten by a later definition, once per
// overwrite, in the order the overwrites happened.
func (t *Table) Shadowed() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.shadowed...)
}
