package parser

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Scope controls which function definitions a parser extracts.
type Scope int

const (
	// ScopeTopLevel extracts only definitions that are direct children of the
	// module (decorated definitions included).
	ScopeTopLevel Scope = iota
	// ScopeAll extracts every function definition in breadth-first order,
	// including methods and nested functions.
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeTopLevel:
		return "top-level"
	case ScopeAll:
		return "all"
	default:
		return "unknown"
	}
}

// ParseScope converts a config or flag value into a Scope.
func ParseScope(value string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "top-level", "toplevel", "top":
		return ScopeTopLevel, nil
	case "all", "nested":
		return ScopeAll, nil
	default:
		return ScopeTopLevel, fmt.Errorf("unsupported scope %q (supported: top-level, all)", value)
	}
}

// Function is one function definition extracted from a source file.
type Function struct {
	Name string
	Line int
	// Node is the subtree that identifies the function structurally. For
	// decorated Python functions this is the decorated_definition wrapper.
	Node *sitter.Node
}

// ParsedFile holds the functions of one file content snapshot. Function nodes
// stay valid until Close is called.
type ParsedFile struct {
	Path      string
	Language  string
	Source    []byte
	Functions []Function

	tree *sitter.Tree
}

// NewParsedFile wraps a tree-sitter tree so callers can release it with Close.
func NewParsedFile(path, language string, source []byte, tree *sitter.Tree) *ParsedFile {
	return &ParsedFile{
		Path:      path,
		Language:  language,
		Source:    source,
		Functions: make([]Function, 0),
		tree:      tree,
	}
}

// Close releases the underlying syntax tree.
func (f *ParsedFile) Close() {
	if f == nil || f.tree == nil {
		return
	}
	f.tree.Close()
	f.tree = nil
}

// Names returns function names in extraction order, duplicates included.
func (f *ParsedFile) Names() []string {
	if f == nil {
		return nil
	}
	names := make([]string, 0, len(f.Functions))
	for _, fn := range f.Functions {
		names = append(names, fn.Name)
	}
	return names
}
