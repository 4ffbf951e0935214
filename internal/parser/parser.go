package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// LanguageParser defines the interface each language must implement
type LanguageParser interface {
	// Language returns the language name (e.g., "go", "python")
	Language() string

	// Extensions returns file extensions this parser handles
	Extensions() []string

	// Parse extracts function definitions from source code. Implementations
	// must be safe for concurrent use.
	Parse(ctx context.Context, filename string, content []byte, scope Scope) (*ParsedFile, error)
}

// Registry holds all registered language parsers
type Registry struct {
	parsers   map[string]LanguageParser // language name -> parser
	extToLang map[string]string         // extension -> language name
}

// NewRegistry creates a new parser registry
func NewRegistry() *Registry {
	return &Registry{
		parsers:   make(map[string]LanguageParser),
		extToLang: make(map[string]string),
	}
}

// Register adds a language parser to the registry
func (r *Registry) Register(p LanguageParser) {
	lang := p.Language()
	r.parsers[lang] = p
	for _, ext := range p.Extensions() {
		r.extToLang[strings.ToLower(ext)] = lang
	}
}

// GetParserForFile returns the appropriate parser for a file
func (r *Registry) GetParserForFile(filename string) (LanguageParser, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	lang, ok := r.extToLang[ext]
	if !ok {
		return nil, false
	}
	parser, ok := r.parsers[lang]
	return parser, ok
}

// Supports reports whether filename has a registered extension.
func (r *Registry) Supports(filename string) bool {
	_, ok := r.GetParserForFile(filename)
	return ok
}

// SupportedExtensions returns all supported file extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Languages returns the registered language names, sorted.
func (r *Registry) Languages() []string {
	langs := make([]string, 0, len(r.parsers))
	for lang := range r.parsers {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Filter returns a registry restricted to the given languages. An empty
// filter returns r unchanged.
func (r *Registry) Filter(languages map[string]bool) (*Registry, error) {
	if len(languages) == 0 {
		return r, nil
	}
	filtered := NewRegistry()
	for lang := range languages {
		p, ok := r.parsers[lang]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
		}
		filtered.Register(p)
	}
	return filtered, nil
}

// ParseContent parses content as if it were stored at filename.
func (r *Registry) ParseContent(ctx context.Context, filename string, content []byte, scope Scope) (*ParsedFile, error) {
	p, ok := r.GetParserForFile(filename)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, filename)
	}
	return p.Parse(ctx, filename, content, scope)
}

// ParseTree runs a fresh tree-sitter parser over content and rejects trees
// that contain ERROR or MISSING nodes.
func ParseTree(ctx context.Context, lang *sitter.Language, filename string, content []byte) (*sitter.Tree, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(lang)

	tree, err := p.ParseCtx(ctx, nil, content)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ParseError{File: filename, Message: "parser failed", Cause: err}
	}

	root := tree.RootNode()
	if root.HasError() {
		perr := &ParseError{File: filename, Message: "invalid syntax"}
		if bad := firstErrorNode(root); bad != nil {
			point := bad.StartPoint()
			perr.Line = int(point.Row) + 1
			perr.Column = int(point.Column) + 1
			if bad.IsMissing() {
				perr.Message = fmt.Sprintf("missing %s", bad.Type())
			}
		}
		tree.Close()
		return nil, perr
	}
	return tree, nil
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits node and its descendants breadth-first. Returning false from
// visit stops descent into that node's children.
func Walk(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	queue := []*sitter.Node{node}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if !visit(current) {
			continue
		}
		for i := 0; i < int(current.NamedChildCount()); i++ {
			if child := current.NamedChild(i); child != nil {
				queue = append(queue, child)
			}
		}
	}
}
