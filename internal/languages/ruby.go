package languages

import (
	"context"

	"github.com/morozRed/bit/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"
)

// RubyParser implements parsing for Ruby source files
type RubyParser struct{}

// NewRubyParser creates a new Ruby parser
func NewRubyParser() *RubyParser {
	return &RubyParser{}
}

func (r *RubyParser) Language() string {
	return "ruby"
}

func (r *RubyParser) Extensions() []string {
	return []string{".rb", ".rake"}
}

func (r *RubyParser) Parse(ctx context.Context, filename string, content []byte, scope parser.Scope) (*parser.ParsedFile, error) {
	tree, err := parser.ParseTree(ctx, ruby.GetLanguage(), filename, content)
	if err != nil {
		return nil, err
	}

	result := parser.NewParsedFile(filename, r.Language(), content, tree)
	result.Functions = collectDefinitions(tree.RootNode(), content, scope, r.matchDefinition)
	return result, nil
}

func (r *RubyParser) matchDefinition(node *sitter.Node, content []byte) (parser.Function, bool) {
	switch node.Type() {
	case "method":
		return newFunction(fieldContent(node, "name", content), node, node)

	case "singleton_method":
		name := fieldContent(node, "name", content)
		if name == "" {
			return parser.Function{}, false
		}
		if object := fieldContent(node, "object", content); object != "" {
			name = object + "." + name
		}
		return newFunction(name, node, node)
	}
	return parser.Function{}, false
}
