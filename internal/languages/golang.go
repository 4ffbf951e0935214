package languages

import (
	"context"

	"github.com/morozRed/bit/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// GoParser implements parsing for Go source files
type GoParser struct{}

// NewGoParser creates a new Go parser
func NewGoParser() *GoParser {
	return &GoParser{}
}

func (g *GoParser) Language() string {
	return "go"
}

func (g *GoParser) Extensions() []string {
	return []string{".go"}
}

// Parse extracts functions and methods. Go has no named nested functions, so
// both scopes return the same set.
func (g *GoParser) Parse(ctx context.Context, filename string, content []byte, scope parser.Scope) (*parser.ParsedFile, error) {
	tree, err := parser.ParseTree(ctx, golang.GetLanguage(), filename, content)
	if err != nil {
		return nil, err
	}

	result := parser.NewParsedFile(filename, g.Language(), content, tree)
	result.Functions = collectDefinitions(tree.RootNode(), content, parser.ScopeTopLevel, g.matchDefinition)
	return result, nil
}

func (g *GoParser) matchDefinition(node *sitter.Node, content []byte) (parser.Function, bool) {
	switch node.Type() {
	case "function_declaration":
		return newFunction(fieldContent(node, "name", content), node, node)

	case "method_declaration":
		name := fieldContent(node, "name", content)
		if name == "" {
			return parser.Function{}, false
		}
		// Methods are keyed Recv.Name so equal names on different types stay apart.
		if recv := g.receiverType(node.ChildByFieldName("receiver"), content); recv != "" {
			name = recv + "." + name
		}
		return newFunction(name, node, node)
	}
	return parser.Function{}, false
}

func (g *GoParser) receiverType(receiver *sitter.Node, content []byte) string {
	recv := ""
	parser.Walk(receiver, func(node *sitter.Node) bool {
		if recv != "" {
			return false
		}
		if node.Type() == "type_identifier" {
			recv = node.Content(content)
			return false
		}
		return true
	})
	return recv
}
