package languages

import (
	"context"

	"github.com/morozRed/bit/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// PythonParser implements parsing for Python source files
type PythonParser struct{}

// NewPythonParser creates a new Python parser
func NewPythonParser() *PythonParser {
	return &PythonParser{}
}

func (p *PythonParser) Language() string {
	return "python"
}

func (p *PythonParser) Extensions() []string {
	return []string{".py", ".pyw"}
}

func (p *PythonParser) Parse(ctx context.Context, filename string, content []byte, scope parser.Scope) (*parser.ParsedFile, error) {
	tree, err := parser.ParseTree(ctx, python.GetLanguage(), filename, content)
	if err != nil {
		return nil, err
	}

	result := parser.NewParsedFile(filename, p.Language(), content, tree)
	result.Functions = collectDefinitions(tree.RootNode(), content, scope, p.matchDefinition)
	return result, nil
}

// matchDefinition accepts plain and async function definitions. A decorated
// function is identified by its decorated_definition wrapper so decorator
// edits count as structural changes.
func (p *PythonParser) matchDefinition(node *sitter.Node, content []byte) (parser.Function, bool) {
	switch node.Type() {
	case "function_definition":
		if parentType(node) == "decorated_definition" {
			// Reached through the wrapper already.
			return parser.Function{}, false
		}
		return newFunction(fieldContent(node, "name", content), node, node)

	case "decorated_definition":
		definition := node.ChildByFieldName("definition")
		if definition == nil || definition.Type() != "function_definition" {
			return parser.Function{}, false
		}
		return newFunction(fieldContent(definition, "name", content), node, definition)
	}
	return parser.Function{}, false
}
