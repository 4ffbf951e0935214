package languages

import (
	"strings"

	"github.com/morozRed/bit/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// definitionMatcher turns a node into a Function when the node is a function
// definition for the language. The bool result is false for any other node.
type definitionMatcher func(node *sitter.Node, content []byte) (parser.Function, bool)

// collectDefinitions gathers functions from root according to scope.
// Top-level scope inspects only the direct named children of root; ScopeAll
// visits the whole tree breadth-first so duplicate names resolve in the same
// order a level-by-level walk would see them.
func collectDefinitions(root *sitter.Node, content []byte, scope parser.Scope, match definitionMatcher) []parser.Function {
	functions := make([]parser.Function, 0)
	if root == nil {
		return functions
	}

	if scope == parser.ScopeTopLevel {
		for i := 0; i < int(root.NamedChildCount()); i++ {
			child := root.NamedChild(i)
			if child == nil {
				continue
			}
			if fn, ok := match(child, content); ok {
				functions = append(functions, fn)
			}
		}
		return functions
	}

	parser.Walk(root, func(node *sitter.Node) bool {
		if fn, ok := match(node, content); ok {
			functions = append(functions, fn)
		}
		return true
	})
	return functions
}

func newFunction(name string, node *sitter.Node, lineNode *sitter.Node) (parser.Function, bool) {
	name = strings.TrimSpace(name)
	if name == "" || node == nil {
		return parser.Function{}, false
	}
	if lineNode == nil {
		lineNode = node
	}
	return parser.Function{
		Name: name,
		Line: int(lineNode.StartPoint().Row) + 1,
		Node: node,
	}, true
}

func fieldContent(node *sitter.Node, field string, content []byte) string {
	if node == nil {
		return ""
	}
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Content(content))
}

func parentType(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	parent := node.Parent()
	if parent == nil {
		return ""
	}
	return parent.Type()
}
