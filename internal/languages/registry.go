package languages

import "github.com/morozRed/bit/internal/parser"

// DefaultLanguages is the language set analyzed when nothing is configured.
var DefaultLanguages = []string{"python"}

// NewDefaultRegistry creates a registry with all supported language parsers
func NewDefaultRegistry() *parser.Registry {
	r := parser.NewRegistry()

	r.Register(NewPythonParser())
	r.Register(NewGoParser())
	r.Register(NewRubyParser())

	return r
}

// NewRegistryFor returns a registry restricted to the named languages.
func NewRegistryFor(languages []string) (*parser.Registry, error) {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}
	filter := make(map[string]bool, len(languages))
	for _, lang := range languages {
		filter[lang] = true
	}
	return NewDefaultRegistry().Filter(filter)
}
