// Package ignore decides which repository paths are excluded from analysis.
package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// FileName holds user rules at the repository root, one gitignore pattern per line.
const FileName = ".bitignore"

var defaultRules = []string{
	".git/",
	"node_modules/",
	"vendor/",
	"__pycache__/",
	"venv/",
	".venv/",
	".tox/",
	".mypy_cache/",
}

// Matcher applies gitignore rules with "last rule wins" behavior.
type Matcher struct {
	gi *gitignore.GitIgnore
}

// NewMatcher builds a matcher from user-provided lines. Default excludes are
// prepended and can be overridden by user negation rules.
func NewMatcher(userRules []string) *Matcher {
	all := make([]string, 0, len(defaultRules)+len(userRules))
	all = append(all, defaultRules...)
	for _, line := range userRules {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		all = append(all, line)
	}
	return &Matcher{gi: gitignore.CompileIgnoreLines(all...)}
}

// Load reads root/.bitignore and appends extra rules (from config) after it.
func Load(root string, extra []string) (*Matcher, error) {
	rules, err := readRules(filepath.Join(root, FileName))
	if err != nil {
		return nil, err
	}
	return NewMatcher(append(rules, extra...)), nil
}

// ShouldIgnore returns true when relPath should be excluded.
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	if m == nil || m.gi == nil {
		return false
	}
	relPath = normalizePath(relPath)
	if relPath == "" || relPath == "." {
		return false
	}
	if isDir && !strings.HasSuffix(relPath, "/") {
		relPath += "/"
	}
	return m.gi.MatchesPath(relPath)
}

func readRules(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	defer f.Close()

	rules := make([]string, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		rules = append(rules, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return rules, nil
}

func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	path = strings.TrimPrefix(path, "/")
	return path
}
