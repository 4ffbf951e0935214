package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_DefaultAndUserOverrides(t *testing.T) {
	m := NewMatcher([]string{
		"# generated code",
		"migrations/",
		"*_pb2.py",
	})

	cases := []struct {
		path    string
		isDir   bool
		ignored bool
	}{
		{path: ".git/config", isDir: false, ignored: true},
		{path: "node_modules/pkg/index.js", isDir: false, ignored: true},
		{path: "pkg/__pycache__/mod.py", isDir: false, ignored: true},
		{path: "migrations/0001_initial.py", isDir: false, ignored: true},
		{path: "api/service_pb2.py", isDir: false, ignored: true},
		{path: "venv", isDir: true, ignored: true},
		{path: "src/main.py", isDir: false, ignored: false},
		{path: "./app.py", isDir: false, ignored: false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ignored, m.ShouldIgnore(tc.path, tc.isDir), tc.path)
	}
}

func TestLoadReadsIgnoreFileAndExtraRules(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("scripts/\n"), 0644))

	m, err := Load(root, []string{"legacy.py"})
	require.NoError(t, err)
	assert.True(t, m.ShouldIgnore("scripts/run.py", false))
	assert.True(t, m.ShouldIgnore("legacy.py", false))
	assert.False(t, m.ShouldIgnore("app.py", false))
}

func TestLoadWithoutIgnoreFile(t *testing.T) {
	m, err := Load(t.TempDir(), nil)
	require.NoError(t, err)
	assert.False(t, m.ShouldIgnore("app.py", false))
}

func TestNilMatcherIgnoresNothing(t *testing.T) {
	var m *Matcher
	assert.False(t, m.ShouldIgnore(".git/config", false))
}
