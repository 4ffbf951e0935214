package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffScenarioAddedRemovedUnchanged(t *testing.T) {
	current := tableFor(t, "def a(): return 1\ndef b(): return 2\n")
	baseline := tableFor(t, "def a(): return 1\ndef c(): return 3\n")

	cs := Diff(current, baseline)
	assert.Equal(t, []string{"b"}, cs.Added)
	assert.Equal(t, []string{"c"}, cs.Removed)
	assert.Equal(t, []string{"a"}, cs.Unchanged)
	assert.Empty(t, cs.Modified)
	assert.True(t, cs.HasChanges())
}

func TestDiffScenarioWhitespaceOnly(t *testing.T) {
	cs := Diff(tableFor(t, "def f(): x = 1\n"), tableFor(t, "def f():   x = 1  # note\n"))
	assert.Equal(t, []string{"f"}, cs.Unchanged)
	assert.False(t, cs.HasChanges())
}

func TestDiffScenarioModified(t *testing.T) {
	cs := Diff(tableFor(t, "def f(): return 1\n"), tableFor(t, "def f(): return 2\n"))
	assert.Equal(t, []string{"f"}, cs.Modified)
	assert.Equal(t, 1, cs.Len())
	assert.True(t, cs.HasChanges())
}

func TestDiffMissingBaselineMarksEverythingAdded(t *testing.T) {
	current := tableFor(t, "def a(): pass\ndef b(): pass\n")

	for _, baseline := range []*Table{NewTable(), nil, tableFor(t, "")} {
		cs := Diff(current, baseline)
		assert.Equal(t, []string{"a", "b"}, cs.Added)
		assert.Empty(t, cs.Modified)
		assert.Empty(t, cs.Unchanged)
		assert.Empty(t, cs.Removed)
	}
}

func TestDiffPartitionsAllNames(t *testing.T) {
	pairs := []struct{ current, baseline string }{
		{"def a(): pass\n", "def a(): return 1\n"},
		{"def a(): pass\ndef b(): pass\n", "def b(): pass\ndef c(): pass\n"},
		{"", "def gone(): pass\n"},
		{"def x(): return 1\ndef y(): return 2\ndef z(): return 3\n", "def y(): return 2\ndef z(): return 4\n"},
	}

	for _, pair := range pairs {
		current := tableFor(t, pair.current)
		baseline := tableFor(t, pair.baseline)
		cs := Diff(current, baseline)

		seen := make(map[string]int)
		for _, group := range [][]string{cs.Added, cs.Removed, cs.Modified, cs.Unchanged} {
			for _, name := range group {
				seen[name]++
			}
		}
		universe := make(map[string]bool)
		for _, name := range append(current.Names(), baseline.Names()...) {
			universe[name] = true
		}

		assert.Len(t, seen, len(universe))
		assert.Equal(t, len(universe), cs.Len())
		for name := range universe {
			assert.Equal(t, 1, seen[name], "name %s must be in exactly one set", name)
		}
		for _, name := range cs.Modified {
			_, inCurrent := current.Lookup(name)
			_, inBaseline := baseline.Lookup(name)
			assert.True(t, inCurrent && inBaseline, "modified name %s must exist in both tables", name)
		}
	}
}

func TestDiffIsDeterministic(t *testing.T) {
	current := tableFor(t, "def q(): pass\ndef a(): pass\ndef m(): return 1\n")
	baseline := tableFor(t, "def m(): return 2\ndef z(): pass\n")

	first := Diff(current, baseline)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Diff(current, baseline))
	}
	assert.Equal(t, []string{"a", "q"}, first.Added)
}

func TestTableDuplicateNamesLastWins(t *testing.T) {
	table := tableFor(t, "def f():\n    return 1\n\ndef f():\n    return 2\n")
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, []string{"f"}, table.Shadowed())

	got, ok := table.Lookup("f")
	require.True(t, ok)
	assert.Equal(t, digestOf(t, "def f():\n    return 2\n", "f"), got)
}

func TestNilTableIsEmpty(t *testing.T) {
	var table *Table
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.Names())
	assert.Empty(t, table.Shadowed())
	_, ok := table.Lookup("f")
	assert.False(t, ok)
	assert.Equal(t, 0, Build(nil).Len())
}
