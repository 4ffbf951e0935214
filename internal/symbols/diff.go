package symbols

// ChangeSet partitions the names of two tables. Every name of either table
// appears in exactly one slice; each slice is sorted.
type ChangeSet struct {
	Added     []string `json:"added"`
	Removed   []string `json:"removed"`
	Modified  []string `json:"modified"`
	Unchanged []string `json:"unchanged"`
}

// Diff compares current against baseline by name and digest. It does no
// fuzzy matching: a renamed function is one removal plus one addition.
func Diff(current, baseline *Table) ChangeSet {
	cs := ChangeSet{
		Added:     make([]string, 0),
		Removed:   make([]string, 0),
		Modified:  make([]string, 0),
		Unchanged: make([]string, 0),
	}

	for _, name := range current.Names() {
		cur, _ := current.Lookup(name)
		base, ok := baseline.Lookup(name)
		switch {
		case !ok:
			cs.Added = append(cs.Added, name)
		case cur != base:
			cs.Modified = append(cs.Modified, name)
		default:
			cs.Unchanged = append(cs.Unchanged, name)
		}
	}
	for _, name := range baseline.Names() {
		if _, ok := current.Lookup(name); !ok {
			cs.Removed = append(cs.Removed, name)
		}
	}
	return cs
}

// Len returns the number of classified names.
func (cs ChangeSet) Len() int {
	return len(cs.Added) + len(cs.Removed) + len(cs.Modified) + len(cs.Unchanged)
}

// HasChanges reports whether anything was added, removed or modified.
func (cs ChangeSet) HasChanges() bool {
	return len(cs.Added) > 0 || len(cs.Removed) > 0 || len(cs.Modified) > 0
}
