package vcs

import (
	"bufio"
	"strconv"
	"strings"
)

// StatusEntry is one line of `git status --porcelain`.
type StatusEntry struct {
	Code     string `json:"status"`
	Path     string `json:"file"`
	OrigPath string `json:"orig_file,omitempty"`
}

// Modified reports whether either status column marks the path modified.
func (e StatusEntry) Modified() bool {
	return strings.Contains(e.Code, "M")
}

// ParseStatus parses porcelain v1 output: "XY path" or "XY orig -> path".
// Lines that do not carry at least a status and a path are dropped.
func ParseStatus(output string) []StatusEntry {
	entries := make([]StatusEntry, 0)
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		var code, rest string
		if len(line) > 3 && line[2] == ' ' {
			code, rest = line[:2], line[3:]
		} else {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				continue
			}
			code, rest = fields[0], strings.Join(fields[1:], " ")
		}

		entry := StatusEntry{Code: strings.TrimSpace(code)}
		if idx := strings.Index(rest, " -> "); idx >= 0 {
			entry.OrigPath = unquotePath(rest[:idx])
			entry.Path = unquotePath(rest[idx+len(" -> "):])
		} else {
			entry.Path = unquotePath(rest)
		}
		if entry.Code == "" || entry.Path == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// unquotePath undoes git's C-style quoting of unusual path names.
func unquotePath(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 && strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) {
		if unquoted, err := strconv.Unquote(raw); err == nil {
			return unquoted
		}
	}
	return raw
}
