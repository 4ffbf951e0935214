package vcs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
	logFormat = "--pretty=format:%H" + fieldSep + "%h" + fieldSep + "%s" + fieldSep + "%an" + fieldSep + "%aI" + recordSep
)

// Commit is one entry of the commit history.
type Commit struct {
	Hash      string    `json:"hash"`
	ShortHash string    `json:"short_hash"`
	Message   string    `json:"msg"`
	Author    string    `json:"author"`
	Date      time.Time `json:"date"`
}

// Log returns up to n commits reachable from HEAD, newest first. A repository
// without commits yields an empty history.
func (g *Git) Log(ctx context.Context, n int) ([]Commit, error) {
	if n < 1 {
		return nil, fmt.Errorf("commit count must be positive, got %d", n)
	}
	if _, err := g.VerifyRef(ctx, "HEAD"); err != nil {
		if errors.Is(err, ErrUnknownRef) {
			return []Commit{}, nil
		}
		return nil, err
	}
	out, err := g.run(ctx, "log", "-n", strconv.Itoa(n), logFormat)
	if err != nil {
		return nil, notRepository(err)
	}
	return ParseLog(string(out))
}

// ParseLog parses output produced with the Log pretty format.
func ParseLog(output string) ([]Commit, error) {
	commits := make([]Commit, 0)
	for _, record := range strings.Split(output, recordSep) {
		record = strings.Trim(record, "\n")
		if record == "" {
			continue
		}
		fields := strings.Split(record, fieldSep)
		if len(fields) != 5 {
			return nil, fmt.Errorf("malformed log record %q", record)
		}
		date, err := time.Parse(time.RFC3339, fields[4])
		if err != nil {
			return nil, fmt.Errorf("malformed commit date %q: %w", fields[4], err)
		}
		commits = append(commits, Commit{
			Hash:      fields[0],
			ShortHash: fields[1],
			Message:   fields[2],
			Author:    fields[3],
			Date:      date,
		})
	}
	return commits, nil
}
