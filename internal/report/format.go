package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/morozRed/bit/internal/fileutil"
)

type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatJSONL:
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("unsupported format %q (supported: text, json, jsonl)", value)
	}
}

// Write renders r in the requested format. Every format carries the same
// (file, function) pairs in the same order.
func Write(w io.Writer, r *Report, format Format) error {
	switch format {
	case FormatJSON:
		return fileutil.PrintJSON(w, r)
	case FormatJSONL:
		return fileutil.WriteJSONL(w, r.Entries)
	default:
		return WriteText(w, r)
	}
}

// WriteText prints one "<file> :: <name>()" line per modified function.
func WriteText(w io.Writer, r *Report) error {
	for _, e := range r.Entries {
		if _, err := fmt.Fprintln(w, e.String()); err != nil {
			return err
		}
	}
	return nil
}
