package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morozRed/bit/internal/fileutil"
	"github.com/morozRed/bit/internal/report"
)

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string, fallback bool) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return fallback, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return fallback, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

func OptionalIntFlag(cmd *cobra.Command, name string, fallback int) (int, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return fallback, nil
	}
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		return fallback, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

// ParseLanguageFilter returns the canonical names passed with --lang, or nil
// when the flag is absent or empty.
func ParseLanguageFilter(cmd *cobra.Command) ([]string, error) {
	if cmd == nil || cmd.Flags().Lookup("lang") == nil {
		return nil, nil
	}
	langs, err := cmd.Flags().GetStringSlice("lang")
	if err != nil {
		return nil, fmt.Errorf("failed to read --lang flag: %w", err)
	}
	if len(langs) == 0 {
		return nil, nil
	}

	aliases := map[string]string{
		"go":     "go",
		"golang": "go",
		"python": "python",
		"py":     "python",
		"ruby":   "ruby",
		"rb":     "ruby",
	}

	out := make([]string, 0, len(langs))
	for _, lang := range langs {
		key := strings.ToLower(strings.TrimSpace(lang))
		canonical, ok := aliases[key]
		if !ok {
			return nil, fmt.Errorf("unsupported language %q (supported: go, python, ruby)", lang)
		}
		out = append(out, canonical)
	}

	return fileutil.DedupeStrings(out), nil
}

func ParseOutputFormat(cmd *cobra.Command) (report.Format, error) {
	value, err := OptionalStringFlag(cmd, "format")
	if err != nil {
		return "", err
	}
	return report.ParseFormat(value)
}
