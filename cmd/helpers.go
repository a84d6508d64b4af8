package cmd

import (
	"fmt"
	"strings"

	"github.com/etnz/fterm"
	"github.com/etnz/fterm/menu"
	"github.com/google/subcommands"
)

// show displays a markdown document on the session.
func show(s *menu.Session, md string) subcommands.ExitStatus {
	if err := s.Print(md); err != nil {
		fmt.Fprintf(s.Err(), "Error printing: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// parseRange parses the -s and -e flags of a command.
func parseRange(start, end string) (fterm.Range, error) {
	from, err := fterm.ParseDate(start)
	if err != nil {
		return fterm.Range{}, fmt.Errorf("invalid start date: %w", err)
	}
	to, err := fterm.ParseDate(end)
	if err != nil {
		return fterm.Range{}, fmt.Errorf("invalid end date: %w", err)
	}
	if to.Before(from) {
		return fterm.Range{}, fmt.Errorf("start date %s is after end date %s", from, to)
	}
	return fterm.NewRange(from, to), nil
}

// tail returns the last n elements of s, or all of them if n <= 0.
func tail[T any](s []T, n int) []T {
	if n <= 0 || n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// quoteArg quotes s when it would not read back as a single argument.
func quoteArg(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"'/") {
		return s
	}
	if strings.Contains(s, `"`) {
		return "'" + s + "'"
	}
	return `"` + s + `"`
}
