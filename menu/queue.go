package menu

import (
	"strings"
	"unicode"
)

// ParseQueue splits a line of input into commands separated by "/".
//
// A leading "/" starts from the root menu, so "home" is inserted first. Empty
// commands are dropped, and "/" within quotes does not split. A quote only
// opens at the start of a word, so apostrophes ("consumer's") are literal.
func ParseQueue(line string) []string {
	line = strings.TrimSpace(line)
	var queue []string
	if strings.HasPrefix(line, "/") {
		queue = append(queue, "home")
	}
	var current strings.Builder
	var quote, prev rune
	flush := func() {
		if cmd := strings.TrimSpace(current.String()); cmd != "" {
			queue = append(queue, cmd)
		}
		current.Reset()
	}
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case isQuote(r) && opens(prev):
			quote = r
		case r == '/':
			flush()
			prev = r
			continue
		}
		current.WriteRune(r)
		prev = r
	}
	flush()
	return queue
}

func isQuote(r rune) bool { return r == '"' || r == '\'' }

// opens reports whether a quote following prev starts a quoted word: at the
// beginning, after white space, a command separator or a flag's "=".
func opens(prev rune) bool {
	return prev == 0 || prev == '/' || prev == '=' || unicode.IsSpace(prev)
}

// SplitArgs splits a command into arguments on white space, honoring single
// and double quotes that start a word. Quotes are removed. An unterminated
// quote runs to the end.
func SplitArgs(cmd string) []string {
	var args []string
	var current strings.Builder
	var quote, prev rune
	inArg := false
	for _, r := range cmd {
		last := prev
		prev = r
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case isQuote(r) && (!inArg || last == '='):
			quote = r
			inArg = true
		case unicode.IsSpace(r):
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}
	if inArg {
		args = append(args, current.String())
	}
	return args
}
