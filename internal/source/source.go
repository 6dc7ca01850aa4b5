// Package source scans source files into lines and resolves include paths.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrUnterminatedString is returned for a quoted argument without closing quote.
var ErrUnterminatedString = errors.New("unterminated string")

// Position is a location in a source file.
type Position struct {
	File string
	Line int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("line %d", p.Line)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Line is a single non-empty source line with comments removed.
type Line struct {
	Pos  Position
	Text string // full line text without comment

	// Directive is the lower case keyword of a # directive without the
	// leading #, it is empty for all other lines.
	Directive string
	Args      string // raw text following the directive keyword
}

// IsDirective returns whether the line is a # directive.
func (l Line) IsDirective() bool {
	return l.Directive != ""
}

// Keyword returns the lower case first word of a non directive line.
func (l Line) Keyword() string {
	word := l.Text
	if i := strings.IndexAny(word, " \t({"); i >= 0 {
		word = word[:i]
	}
	return strings.ToLower(word)
}

// Scan reads all lines from the reader and calls fn for every line that
// is not empty after removing comments. Scanning stops at the first error
// returned by fn.
func Scan(reader io.Reader, file string, fn func(Line) error) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++

		text := strings.TrimSpace(stripComment(scanner.Text()))
		if text == "" {
			continue
		}

		line := Line{
			Pos:  Position{File: file, Line: lineNumber},
			Text: text,
		}
		if text[0] == '#' {
			keyword, args := text[1:], ""
			if i := strings.IndexAny(keyword, " \t"); i >= 0 {
				keyword, args = keyword[:i], keyword[i+1:]
			}
			line.Directive = strings.ToLower(keyword)
			line.Args = strings.TrimSpace(args)
		}

		if err := fn(line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading '%s': %w", file, err)
	}
	return nil
}

// stripComment removes ; and // comments that are not inside a string.
func stripComment(text string) string {
	inString := false
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c == '"':
			if i == 0 || text[i-1] != '\\' {
				inString = !inString
			}
		case inString:
		case c == ';':
			return text[:i]
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			return text[:i]
		}
	}
	return text
}

// SplitArgs splits a comma separated argument list. Commas inside double
// quoted strings do not separate arguments, quotes are kept.
func SplitArgs(args string) ([]string, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return nil, nil
	}

	var (
		result   []string
		start    int
		inString bool
	)
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case '"':
			if i == 0 || args[i-1] != '\\' {
				inString = !inString
			}
		case ',':
			if !inString {
				result = append(result, strings.TrimSpace(args[start:i]))
				start = i + 1
			}
		}
	}
	if inString {
		return nil, fmt.Errorf("%w: %s", ErrUnterminatedString, args)
	}
	result = append(result, strings.TrimSpace(args[start:]))
	return result, nil
}

// IsQuoted returns whether the argument is a double quoted string.
func IsQuoted(arg string) bool {
	return len(arg) >= 2 && arg[0] == '"' && arg[len(arg)-1] == '"'
}

// Unquote returns the content of a double quoted argument. Arguments that
// are not quoted are returned unchanged, angle bracket paths as used by
// include directives have their brackets removed.
func Unquote(arg string) (string, error) {
	switch {
	case IsQuoted(arg):
		s, err := strconv.Unquote(arg)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrUnterminatedString, arg)
		}
		return s, nil

	case len(arg) >= 2 && arg[0] == '<' && arg[len(arg)-1] == '>':
		return arg[1 : len(arg)-1], nil

	default:
		return arg, nil
	}
}
