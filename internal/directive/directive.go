// Package directive contains the parsed, immutable representation of the
// # directives of a source file.
//
// Every directive kind is its own type implementing the sealed Directive
// interface, consumers dispatch with an exhaustive type switch.
package directive

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/retroenv/romkit/internal/numeric"
	"github.com/retroenv/romkit/internal/source"
)

var (
	// ErrUnknownDirective is returned for a # keyword that is not supported.
	ErrUnknownDirective = errors.New("unknown directive")
	// ErrMissingRequiredArgument is returned when a mandatory directive argument is missing.
	ErrMissingRequiredArgument = errors.New("missing required argument")
	// ErrInvalidArgument is returned for malformed or superfluous directive arguments.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Directive is a parsed # directive.
type Directive interface {
	Position() source.Position
	directive()
}

type base struct {
	Pos source.Position
}

// Position returns the source location of the directive.
func (b base) Position() source.Position {
	return b.Pos
}

func (base) directive() {}

type parseFunc func(pos source.Position, args []string) (Directive, error)

var parsers = map[string]parseFunc{
	"if":           parseIf,
	"ifdef":        parseIfdef,
	"ifndef":       parseIfndef,
	"else":         parseElse,
	"endif":        parseEndif,
	"define":       parseDefine,
	"undef":        parseUndef,
	"include":      parseInclude,
	"usepath":      parseUsepath,
	"incbin":       parseIncbin,
	"byte":         parseByte,
	"word":         parseWord,
	"rom.org":      parseRomOrg,
	"rom.end":      parseRomEnd,
	"rom.bank":     parseRomBank,
	"rom.banksize": parseRomBanksize,
	"rom.padding":  parseRomPadding,
}

// conditionals are the keywords that change the inclusion state and are
// therefore processed even inside skipped source.
var conditionals = map[string]struct{}{
	"if":     {},
	"ifdef":  {},
	"ifndef": {},
	"else":   {},
	"endif":  {},
}

// Known returns whether the keyword is a supported directive.
func Known(keyword string) bool {
	_, ok := parsers[keyword]
	return ok
}

// IsConditional returns whether the keyword opens, switches or closes a
// conditional scope.
func IsConditional(keyword string) bool {
	_, ok := conditionals[keyword]
	return ok
}

// Parse converts a directive source line into its typed representation.
func Parse(line source.Line) (Directive, error) {
	parse, ok := parsers[line.Directive]
	if !ok {
		return nil, fmt.Errorf("%w '#%s'", ErrUnknownDirective, line.Directive)
	}

	args, err := splitArgs(line)
	if err != nil {
		return nil, err
	}

	d, err := parse(line.Pos, args)
	if err != nil {
		return nil, fmt.Errorf("#%s: %w", line.Directive, err)
	}
	return d, nil
}

// splitArgs splits the arguments of directives that take a comma separated
// list. #define keeps its value text unsplit.
func splitArgs(line source.Line) ([]string, error) {
	if line.Directive == "define" {
		name, value := line.Args, ""
		if i := strings.IndexAny(name, " \t"); i >= 0 {
			name, value = name[:i], name[i+1:]
		}
		args := []string{strings.TrimSpace(name)}
		if value = strings.TrimSpace(value); value != "" {
			args = append(args, value)
		}
		if args[0] == "" {
			return nil, nil
		}
		return args, nil
	}

	args, err := source.SplitArgs(line.Args)
	if err != nil {
		return nil, fmt.Errorf("#%s: %w", line.Directive, err)
	}
	return args, nil
}

func checkArgs(args []string, required, optional int, names ...string) error {
	if len(args) < required {
		return fmt.Errorf("%w: %s", ErrMissingRequiredArgument, names[len(args)])
	}
	if len(args) > required+optional {
		return fmt.Errorf("%w: expected at most %d arguments, got %d", ErrInvalidArgument, required+optional, len(args))
	}
	for i, arg := range args {
		if arg == "" {
			if i < required {
				return fmt.Errorf("%w: %s", ErrMissingRequiredArgument, names[i])
			}
			return fmt.Errorf("%w: empty %s", ErrInvalidArgument, names[i])
		}
	}
	return nil
}

func parseNumber(arg, name string) (uint64, error) {
	v, err := numeric.Parse(arg)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func parseBigNumber(arg, name string) (*big.Int, error) {
	v, err := numeric.ParseBig(arg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func parseSymbolName(arg string) (string, error) {
	for i, c := range arg {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return "", fmt.Errorf("%w: symbol name '%s'", ErrInvalidArgument, arg)
		}
	}
	return arg, nil
}

func formatMaxSize(maxSize uint64) string {
	if maxSize == 0 {
		return ""
	}
	return fmt.Sprintf(",<0x%x>", maxSize)
}
