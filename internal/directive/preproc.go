package directive

import (
	"fmt"

	"github.com/retroenv/romkit/internal/source"
)

// If opens a scope that is live if the operand, a number or the value of a
// symbol, is not zero: #if <value>
type If struct {
	base
	Operand string
}

// Ifdef opens a scope that is live if the symbol is defined: #ifdef <symbol>
type Ifdef struct {
	base
	Symbol string
}

// Ifndef opens a scope that is live if the symbol is not defined: #ifndef <symbol>
type Ifndef struct {
	base
	Symbol string
}

// Else switches to the alternative branch of the innermost scope: #else
type Else struct {
	base
}

// Endif closes the innermost scope: #endif
type Endif struct {
	base
}

// Define defines a symbol: #define <symbol> [value]
type Define struct {
	base
	Symbol string
	Value  string
}

// Undef removes a symbol definition: #undef <symbol>
type Undef struct {
	base
	Symbol string
}

// Include processes another source file in place: #include "path"
type Include struct {
	base
	Path string
}

// Usepath adds an include directory: #usepath <path>
//
// Deprecated in source files, include directories should be passed on the
// command line.
type Usepath struct {
	base
	Path string
}

func (d Ifdef) String() string  { return "Ifdef " + d.Symbol }
func (d Ifndef) String() string { return "Ifndef " + d.Symbol }

func parseIf(pos source.Position, args []string) (Directive, error) {
	if err := checkArgs(args, 1, 0, "value"); err != nil {
		return nil, err
	}
	return If{base: base{Pos: pos}, Operand: args[0]}, nil
}

func parseIfdef(pos source.Position, args []string) (Directive, error) {
	name, err := parseSymbolArg(args)
	if err != nil {
		return nil, err
	}
	return Ifdef{base: base{Pos: pos}, Symbol: name}, nil
}

func parseIfndef(pos source.Position, args []string) (Directive, error) {
	name, err := parseSymbolArg(args)
	if err != nil {
		return nil, err
	}
	return Ifndef{base: base{Pos: pos}, Symbol: name}, nil
}

func parseElse(pos source.Position, args []string) (Directive, error) {
	if err := checkArgs(args, 0, 0); err != nil {
		return nil, err
	}
	return Else{base: base{Pos: pos}}, nil
}

func parseEndif(pos source.Position, args []string) (Directive, error) {
	if err := checkArgs(args, 0, 0); err != nil {
		return nil, err
	}
	return Endif{base: base{Pos: pos}}, nil
}

func parseDefine(pos source.Position, args []string) (Directive, error) {
	if err := checkArgs(args, 1, 1, "symbol", "value"); err != nil {
		return nil, err
	}
	name, err := parseSymbolName(args[0])
	if err != nil {
		return nil, err
	}

	d := Define{base: base{Pos: pos}, Symbol: name}
	if len(args) > 1 {
		d.Value = args[1]
	}
	return d, nil
}

func parseUndef(pos source.Position, args []string) (Directive, error) {
	name, err := parseSymbolArg(args)
	if err != nil {
		return nil, err
	}
	return Undef{base: base{Pos: pos}, Symbol: name}, nil
}

func parseInclude(pos source.Position, args []string) (Directive, error) {
	path, err := parsePathArg(args)
	if err != nil {
		return nil, err
	}
	return Include{base: base{Pos: pos}, Path: path}, nil
}

func parseUsepath(pos source.Position, args []string) (Directive, error) {
	path, err := parsePathArg(args)
	if err != nil {
		return nil, err
	}
	return Usepath{base: base{Pos: pos}, Path: path}, nil
}

func parseSymbolArg(args []string) (string, error) {
	if err := checkArgs(args, 1, 0, "symbol"); err != nil {
		return "", err
	}
	return parseSymbolName(args[0])
}

func parsePathArg(args []string) (string, error) {
	if err := checkArgs(args, 1, 0, "path"); err != nil {
		return "", err
	}
	path, err := source.Unquote(args[0])
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if path == "" {
		return "", fmt.Errorf("%w: path", ErrMissingRequiredArgument)
	}
	return path, nil
}

func unquoteString(arg string) (string, error) {
	text, err := source.Unquote(arg)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return text, nil
}
