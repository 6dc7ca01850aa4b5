package directive

import (
	"fmt"
	"math"

	"github.com/retroenv/romkit/internal/source"
)

// Incbin loads the raw content of a file at the cursor: #incbin "path"[,limit]
type Incbin struct {
	base
	Path  string
	Limit int // -1 loads the whole file
}

func (d Incbin) String() string {
	if d.Limit < 0 {
		return fmt.Sprintf("Incbin %q", d.Path)
	}
	return fmt.Sprintf("Incbin %q,<0x%x>", d.Path, d.Limit)
}

// Data emits values at the cursor: #byte <v>[,<v>...] and #word <v>[,<v>...]
// Strings in a #byte list emit their characters.
type Data struct {
	base
	Width  int // 1 for bytes, 2 for words
	Values []uint64
}

func (d Data) String() string {
	return fmt.Sprintf("Data %d x %d bytes", len(d.Values), d.Width)
}

func parseIncbin(pos source.Position, args []string) (Directive, error) {
	if err := checkArgs(args, 1, 1, "path", "limit"); err != nil {
		return nil, err
	}
	path, err := parsePathArg(args[:1])
	if err != nil {
		return nil, err
	}

	d := Incbin{base: base{Pos: pos}, Path: path, Limit: -1}
	if len(args) > 1 {
		limit, err := parseNumber(args[1], "limit")
		if err != nil {
			return nil, err
		}
		if limit > math.MaxInt32 {
			return nil, fmt.Errorf("%w: limit 0x%x too large", ErrInvalidArgument, limit)
		}
		d.Limit = int(limit)
	}
	return d, nil
}

func parseByte(pos source.Position, args []string) (Directive, error) {
	return parseData(pos, args, 1)
}

func parseWord(pos source.Position, args []string) (Directive, error) {
	return parseData(pos, args, 2)
}

func parseData(pos source.Position, args []string, width int) (Directive, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: value", ErrMissingRequiredArgument)
	}

	limit := uint64(math.MaxUint8)
	if width == 2 {
		limit = math.MaxUint16
	}

	d := Data{base: base{Pos: pos}, Width: width}
	for _, arg := range args {
		if arg == "" {
			return nil, fmt.Errorf("%w: empty value", ErrInvalidArgument)
		}

		if width == 1 && source.IsQuoted(arg) {
			text, err := unquoteString(arg)
			if err != nil {
				return nil, err
			}
			for i := range len(text) {
				d.Values = append(d.Values, uint64(text[i]))
			}
			continue
		}

		v, err := parseNumber(arg, "value")
		if err != nil {
			return nil, err
		}
		if v > limit {
			return nil, fmt.Errorf("%w: value 0x%x does not fit into %d bytes", ErrInvalidArgument, v, width)
		}
		d.Values = append(d.Values, v)
	}
	return d, nil
}
