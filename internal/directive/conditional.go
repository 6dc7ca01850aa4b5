package directive

import (
	"errors"
	"fmt"
	"strings"

	"github.com/retroenv/romkit/internal/numeric"
	"github.com/retroenv/romkit/internal/source"
)

// ErrInvalidConditional is returned for a malformed 6502 block conditional.
var ErrInvalidConditional = errors.New("invalid conditional")

// Mode is the kind of a block conditional.
type Mode uint8

const (
	ModeIf Mode = iota
	ModeElse
	ModeWhile
	ModeDo
	ModeForever
	ModeSwitch
	ModeCase
	ModeDefault
)

var modes = map[string]Mode{
	"if":      ModeIf,
	"else":    ModeElse,
	"while":   ModeWhile,
	"do":      ModeDo,
	"forever": ModeForever,
	"switch":  ModeSwitch,
	"case":    ModeCase,
	"default": ModeDefault,
}

var modeNames = [...]string{"if", "else", "while", "do", "forever", "switch", "case", "default"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// Distance selects between a relative branch and a jump.
type Distance uint8

const (
	Near Distance = iota
	Far
)

// Modifier negates a condition.
type Modifier uint8

const (
	Normal Modifier = iota
	Negated
)

// Condition is a processor flag test.
type Condition uint8

const (
	CondNone Condition = iota
	CondPlus
	CondPositive
	CondGreater
	CondMinus
	CondNegative
	CondLess
	CondOverflow
	CondCarry
	CondNonzero
	CondSet
	CondTrue
	CondOne
	CondEqual
	CondZero
	CondFalse
	CondUnset
	CondClear
)

var conditionNames = map[string]Condition{
	"plus":     CondPlus,
	"positive": CondPositive,
	"greater":  CondGreater,
	"minus":    CondMinus,
	"negative": CondNegative,
	"less":     CondLess,
	"overflow": CondOverflow,
	"carry":    CondCarry,
	"nonzero":  CondNonzero,
	"set":      CondSet,
	"true":     CondTrue,
	"one":      CondOne,
	"1":        CondOne,
	"equal":    CondEqual,
	"zero":     CondZero,
	"0":        CondZero,
	"false":    CondFalse,
	"unset":    CondUnset,
	"clear":    CondClear,
}

var distances = map[string]Distance{
	"near": Near,
	"far":  Far,
}

var modifiers = map[string]Modifier{
	"is":  Normal,
	"has": Normal,
	"no":  Negated,
	"not": Negated,
}

// Register is a 6502 register that a switch statement can test.
type Register uint8

const (
	RegisterA Register = iota
	RegisterX
	RegisterY
)

var registers = map[string]Register{
	"a": RegisterA,
	"x": RegisterX,
	"y": RegisterY,
}

// Conditional is a 6502 block conditional of the high level source. It is
// not evaluated while assembling the image, it is handed to the code
// generator when it appears in live source.
type Conditional struct {
	base
	Mode      Mode
	Distance  Distance
	Modifier  Modifier
	Condition Condition // if and while only
	Register  Register  // switch only
	Immediate uint64    // case only
}

func (c Conditional) String() string {
	return "Conditional " + c.Mode.String()
}

// ParseConditional parses a block conditional line. It returns false if
// the line does not start with a conditional keyword.
func ParseConditional(line source.Line) (Conditional, bool, error) {
	text := strings.TrimSpace(strings.TrimPrefix(line.Text, "}"))
	words := strings.Fields(strings.NewReplacer("(", " ", ")", " ", "{", " ", "}", " ").Replace(text))
	if len(words) == 0 {
		return Conditional{}, false, nil
	}

	mode, ok := modes[strings.ToLower(words[0])]
	if !ok {
		return Conditional{}, false, nil
	}

	c := Conditional{base: base{Pos: line.Pos}, Mode: mode}
	args := words[1:]

	var err error
	switch mode {
	case ModeIf, ModeWhile:
		err = c.parseCondition(args)
	case ModeSwitch:
		err = c.parseSwitch(args)
	case ModeCase:
		err = c.parseCase(args)
	case ModeElse, ModeDo, ModeForever, ModeDefault:
		if len(args) > 0 {
			err = fmt.Errorf("%w: unexpected '%s' after %s", ErrInvalidConditional, strings.Join(args, " "), mode)
		}
	}
	if err != nil {
		return Conditional{}, true, err
	}
	return c, true, nil
}

func (c *Conditional) parseCondition(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: %s is missing condition", ErrInvalidConditional, c.Mode)
	}

	i := 0
	if d, ok := distances[strings.ToLower(args[i])]; ok {
		c.Distance = d
		i++
	}
	if i < len(args) {
		if m, ok := modifiers[strings.ToLower(args[i])]; ok {
			c.Modifier = m
			i++
		}
	}
	if i != len(args)-1 {
		return fmt.Errorf("%w: %s is missing condition", ErrInvalidConditional, c.Mode)
	}

	cond, ok := conditionNames[strings.ToLower(args[i])]
	if !ok {
		return fmt.Errorf("%w: invalid condition '%s'", ErrInvalidConditional, args[i])
	}
	c.Condition = cond
	return nil
}

func (c *Conditional) parseSwitch(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: switch statement can only take a register", ErrInvalidConditional)
	}

	name := strings.ToLower(args[0])
	name = strings.TrimPrefix(name, "reg.")
	reg, ok := registers[name]
	if !ok {
		return fmt.Errorf("%w: switch statement can only take a register", ErrInvalidConditional)
	}
	c.Register = reg
	return nil
}

func (c *Conditional) parseCase(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: case must take an immediate", ErrInvalidConditional)
	}

	value, err := numeric.Parse(strings.TrimPrefix(strings.TrimSuffix(args[0], ":"), "#"))
	if err != nil {
		return fmt.Errorf("%w: case must take an immediate: %w", ErrInvalidConditional, err)
	}
	c.Immediate = value
	return nil
}
