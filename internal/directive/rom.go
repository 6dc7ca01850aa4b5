package directive

import (
	"fmt"
	"math/big"

	"github.com/retroenv/romkit/internal/buffer"
	"github.com/retroenv/romkit/internal/numeric"
	"github.com/retroenv/romkit/internal/source"
)

// RomOrg opens a placement cursor at an address: #rom.org <address>[,maxsize]
type RomOrg struct {
	base
	Address uint64
	MaxSize uint64 // 0 if not limited
}

func (d RomOrg) String() string {
	return fmt.Sprintf("RomOrg <0x%x>%s", d.Address, formatMaxSize(d.MaxSize))
}

// RomEnd closes the open placement cursor: #rom.end
type RomEnd struct {
	base
}

func (d RomEnd) String() string {
	return "RomEnd"
}

// RomBank opens a placement cursor at the start of a bank: #rom.bank <number>[,maxsize]
type RomBank struct {
	base
	Number  uint64
	MaxSize uint64 // 0 if not limited
}

func (d RomBank) String() string {
	return fmt.Sprintf("RomBank %d%s", d.Number, formatMaxSize(d.MaxSize))
}

// RomBanksize sets the size of every bank: #rom.banksize <size>
type RomBanksize struct {
	base
	Size uint64
}

func (d RomBanksize) String() string {
	return fmt.Sprintf("RomBanksize <0x%x>", d.Size)
}

// RomPadding sets the fill pattern for unwritten bytes: #rom.padding <value|"text">
// Value is either a string or a *big.Int.
type RomPadding struct {
	base
	Value any
}

func (d RomPadding) String() string {
	switch v := d.Value.(type) {
	case *big.Int:
		return fmt.Sprintf("RomPadding <0x%x>", v)
	default:
		return fmt.Sprintf("RomPadding %q", v)
	}
}

func parseRomOrg(pos source.Position, args []string) (Directive, error) {
	if err := checkArgs(args, 1, 1, "address", "maxsize"); err != nil {
		return nil, err
	}

	address, err := parseNumber(args[0], "address")
	if err != nil {
		return nil, err
	}
	maxSize, err := parseOptionalSize(args)
	if err != nil {
		return nil, err
	}
	return RomOrg{base: base{Pos: pos}, Address: address, MaxSize: maxSize}, nil
}

func parseRomEnd(pos source.Position, args []string) (Directive, error) {
	if err := checkArgs(args, 0, 0); err != nil {
		return nil, err
	}
	return RomEnd{base: base{Pos: pos}}, nil
}

func parseRomBank(pos source.Position, args []string) (Directive, error) {
	if err := checkArgs(args, 1, 1, "number", "maxsize"); err != nil {
		return nil, err
	}

	number, err := parseNumber(args[0], "number")
	if err != nil {
		return nil, err
	}
	maxSize, err := parseOptionalSize(args)
	if err != nil {
		return nil, err
	}
	return RomBank{base: base{Pos: pos}, Number: number, MaxSize: maxSize}, nil
}

func parseRomBanksize(pos source.Position, args []string) (Directive, error) {
	if err := checkArgs(args, 1, 0, "size"); err != nil {
		return nil, err
	}

	size, err := parseNumber(args[0], "size")
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: bank size must not be zero", ErrInvalidArgument)
	}
	return RomBanksize{base: base{Pos: pos}, Size: size}, nil
}

func parseRomPadding(pos source.Position, args []string) (Directive, error) {
	if err := checkArgs(args, 1, 0, "value"); err != nil {
		return nil, err
	}

	d := RomPadding{base: base{Pos: pos}}
	arg := args[0]
	if arg[0] == '"' {
		text, err := unquoteString(arg)
		if err != nil {
			return nil, err
		}
		d.Value = text
		return d, nil
	}

	if !numeric.IsLiteral(arg) {
		return nil, fmt.Errorf("%w: '%s'", buffer.ErrInvalidPaddingType, arg)
	}
	value, err := parseBigNumber(arg, "value")
	if err != nil {
		return nil, err
	}
	d.Value = value
	return d, nil
}

func parseOptionalSize(args []string) (uint64, error) {
	if len(args) < 2 {
		return 0, nil
	}
	return parseNumber(args[1], "maxsize")
}
