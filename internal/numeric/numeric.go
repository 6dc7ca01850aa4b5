// Package numeric resolves the numeric literals used in directive arguments.
//
// Supported forms are decimal, hexadecimal with a $ or 0x prefix and binary
// with a % or 0b prefix. Underscores may be used as digit separators.
package numeric

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrInvalidNumber is returned for text that is not a numeric literal.
var ErrInvalidNumber = errors.New("invalid numeric value")

// ParseBig parses a literal of arbitrary size.
func ParseBig(s string) (*big.Int, error) {
	text := strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	if text == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidNumber)
	}

	base := 10
	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(lower, "$"):
		base, text = 16, text[1:]
	case strings.HasPrefix(lower, "0x"):
		base, text = 16, text[2:]
	case strings.HasPrefix(lower, "%"):
		base, text = 2, text[1:]
	case strings.HasPrefix(lower, "0b"):
		base, text = 2, text[2:]
	}

	v, ok := new(big.Int).SetString(text, base)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidNumber, s)
	}
	return v, nil
}

// Parse parses a literal that fits into 64 bits.
func Parse(s string) (uint64, error) {
	v, err := ParseBig(s)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: '%s' exceeds 64 bits", ErrInvalidNumber, s)
	}
	return v.Uint64(), nil
}

// IsLiteral returns whether the text starts like a numeric literal.
func IsLiteral(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	switch c := s[0]; {
	case c >= '0' && c <= '9', c == '$', c == '%':
		return true
	default:
		return false
	}
}
