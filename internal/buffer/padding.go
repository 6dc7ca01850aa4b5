package buffer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrPaddingValueTooLarge is returned for numeric padding values that need more than 8 bytes.
	ErrPaddingValueTooLarge = errors.New("numeric padding value too large")
	// ErrInvalidPaddingType is returned for padding values that are neither textual nor numeric.
	ErrInvalidPaddingType = errors.New("invalid padding value type, must be a string or number")
)

const maxPaddingBytes = 8

// Padding is the cyclic fill pattern used for every byte of a buffer that was
// reserved but not written. The zero value pads with zero bytes.
type Padding struct {
	pattern []byte
}

// NewPadding creates a padding from a textual or numeric value. Numbers are
// encoded in the given byte order, little endian is used if order is nil.
func NewPadding(value any, order binary.ByteOrder) (Padding, error) {
	switch v := value.(type) {
	case string:
		return PaddingBytes([]byte(v))
	case []byte:
		return PaddingBytes(v)
	case *big.Int:
		return PaddingNumber(v, order)
	case int:
		return PaddingNumber(big.NewInt(int64(v)), order)
	case int64:
		return PaddingNumber(big.NewInt(v), order)
	case uint8:
		return PaddingNumber(new(big.Int).SetUint64(uint64(v)), order)
	case uint16:
		return PaddingNumber(new(big.Int).SetUint64(uint64(v)), order)
	case uint32:
		return PaddingNumber(new(big.Int).SetUint64(uint64(v)), order)
	case uint64:
		return PaddingNumber(new(big.Int).SetUint64(v), order)
	case uint:
		return PaddingNumber(new(big.Int).SetUint64(uint64(v)), order)
	default:
		return Padding{}, fmt.Errorf("%w: %T", ErrInvalidPaddingType, value)
	}
}

// PaddingBytes creates a padding that tiles the given byte sequence verbatim.
func PaddingBytes(pattern []byte) (Padding, error) {
	if len(pattern) == 0 {
		return Padding{}, fmt.Errorf("%w: empty pattern", ErrInvalidPaddingType)
	}
	p := make([]byte, len(pattern))
	copy(p, pattern)
	return Padding{pattern: p}, nil
}

// PaddingNumber creates a padding from a numeric value, encoded to the
// smallest of 1, 2, 4 or 8 bytes that can hold it.
func PaddingNumber(value *big.Int, order binary.ByteOrder) (Padding, error) {
	pattern, err := encodeNumber(value, order)
	if err != nil {
		return Padding{}, err
	}
	return Padding{pattern: pattern}, nil
}

// Pattern returns the tile of the padding.
func (p Padding) Pattern() []byte {
	if len(p.pattern) == 0 {
		return []byte{0}
	}
	return p.pattern
}

// fill writes the pattern into dst. dst starts at the absolute buffer offset
// start, the tile position is start modulo the pattern length so that
// consecutive fills line up.
func (p Padding) fill(dst []byte, start int) {
	if len(p.pattern) == 0 {
		clear(dst)
		return
	}

	j := start % len(p.pattern)
	for i := range dst {
		dst[i] = p.pattern[j]
		j = (j + 1) % len(p.pattern)
	}
}

func (p Padding) String() string {
	if len(p.pattern) == 0 {
		return "0x00"
	}
	return fmt.Sprintf("% X", p.pattern)
}

func encodeNumber(value *big.Int, order binary.ByteOrder) ([]byte, error) {
	if value == nil || value.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative or missing number", ErrInvalidPaddingType)
	}
	if order == nil {
		order = binary.LittleEndian
	}

	size := (value.BitLen() + 7) / 8
	if size > maxPaddingBytes {
		return nil, fmt.Errorf("%w: %s needs %d bytes", ErrPaddingValueTooLarge, value.String(), size)
	}

	v := value.Uint64()
	switch {
	case size <= 1:
		return []byte{byte(v)}, nil

	case size == 2:
		b := make([]byte, 2)
		order.PutUint16(b, uint16(v))
		return b, nil

	case size <= 4:
		b := make([]byte, 4)
		order.PutUint32(b, uint32(v))
		return b, nil

	default:
		b := make([]byte, 8)
		order.PutUint64(b, v)
		return b, nil
	}
}
