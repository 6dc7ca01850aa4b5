package buffer

import (
	"encoding/binary"
	"errors"
	"math/big"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestPaddingNumberWidth(t *testing.T) {
	tests := []struct {
		name    string
		value   *big.Int
		want    []byte
		wantErr error
	}{
		{name: "zero", value: big.NewInt(0), want: []byte{0x00}},
		{name: "single byte", value: big.NewInt(0xea), want: []byte{0xea}},
		{name: "two bytes", value: big.NewInt(300), want: []byte{0x2c, 0x01}},
		{name: "three bytes widen to four", value: big.NewInt(0x123456), want: []byte{0x56, 0x34, 0x12, 0x00}},
		{name: "2^40 widens to eight", value: new(big.Int).Lsh(big.NewInt(1), 40),
			want: []byte{0, 0, 0, 0, 0, 0x01, 0, 0}},
		{name: "2^70 is too large", value: new(big.Int).Lsh(big.NewInt(1), 70), wantErr: ErrPaddingValueTooLarge},
		{name: "negative", value: big.NewInt(-1), wantErr: ErrInvalidPaddingType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := PaddingNumber(tt.value, binary.LittleEndian)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, p.Pattern())
		})
	}
}

func TestPaddingByteOrder(t *testing.T) {
	p, err := PaddingNumber(big.NewInt(300), binary.BigEndian)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x2c}, p.Pattern())
}

func TestNewPadding(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		p, err := NewPadding("HLA", nil)
		assert.NoError(t, err)
		assert.Equal(t, []byte("HLA"), p.Pattern())
	})

	t.Run("integer kinds", func(t *testing.T) {
		for _, value := range []any{255, int64(255), uint8(255), uint16(255), uint32(255), uint64(255), uint(255)} {
			p, err := NewPadding(value, nil)
			assert.NoError(t, err)
			assert.Equal(t, []byte{0xff}, p.Pattern())
		}
	})

	t.Run("empty string", func(t *testing.T) {
		_, err := NewPadding("", nil)
		assert.True(t, errors.Is(err, ErrInvalidPaddingType))
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := NewPadding(1.5, nil)
		assert.True(t, errors.Is(err, ErrInvalidPaddingType))
	})

	t.Run("zero value pads with zero", func(t *testing.T) {
		var p Padding
		assert.Equal(t, []byte{0x00}, p.Pattern())
		dst := []byte{1, 2}
		p.fill(dst, 5)
		assert.Equal(t, []byte{0, 0}, dst)
	})
}
