package verification

import (
	"bytes"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestVerifyOutput(t *testing.T) {
	logger := log.NewTestLogger(t)

	tests := []struct {
		name      string
		reference []byte
		image     []byte
		wantErr   string
	}{
		{
			name:      "identical",
			reference: []byte{0x01, 0x02, 0x03},
			image:     []byte{0x01, 0x02, 0x03},
		},
		{
			name:      "different length",
			reference: []byte{0x01, 0x02},
			image:     []byte{0x01, 0x02, 0x03},
			wantErr:   "mismatched lengths, 2 != 3",
		},
		{
			name:      "mismatching bytes",
			reference: []byte{0x01, 0x02, 0x03, 0x04},
			image:     []byte{0x01, 0xff, 0x03, 0xff},
			wantErr:   "2 offset mismatches",
		},
		{
			name:      "more mismatches than reported",
			reference: make([]byte, 32),
			image:     bytes.Repeat([]byte{0xff}, 32),
			wantErr:   "32 offset mismatches",
		},
		{
			name:      "empty",
			reference: nil,
			image:     []byte{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyOutput(logger, tt.reference, tt.image)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
