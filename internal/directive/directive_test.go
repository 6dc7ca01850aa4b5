package directive

import (
	"errors"
	"math/big"
	"testing"

	"github.com/retroenv/romkit/internal/buffer"
	"github.com/retroenv/romkit/internal/numeric"
	"github.com/retroenv/romkit/internal/source"
	"github.com/retroenv/retrogolib/assert"
)

func directiveLine(keyword, args string) source.Line {
	return source.Line{
		Pos:       source.Position{File: "test.hla", Line: 7},
		Text:      "#" + keyword + " " + args,
		Directive: keyword,
		Args:      args,
	}
}

//nolint:funlen // test functions can be long
func TestParseRom(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		args    string
		want    Directive
		wantErr error
	}{
		{name: "org", keyword: "rom.org", args: "$8000",
			want: RomOrg{Address: 0x8000}},
		{name: "org with maxsize", keyword: "rom.org", args: "0x8000, $4000",
			want: RomOrg{Address: 0x8000, MaxSize: 0x4000}},
		{name: "org without address", keyword: "rom.org", args: "",
			wantErr: ErrMissingRequiredArgument},
		{name: "org with empty address", keyword: "rom.org", args: ", $10",
			wantErr: ErrMissingRequiredArgument},
		{name: "org with invalid address", keyword: "rom.org", args: "start",
			wantErr: numeric.ErrInvalidNumber},
		{name: "org with too many arguments", keyword: "rom.org", args: "1,2,3",
			wantErr: ErrInvalidArgument},
		{name: "end", keyword: "rom.end", args: "",
			want: RomEnd{}},
		{name: "end with argument", keyword: "rom.end", args: "1",
			wantErr: ErrInvalidArgument},
		{name: "bank", keyword: "rom.bank", args: "3",
			want: RomBank{Number: 3}},
		{name: "bank with maxsize", keyword: "rom.bank", args: "3, $100",
			want: RomBank{Number: 3, MaxSize: 0x100}},
		{name: "bank without number", keyword: "rom.bank", args: "",
			wantErr: ErrMissingRequiredArgument},
		{name: "banksize", keyword: "rom.banksize", args: "$400",
			want: RomBanksize{Size: 0x400}},
		{name: "banksize without size", keyword: "rom.banksize", args: "",
			wantErr: ErrMissingRequiredArgument},
		{name: "banksize zero", keyword: "rom.banksize", args: "0",
			wantErr: ErrInvalidArgument},
		{name: "padding symbol", keyword: "rom.padding", args: "FILL",
			wantErr: buffer.ErrInvalidPaddingType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := directiveLine(tt.keyword, tt.args)
			got, err := Parse(line)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, line.Pos, got.Position())

			switch want := tt.want.(type) {
			case RomOrg:
				d, ok := got.(RomOrg)
				assert.True(t, ok)
				assert.Equal(t, want.Address, d.Address)
				assert.Equal(t, want.MaxSize, d.MaxSize)
			case RomBank:
				d, ok := got.(RomBank)
				assert.True(t, ok)
				assert.Equal(t, want.Number, d.Number)
				assert.Equal(t, want.MaxSize, d.MaxSize)
			case RomBanksize:
				d, ok := got.(RomBanksize)
				assert.True(t, ok)
				assert.Equal(t, want.Size, d.Size)
			case RomEnd:
				_, ok := got.(RomEnd)
				assert.True(t, ok)
			default:
				t.Fatalf("unexpected directive %T", tt.want)
			}
		})
	}
}

func TestParsePadding(t *testing.T) {
	got, err := Parse(directiveLine("rom.padding", `"HLA"`))
	assert.NoError(t, err)
	d := got.(RomPadding)
	assert.Equal(t, "HLA", d.Value)

	got, err = Parse(directiveLine("rom.padding", "$ff"))
	assert.NoError(t, err)
	d = got.(RomPadding)
	v, ok := d.Value.(*big.Int)
	assert.True(t, ok)
	assert.Equal(t, int64(0xff), v.Int64())
	assert.Equal(t, "RomPadding <0xff>", d.String())
}

func TestParsePreprocessor(t *testing.T) {
	got, err := Parse(directiveLine("ifndef", "LYNX_H"))
	assert.NoError(t, err)
	assert.Equal(t, "LYNX_H", got.(Ifndef).Symbol)

	got, err = Parse(directiveLine("ifdef", "DEBUG"))
	assert.NoError(t, err)
	assert.Equal(t, "DEBUG", got.(Ifdef).Symbol)

	_, err = Parse(directiveLine("ifndef", ""))
	assert.True(t, errors.Is(err, ErrMissingRequiredArgument))

	_, err = Parse(directiveLine("ifdef", "1ABC"))
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	got, err = Parse(directiveLine("define", "BANKS  $10, 2"))
	assert.NoError(t, err)
	def := got.(Define)
	assert.Equal(t, "BANKS", def.Symbol)
	assert.Equal(t, "$10, 2", def.Value)

	got, err = Parse(directiveLine("define", "LYNX"))
	assert.NoError(t, err)
	assert.Equal(t, "", got.(Define).Value)

	got, err = Parse(directiveLine("include", "<lynx.hla>"))
	assert.NoError(t, err)
	assert.Equal(t, "lynx.hla", got.(Include).Path)

	got, err = Parse(directiveLine("usepath", `"lib"`))
	assert.NoError(t, err)
	assert.Equal(t, "lib", got.(Usepath).Path)

	_, err = Parse(directiveLine("macro", "X"))
	assert.True(t, errors.Is(err, ErrUnknownDirective))
}

func TestParseData(t *testing.T) {
	got, err := Parse(directiveLine("byte", `$01, "AB", %11`))
	assert.NoError(t, err)
	d := got.(Data)
	assert.Equal(t, 1, d.Width)
	assert.Equal(t, []uint64{1, 'A', 'B', 3}, d.Values)

	got, err = Parse(directiveLine("word", "$1234, 2"))
	assert.NoError(t, err)
	d = got.(Data)
	assert.Equal(t, 2, d.Width)
	assert.Equal(t, []uint64{0x1234, 2}, d.Values)

	_, err = Parse(directiveLine("byte", "$100"))
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = Parse(directiveLine("word", ""))
	assert.True(t, errors.Is(err, ErrMissingRequiredArgument))

	got, err = Parse(directiveLine("incbin", `"gfx.bin", $800`))
	assert.NoError(t, err)
	inc := got.(Incbin)
	assert.Equal(t, "gfx.bin", inc.Path)
	assert.Equal(t, 0x800, inc.Limit)

	got, err = Parse(directiveLine("incbin", `"gfx.bin"`))
	assert.NoError(t, err)
	assert.Equal(t, -1, got.(Incbin).Limit)
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("rom.org"))
	assert.False(t, Known("rom.unknown"))
	assert.True(t, IsConditional("ifndef"))
	assert.True(t, IsConditional("endif"))
	assert.False(t, IsConditional("rom.org"))
}

func TestString(t *testing.T) {
	assert.Equal(t, "RomOrg <0x8000>,<0x4000>", RomOrg{Address: 0x8000, MaxSize: 0x4000}.String())
	assert.Equal(t, "RomOrg <0x200>", RomOrg{Address: 0x200}.String())
	assert.Equal(t, "RomBank 2", RomBank{Number: 2}.String())
	assert.Equal(t, "RomBanksize <0x400>", RomBanksize{Size: 0x400}.String())
	assert.Equal(t, "RomEnd", RomEnd{}.String())
}
