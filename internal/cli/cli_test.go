package cli

import (
	"errors"
	"os"
	"testing"

	"github.com/retroenv/romkit/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

func parseArgs(t *testing.T, args ...string) (options.Program, error) {
	t.Helper()
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })

	os.Args = append([]string{"romkit"}, args...)
	return ParseFlags()
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, opts options.Program)
	}{
		{
			name: "input only",
			args: []string{"game.hla"},
			check: func(t *testing.T, opts options.Program) {
				t.Helper()
				assert.Equal(t, "game.hla", opts.Input)
				assert.Equal(t, "", opts.Target)
				assert.Empty(t, opts.Defines)
			},
		},
		{
			name: "layout flags",
			args: []string{"-t", "LYNX", "-banksize", "$400", "-padding", "$ff", "-be", "game.hla"},
			check: func(t *testing.T, opts options.Program) {
				t.Helper()
				assert.Equal(t, "lynx", opts.Target)
				assert.Equal(t, uint64(0x400), opts.Banksize)
				assert.Equal(t, "$ff", opts.Padding)
				assert.True(t, opts.BigEndian)
			},
		},
		{
			name: "defines and include paths",
			args: []string{"-D", "LYNX", "-D", "BANKS=4", "-I", "lib", "-I", "inc", "game.hla"},
			check: func(t *testing.T, opts options.Program) {
				t.Helper()
				assert.Equal(t, map[string]string{"LYNX": "", "BANKS": "4"}, opts.Defines)
				assert.Equal(t, []string{"lib", "inc"}, opts.IncludePaths)
			},
		},
		{
			name: "output files",
			args: []string{"-o", "game.lnx", "-map", "game.map", "-code", "game.asm", "-verify", "ref.lnx", "game.hla"},
			check: func(t *testing.T, opts options.Program) {
				t.Helper()
				assert.Equal(t, "game.lnx", opts.Output)
				assert.Equal(t, "game.map", opts.Map)
				assert.Equal(t, "game.asm", opts.Code)
				assert.Equal(t, "ref.lnx", opts.Verify)
			},
		},
		{
			name: "batch",
			args: []string{"-batch", "*.hla"},
			check: func(t *testing.T, opts options.Program) {
				t.Helper()
				assert.Equal(t, "*.hla", opts.Batch)
				assert.Equal(t, "", opts.Input)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseArgs(t, tt.args...)
			assert.NoError(t, err)
			tt.check(t, opts)
		})
	}
}

func TestParseFlagsErrors(t *testing.T) {
	t.Run("no input", func(t *testing.T) {
		_, err := parseArgs(t)
		var usageErr *UsageError
		assert.True(t, errors.As(err, &usageErr))
	})

	t.Run("flag after input", func(t *testing.T) {
		_, err := parseArgs(t, "game.hla", "-q")
		var usageErr *UsageError
		assert.True(t, errors.As(err, &usageErr))
		assert.ErrorContains(t, err, "-q")
	})

	t.Run("unsupported target", func(t *testing.T) {
		_, err := parseArgs(t, "-t", "nes", "game.hla")
		assert.ErrorContains(t, err, "unsupported target: nes")
	})
}
