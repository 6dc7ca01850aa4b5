// Package options contains the program options.
package options

import (
	"encoding/binary"

	"github.com/retroenv/romkit/internal/buffer"
)

// Parameters contains file path options.
type Parameters struct {
	Input    string `flag:"i" usage:"input source file"`
	Output   string `flag:"o" usage:"output ROM image file (default: derived from input)"`
	Config   string `flag:"c" usage:"TOML project config file"`
	Map      string `flag:"map" usage:"write a memory map report to the file"`
	Code     string `flag:"code" usage:"write the preprocessed code lines to the file"`
	Verify   string `flag:"verify" usage:"compare the output with a reference image"`
	Template string `flag:"template" usage:"initialize the image from an existing image"`
	Batch    string `flag:"batch" usage:"batch process files matching pattern (e.g. *.hla)"`
}

// Flags contains behavior options.
type Flags struct {
	Target string `flag:"t" usage:"target: flat, lynx (default: auto-detect)"`
	Debug  bool   `flag:"debug" usage:"enable debug logging"`
	Quiet  bool   `flag:"q" usage:"quiet mode"`
}

// LayoutFlags contains image layout options. Zero values mean not set.
type LayoutFlags struct {
	Banksize  uint64 `flag:"banksize" usage:"bank size of segmented targets"`
	Base      uint64 `flag:"base" usage:"base address of flat images"`
	Size      uint64 `flag:"size" usage:"size limit of flat images"`
	Padding   string `flag:"padding" usage:"fill value or quoted text for unwritten bytes"`
	BigEndian bool   `flag:"be" usage:"use big endian byte order for words and padding"`
}

// Program options of the image builder.
type Program struct {
	Parameters
	Flags
	LayoutFlags

	Defines      map[string]string // -D NAME[=VALUE]
	IncludePaths []string          // -I DIR
}

// Build defines the resolved options of a single build, merged from the
// project config file and the command line.
type Build struct {
	Target   string
	Banksize uint64
	Base     uint64
	Size     int
	Padding  buffer.Padding
	Order    binary.ByteOrder

	Defines      map[string]string
	IncludePaths []string
}

// NewBuild returns build options with default values.
func NewBuild() Build {
	return Build{
		Order:   binary.LittleEndian,
		Defines: map[string]string{},
	}
}
