package config

import (
	"encoding/binary"
	"errors"
	"fmt"
	"maps"
	"math"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/retroenv/romkit/internal/buffer"
	"github.com/retroenv/romkit/internal/numeric"
	"github.com/retroenv/romkit/internal/options"
	"github.com/retroenv/romkit/internal/source"
)

var (
	errUnknownKeys  = errors.New("unknown config keys")
	errSizeTooLarge = errors.New("image size too large")
)

// Project is the optional TOML project file of a build.
//
//	target = "lynx"
//	banksize = 0x400
//	padding = 0xff
//	byte_order = "little"
//	include_paths = ["lib"]
//
//	[defines]
//	LYNX = ""
type Project struct {
	Target       string            `toml:"target"`
	Banksize     uint64            `toml:"banksize"`
	Base         uint64            `toml:"base"`
	Size         uint64            `toml:"size"`
	Padding      any               `toml:"padding"` // integer or text
	ByteOrder    string            `toml:"byte_order"`
	IncludePaths []string          `toml:"include_paths"`
	Defines      map[string]string `toml:"defines"`
}

// LoadProject reads a project file. Unknown keys are rejected to catch typos.
func LoadProject(path string) (Project, error) {
	var project Project
	md, err := toml.DecodeFile(path, &project)
	if err != nil {
		return Project{}, fmt.Errorf("decoding project file '%s': %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return Project{}, fmt.Errorf("%w in '%s': %s", errUnknownKeys, path, strings.Join(keys, ", "))
	}
	return project, nil
}

// CreateBuild merges the project file and the command line options into the
// options of a build. Command line values override project file values.
func CreateBuild(opts options.Program) (options.Build, error) {
	build := options.NewBuild()

	var project Project
	if opts.Config != "" {
		var err error
		project, err = LoadProject(opts.Config)
		if err != nil {
			return options.Build{}, err
		}
	}

	build.Target = strings.ToLower(firstNonEmpty(opts.Target, project.Target))
	build.Banksize = firstNonZero(opts.Banksize, project.Banksize)
	build.Base = firstNonZero(opts.Base, project.Base)
	size := firstNonZero(opts.Size, project.Size)
	if size > math.MaxInt {
		return options.Build{}, fmt.Errorf("%w: 0x%x", errSizeTooLarge, size)
	}
	build.Size = int(size)

	order, err := byteOrder(project.ByteOrder, opts.BigEndian)
	if err != nil {
		return options.Build{}, err
	}
	build.Order = order

	padding, err := createPadding(opts.Padding, project.Padding, order)
	if err != nil {
		return options.Build{}, err
	}
	build.Padding = padding

	maps.Copy(build.Defines, project.Defines)
	maps.Copy(build.Defines, opts.Defines)
	build.IncludePaths = append(build.IncludePaths, project.IncludePaths...)
	build.IncludePaths = append(build.IncludePaths, opts.IncludePaths...)
	return build, nil
}

func byteOrder(name string, bigEndian bool) (binary.ByteOrder, error) {
	if bigEndian {
		return binary.BigEndian, nil
	}

	switch strings.ToLower(name) {
	case "", "little":
		return binary.LittleEndian, nil
	case "big":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("unsupported byte order '%s'", name)
	}
}

// createPadding parses the padding flag, a number or quoted text, or falls
// back to the project file value.
func createPadding(flagValue string, projectValue any, order binary.ByteOrder) (buffer.Padding, error) {
	var value any
	switch {
	case flagValue != "":
		if source.IsQuoted(flagValue) {
			text, err := source.Unquote(flagValue)
			if err != nil {
				return buffer.Padding{}, fmt.Errorf("parsing padding: %w", err)
			}
			value = text
			break
		}
		number, err := numeric.ParseBig(flagValue)
		if err != nil {
			return buffer.Padding{}, fmt.Errorf("parsing padding: %w", err)
		}
		value = number

	case projectValue != nil:
		value = projectValue

	default:
		return buffer.Padding{}, nil
	}

	padding, err := buffer.NewPadding(value, order)
	if err != nil {
		return buffer.Padding{}, fmt.Errorf("creating padding: %w", err)
	}
	return padding, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...uint64) uint64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
