// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/romkit/internal/numeric"
	"github.com/retroenv/romkit/internal/options"
	"github.com/retroenv/romkit/internal/target"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	opts := options.Program{
		Defines: map[string]string{},
	}
	readOptionFlags(flags, &opts)
	readLayoutFlags(flags, &opts.LayoutFlags)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Batch == "" && opts.Input == "") {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}

	if opts.Batch == "" && len(args) > 0 {
		opts.Input = args[0]
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: romkit [options] <source file>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after source file, please pass the source file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Target = strings.ToLower(opts.Target)
	if opts.Target == "" || target.Valid(opts.Target) {
		return nil
	}

	return fmt.Errorf("unsupported target: %s. Valid options: %s",
		opts.Target, strings.Join(target.Names(), ", "))
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input source file")
	flags.StringVar(&opts.Output, "o", "", "name of the output ROM image, derived from the input name if not given, - for stdout")
	flags.StringVar(&opts.Config, "c", "", "TOML project config file with target, layout, defines and include paths")
	flags.StringVar(&opts.Map, "map", "", "write a memory map report of the image to the given file")
	flags.StringVar(&opts.Code, "code", "", "write the live code lines that remain after preprocessing to the given file")
	flags.StringVar(&opts.Verify, "verify", "", "verify the generated image by comparing it to the given reference image")
	flags.StringVar(&opts.Template, "template", "", "initialize the image from an existing image before placing data")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask and automatically image file naming, for example *.hla")
	flags.StringVar(&opts.Target, "t", "", "target to build for (flat, lynx) - if not auto-detected from output file extension")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")

	flags.Func("D", "define a symbol, NAME or NAME=VALUE, can be repeated", func(s string) error {
		name, value, _ := strings.Cut(s, "=")
		if name == "" {
			return fmt.Errorf("missing symbol name in '%s'", s)
		}
		opts.Defines[name] = value
		return nil
	})
	flags.Func("I", "add an include directory, can be repeated", func(s string) error {
		opts.IncludePaths = append(opts.IncludePaths, s)
		return nil
	})
}

func readLayoutFlags(flags *flag.FlagSet, opts *options.LayoutFlags) {
	numberFlag(flags, "banksize", "bank size of segmented targets, for example $400", &opts.Banksize)
	numberFlag(flags, "base", "base address of flat images, for example $8000", &opts.Base)
	numberFlag(flags, "size", "size limit of flat images", &opts.Size)
	flags.StringVar(&opts.Padding, "padding", "", "fill value or quoted text for unwritten bytes, for example $ff")
	flags.BoolVar(&opts.BigEndian, "be", false, "use big endian byte order for words and numeric padding")
}

func numberFlag(flags *flag.FlagSet, name, usage string, value *uint64) {
	flags.Func(name, usage, func(s string) error {
		v, err := numeric.Parse(s)
		if err != nil {
			return err
		}
		*value = v
		return nil
	})
}
