// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/retroenv/romkit/internal/options"
	"github.com/retroenv/romkit/internal/pipeline"
	"github.com/retroenv/romkit/internal/target"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// StdoutName is the output name that writes the image to stdout.
const StdoutName = "-"

var errTerminalOutput = errors.New("refusing to write a binary image to a terminal, use -o to set an output file")

// ProcessFile handles the complete file processing workflow
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program, build options.Build) error {
	writer, err := createWriter(opts)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}

	p := pipeline.New(logger)
	if _, err := p.Execute(ctx, opts, build, writer); err != nil {
		_ = closeWriter(writer)
		removeOutput(opts)
		return err
	}

	if err := closeWriter(writer); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	return nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates the image filename for a given input file.
// The extension is taken from the target, an auto-detected target builds a
// flat image unless the input name already selects a target.
func GenerateOutputFilename(inputFile, targetName string) string {
	if targetName == "" {
		targetName = target.Flat
		if name, ok := target.FromFilename(inputFile); ok {
			targetName = name
		}
	}

	ext := filepath.Ext(inputFile)
	output := inputFile[:len(inputFile)-len(ext)] + target.Extension(targetName)
	if output == inputFile {
		output += target.Extension(targetName)
	}
	return output
}

func createWriter(opts options.Program) (io.Writer, error) {
	if opts.Output == "" || opts.Output == StdoutName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, errTerminalOutput
		}
		return os.Stdout, nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	return file, nil
}

func closeWriter(writer io.Writer) error {
	if writer == os.Stdout {
		return nil
	}
	if closer, ok := writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// removeOutput removes a partially written image of a failed build.
func removeOutput(opts options.Program) {
	if opts.Output != "" && opts.Output != StdoutName {
		_ = os.Remove(opts.Output)
	}
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("romkit", log.String("version", buildinfo.Version(version, commit, date)))
}
