// Package pipeline orchestrates the image build workflow stages.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/romkit/internal/detector"
	"github.com/retroenv/romkit/internal/layout"
	"github.com/retroenv/romkit/internal/loader"
	"github.com/retroenv/romkit/internal/options"
	"github.com/retroenv/romkit/internal/preprocessor"
	"github.com/retroenv/romkit/internal/target"
	"github.com/retroenv/romkit/internal/verification"
	"github.com/retroenv/romkit/internal/writer"
	"github.com/retroenv/retrogolib/log"
)

// Pipeline orchestrates the complete build workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
}

// Result contains the outcome of a build.
type Result struct {
	Target string
	Image  []byte
	Store  layout.Store
	Source preprocessor.Result
}

type processFunc func(session *preprocessor.Session) (preprocessor.Result, error)

// New creates a new build pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
	}
}

// Execute builds the image from the input source file and writes it to the output.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, build options.Build, output io.Writer) (*Result, error) {
	return p.execute(opts, build, output, func(session *preprocessor.Session) (preprocessor.Result, error) {
		return session.ProcessFile(ctx, opts.Input)
	})
}

// ExecuteWithSource builds the image from an already opened source.
// This is useful for testing and programmatic usage where the source is already in memory.
func (p *Pipeline) ExecuteWithSource(ctx context.Context, reader io.Reader, opts options.Program,
	build options.Build, output io.Writer) (*Result, error) {

	return p.execute(opts, build, output, func(session *preprocessor.Session) (preprocessor.Result, error) {
		return session.Process(ctx, reader, opts.Input)
	})
}

func (p *Pipeline) execute(opts options.Program, build options.Build, output io.Writer, process processFunc) (*Result, error) {
	build.Target = p.detector.Detect(build.Target, opts.Input, opts.Output)

	store, err := target.NewStore(build)
	if err != nil {
		return nil, fmt.Errorf("creating %s store: %w", build.Target, err)
	}

	if opts.Template != "" {
		if err := p.loader.LoadTemplate(store, opts.Template); err != nil {
			return nil, err
		}
	}

	p.printInfo(opts, build)

	session := preprocessor.New(p.logger, store,
		preprocessor.WithByteOrder(build.Order),
		preprocessor.WithIncludePaths(build.IncludePaths...),
		preprocessor.WithDefines(build.Defines),
	)
	source, err := process(session)
	if err != nil {
		return nil, fmt.Errorf("preprocessing: %w", err)
	}

	image, err := saveImage(store, output)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Target: build.Target,
		Image:  image,
		Store:  store,
		Source: source,
	}
	if err := p.writeReports(opts, result); err != nil {
		return nil, err
	}

	if opts.Verify != "" {
		if err := p.verify(opts.Verify, image); err != nil {
			return nil, fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful")
	}

	p.logger.Debug("Image built",
		log.String("target", build.Target),
		log.Int("size", len(image)),
		log.Int("used", store.Size()),
		log.Int("warnings", source.Warnings))
	return result, nil
}

func saveImage(store layout.Store, output io.Writer) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := store.Save(buf); err != nil {
		return nil, fmt.Errorf("saving image: %w", err)
	}

	image := buf.Bytes()
	if _, err := output.Write(image); err != nil {
		return nil, fmt.Errorf("writing image: %w", err)
	}
	return image, nil
}

// writeReports writes the optional memory map and code reports.
func (p *Pipeline) writeReports(opts options.Program, result *Result) error {
	if opts.Map != "" {
		info := writer.NewMapInfo(result.Target, opts.Input, result.Store)
		err := writeReport(opts.Map, func(w *writer.Writer) error {
			return w.WriteMap(info)
		})
		if err != nil {
			return fmt.Errorf("writing memory map: %w", err)
		}
	}

	if opts.Code != "" {
		err := writeReport(opts.Code, func(w *writer.Writer) error {
			return w.WriteCode(result.Source.Code, result.Source.Conditionals)
		})
		if err != nil {
			return fmt.Errorf("writing code: %w", err)
		}
	}
	return nil
}

func writeReport(path string, write func(w *writer.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file '%s': %w", path, err)
	}

	if err := write(writer.New(file)); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing file '%s': %w", path, err)
	}
	return nil
}

func (p *Pipeline) verify(referencePath string, image []byte) error {
	reference, err := p.loader.LoadReference(referencePath)
	if err != nil {
		return err
	}
	return verification.VerifyOutput(p.logger, reference, image)
}

// printInfo prints information about the image being built.
func (p *Pipeline) printInfo(opts options.Program, build options.Build) {
	if opts.Quiet {
		return
	}

	switch build.Target {
	case target.Lynx:
		p.logger.Info("Building Lynx ROM image",
			log.String("file", opts.Input),
			log.Hex("banksize", build.Banksize),
		)

	default:
		p.logger.Info("Building flat ROM image",
			log.String("file", opts.Input),
			log.Hex("base", build.Base),
		)
	}
}
