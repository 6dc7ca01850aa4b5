// Package detector handles build target detection.
package detector

import (
	"github.com/retroenv/romkit/internal/target"
	"github.com/retroenv/retrogolib/log"
)

// Detector handles target detection from file extensions and options.
type Detector struct {
	logger *log.Logger
}

// New creates a new target detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the build target. An explicitly configured target wins,
// otherwise the target is detected from the output filename extension and
// then from the input filename extension, falling back to a flat image.
func (d *Detector) Detect(configured, input, output string) string {
	if configured != "" {
		return configured
	}

	name := d.detectFromFiles(input, output)
	d.logger.Debug("Auto-detected target",
		log.String("target", name),
		log.String("output", output))
	return name
}

func (d *Detector) detectFromFiles(input, output string) string {
	if name, ok := target.FromFilename(output); ok {
		return name
	}
	if name, ok := target.FromFilename(input); ok {
		return name
	}
	return target.Flat
}
