// Package writer implements the report files of a build.
package writer

import (
	"fmt"
	"io"

	"github.com/retroenv/romkit/internal/directive"
	"github.com/retroenv/romkit/internal/layout"
	"github.com/retroenv/romkit/internal/source"
)

const (
	memoryHeader = `
MEMORY {
`
	memoryRegionTemplate = `    %-12s start = $%04X,  size = $%04X,  used = $%04X,  type = ro, fill = yes;
`
	memoryFooter = `}
`
)

// Writer writes reports of a finished build.
type Writer struct {
	writer io.Writer
}

// New creates a new report writer.
func New(writer io.Writer) *Writer {
	return &Writer{
		writer: writer,
	}
}

// MapInfo contains the data of a memory map report.
type MapInfo struct {
	Target  string
	Input   string
	Regions []layout.Region
	Used    int
	Free    int // -1 if the image is unbounded
}

// NewMapInfo collects the map data of a store.
func NewMapInfo(targetName, input string, store layout.Store) MapInfo {
	return MapInfo{
		Target:  targetName,
		Input:   input,
		Regions: store.Regions(),
		Used:    store.Size(),
		Free:    store.Free(),
	}
}

// WriteMap writes a memory map report in the layout of a linker config.
func (w Writer) WriteMap(info MapInfo) error {
	if err := w.writeMapHeader(info); err != nil {
		return err
	}

	if _, err := io.WriteString(w.writer, memoryHeader); err != nil {
		return fmt.Errorf("writing memory header: %w", err)
	}
	for _, region := range info.Regions {
		if _, err := fmt.Fprintf(w.writer, memoryRegionTemplate,
			region.Name+":", region.Origin, region.Size, region.Used); err != nil {
			return fmt.Errorf("writing memory region line: %w", err)
		}
	}
	if _, err := io.WriteString(w.writer, memoryFooter); err != nil {
		return fmt.Errorf("writing memory footer: %w", err)
	}
	return nil
}

func (w Writer) writeMapHeader(info MapInfo) error {
	if _, err := fmt.Fprintf(w.writer, "; Source: %s\n; Target: %s\n", info.Input, info.Target); err != nil {
		return fmt.Errorf("writing map header: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; Used: $%04X bytes\n", info.Used); err != nil {
		return fmt.Errorf("writing used size: %w", err)
	}

	var err error
	if info.Free < 0 {
		_, err = fmt.Fprintln(w.writer, "; Free: unbounded")
	} else {
		_, err = fmt.Fprintf(w.writer, "; Free: $%04X bytes\n", info.Free)
	}
	if err != nil {
		return fmt.Errorf("writing free size: %w", err)
	}
	return nil
}

// WriteCode writes the live code lines that remain after preprocessing.
// A position comment is emitted whenever the source file changes.
func (w Writer) WriteCode(lines []source.Line, conditionals []directive.Conditional) error {
	if len(conditionals) > 0 {
		if _, err := fmt.Fprintf(w.writer, "; %d block conditionals\n", len(conditionals)); err != nil {
			return fmt.Errorf("writing conditional count: %w", err)
		}
	}

	var file string
	for _, line := range lines {
		if line.Pos.File != file {
			file = line.Pos.File
			if _, err := fmt.Fprintf(w.writer, "; %s\n", file); err != nil {
				return fmt.Errorf("writing file comment: %w", err)
			}
		}

		if _, err := fmt.Fprintf(w.writer, "%s\n", line.Text); err != nil {
			return fmt.Errorf("writing code line: %w", err)
		}
	}
	return nil
}
