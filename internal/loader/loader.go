// Package loader handles loading of existing image files.
package loader

import (
	"bytes"
	"fmt"
	"os"

	"github.com/retroenv/romkit/internal/layout"
)

// Loader handles loading image files from disk.
type Loader struct{}

// New creates a new image loader.
func New() *Loader {
	return &Loader{}
}

// LoadTemplate initializes the store with the content of an existing image,
// placed data then patches the loaded image.
func (l *Loader) LoadTemplate(store layout.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading template image %s: %w", path, err)
	}
	return l.LoadFromBytes(store, data)
}

// LoadFromBytes initializes the store with the given image content.
// This is useful for testing and programmatic usage where the image is already in memory.
func (l *Loader) LoadFromBytes(store layout.Store, data []byte) error {
	if err := store.LoadImage(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("loading template image: %w", err)
	}
	return nil
}

// LoadReference reads a reference image used for verification.
func (l *Loader) LoadReference(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reference image %s: %w", path, err)
	}
	return data, nil
}
