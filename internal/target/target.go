// Package target defines the supported image targets and creates their layout stores.
package target

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/retroenv/romkit/internal/layout"
	"github.com/retroenv/romkit/internal/options"
)

const (
	Flat = "flat" // single contiguous image starting at a base address
	Lynx = "lynx" // 256 segments addressed through the cartridge page counter
)

var names = []string{Flat, Lynx}

var extensions = map[string]string{
	Flat: ".bin",
	Lynx: ".lnx",
}

// Names returns the names of all supported targets.
func Names() []string {
	return slices.Clone(names)
}

// Valid returns whether the name is a supported target.
func Valid(name string) bool {
	return slices.Contains(names, name)
}

// Extension returns the file extension of images of the target.
func Extension(name string) string {
	if ext, ok := extensions[name]; ok {
		return ext
	}
	return ".bin"
}

// FromFilename returns the target that uses the extension of the file.
func FromFilename(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	for name, targetExt := range extensions {
		if ext == targetExt {
			return name, true
		}
	}
	return "", false
}

// NewStore creates the layout store for the build target.
func NewStore(build options.Build) (layout.Store, error) {
	switch build.Target {
	case Flat, "":
		if build.Banksize != 0 {
			return nil, fmt.Errorf("%w: bank size set for %s target", layout.ErrBankingUnsupported, Flat)
		}
		if build.Size < 0 || build.Size > layout.MaxRegionSize {
			return nil, fmt.Errorf("%w: image size 0x%x", layout.ErrRegionTooLarge, build.Size)
		}
		return layout.NewFlat(build.Base, build.Size, build.Padding), nil

	case Lynx:
		store, err := layout.NewSegmented(build.Banksize, build.Padding)
		if err != nil {
			return nil, fmt.Errorf("creating segmented store: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported target '%s'", build.Target)
	}
}
