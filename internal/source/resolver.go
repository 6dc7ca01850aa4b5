package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/retroenv/retrogolib/set"
)

// ErrFileNotFound is returned when a file can not be found in any search path.
var ErrFileNotFound = errors.New("file not found in include paths")

// Resolver finds included files relative to the including file and the
// configured include directories, and tracks which files were included.
type Resolver struct {
	paths    []string
	included set.Set[string]
}

// NewResolver returns a resolver searching the given include directories.
func NewResolver(paths ...string) *Resolver {
	r := &Resolver{
		included: set.New[string](),
	}
	for _, path := range paths {
		r.AddPath(path)
	}
	return r
}

// AddPath appends an include directory to the search list.
func (r *Resolver) AddPath(path string) {
	for _, existing := range r.paths {
		if existing == path {
			return
		}
	}
	r.paths = append(r.paths, path)
}

// Paths returns the include directories in search order.
func (r *Resolver) Paths() []string {
	return r.paths
}

// Resolve returns the path of the named file. Absolute names are used as is,
// relative names are searched next to the including file first and then in
// the include directories.
func (r *Resolver) Resolve(name, includedFrom string) (string, error) {
	if filepath.IsAbs(name) {
		if fileExists(name) {
			return name, nil
		}
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}

	candidates := make([]string, 0, len(r.paths)+2)
	if includedFrom != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(includedFrom), name))
	}
	for _, dir := range r.paths {
		candidates = append(candidates, filepath.Join(dir, name))
	}
	candidates = append(candidates, name)

	for _, candidate := range candidates {
		if fileExists(candidate) {
			return filepath.Clean(candidate), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrFileNotFound, name)
}

// MarkIncluded records the file as included and returns false if it had
// been included before.
func (r *Resolver) MarkIncluded(path string) bool {
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}
	if r.included.Contains(key) {
		return false
	}
	r.included.Add(key)
	return true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
