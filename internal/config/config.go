// Package config creates the logger and the build options from the
// command line and an optional project file.
package config

import (
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates the logger of the program. Debug output takes
// precedence over quiet mode, quiet mode only reports errors.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case debug:
		cfg.Level = log.DebugLevel
	case quiet:
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
