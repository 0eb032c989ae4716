package dump

import (
	"errors"
	"fmt"
)

var (
	// ErrRootNotFound is returned when the root path does not exist.
	ErrRootNotFound = errors.New("root directory not found")
	// ErrRootNotDir is returned when the root path is not a directory.
	ErrRootNotDir = errors.New("root is not a directory")
	// ErrEmptyOutput is returned when no output path is configured.
	ErrEmptyOutput = errors.New("output path is empty")
)

// ConfigError reports a configuration problem detected before any file is
// read or written.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %v: %s", e.Err, e.Path)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
