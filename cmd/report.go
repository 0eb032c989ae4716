package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"codedump/pkg/dump"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// runReport is the YAML document written by --report.
type runReport struct {
	Written int         `yaml:"written"`
	Result  dump.Result `yaml:",inline"`
}

// writeReport writes the result of a run as YAML to path.
func writeReport(path string, result *dump.Result) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(runReport{Written: result.Written(), Result: *result}); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}
