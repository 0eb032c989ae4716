// Package version reports build information for the codedump binary.
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"gopkg.in/yaml.v3"
)

// Set at build time with -ldflags, for example:
// go build -ldflags "-X 'codedump/pkg/version.Version=1.2.3' -X 'codedump/pkg/version.Commit=abcdefg'"
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// Format selects how Write renders the build information.
type Format string

const (
	FormatText  Format = "text"  // One line: version, commit, build time, toolchain, platform.
	FormatShort Format = "short" // The version only.
	FormatYAML  Format = "yaml"
)

// Info describes the running binary.
type Info struct {
	Version   string `yaml:"version"`
	GitCommit string `yaml:"commit"`
	BuildTime string `yaml:"buildTime"`
	GoVersion string `yaml:"goVersion"`
	Platform  string `yaml:"platform"`
}

// Get returns the build information. Values not injected with -ldflags fall
// back to what the Go toolchain embedded, so `go install` builds still report
// their module version and VCS revision.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.fillFrom(bi)
	}
	return info
}

func (i *Info) fillFrom(bi *debug.BuildInfo) {
	if i.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		i.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if i.GitCommit == "none" {
				i.GitCommit = s.Value
			}
		case "vcs.time":
			if i.BuildTime == "unknown" {
				i.BuildTime = s.Value
			}
		}
	}
}

func (i Info) String() string {
	return fmt.Sprintf("codedump version %s (commit: %s) built at %s with %s on %s",
		i.Version, i.GitCommit, i.BuildTime, i.GoVersion, i.Platform)
}

// Write renders i to w in the given format.
func (i Info) Write(w io.Writer, format Format) error {
	switch format {
	case FormatText, "":
		_, err := fmt.Fprintln(w, i.String())
		return err
	case FormatShort:
		_, err := fmt.Fprintln(w, i.Version)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(i); err != nil {
			return fmt.Errorf("failed to encode version info: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want text, short or yaml)", format)
	}
}
