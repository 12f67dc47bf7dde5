// Package version reports build metadata for the termplay binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/goccy/go-yaml"
)

var (
	// Version is the application version, set via ldflags.
	Version string
	// BuildDate is when the binary was built, set via ldflags.
	BuildDate string

	// Revision is the git commit revision.
	Revision = getRevision()
)

// Info is the build metadata of the running binary.
type Info struct {
	Version   string `yaml:"version"`
	Revision  string `yaml:"revision"`
	BuildDate string `yaml:"buildDate,omitempty"`
	GoVersion string `yaml:"goVersion"`
	Platform  string `yaml:"platform"`
}

// Get returns the build metadata. An unset version reads "dev".
func Get() Info {
	v := Version
	if v == "" {
		v = "dev"
	}

	return Info{
		Version:   v,
		Revision:  Revision,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a one-line summary.
func (i Info) String() string {
	return fmt.Sprintf("termplay %s (%s, %s, %s)", i.Version, i.Revision, i.GoVersion, i.Platform)
}

// YAML returns the metadata as a YAML document.
func (i Info) YAML() ([]byte, error) {
	out, err := yaml.Marshal(i)
	if err != nil {
		return nil, fmt.Errorf("encoding version: %w", err)
	}

	return out, nil
}

func getRevision() string {
	rev := "unknown"

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return rev
	}

	modified := false

	for _, v := range buildInfo.Settings {
		switch v.Key {
		case "vcs.revision":
			rev = v.Value
		case "vcs.modified":
			modified = v.Value == "true"
		}
	}

	if modified {
		return rev + "-dirty"
	}

	return rev
}
