package version_test

import (
	"runtime"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/termplay/version"
)

func TestGet(t *testing.T) {
	t.Parallel()

	info := version.Get()

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.Revision)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.Contains(t, info.String(), info.Platform)
}

func TestInfoYAML(t *testing.T) {
	t.Parallel()

	info := version.Info{
		Version:   "v1.2.3",
		Revision:  "abc123",
		GoVersion: "go1.25.0",
		Platform:  "linux/amd64",
	}

	out, err := info.YAML()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "buildDate")

	var got version.Info

	require.NoError(t, yaml.Unmarshal(out, &got))
	assert.Equal(t, info, got)
}
