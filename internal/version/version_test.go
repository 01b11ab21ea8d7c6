package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()

	assert.Equal(t, Info{
		Version:   "dev",
		GitCommit: "none",
		BuildDate: "unknown",
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}, info)
}

func TestInjectedValues(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})

	Version = "1.2.3"
	GitCommit = "abc123def"
	BuildDate = "2024-01-15T10:30:00Z"

	assert.Equal(t, "makima-go/1.2.3 (abc123def; "+runtime.GOOS+")", UserAgent())
	s := Get().String()
	assert.Contains(t, s, "makima-go 1.2.3\n")
	assert.Contains(t, s, "commit: abc123def")
	assert.Contains(t, s, "built: 2024-01-15T10:30:00Z")
}
