// Package version holds the build metadata of the makima binaries and the SDK,
// injected with -ldflags, e.g.
// -X github.com/makima-ai/makima-go/internal/version.Version=1.2.3
package version

import (
	"fmt"
	"runtime"
)

// Product prefixes the SDK's User-Agent
const Product = "makima-go"

var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

// Info is served on /version by the mock server and printed by `makima version`
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// UserAgent is sent by the SDK on every request unless the caller sets its own
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s; %s)", Product, Version, GitCommit, runtime.GOOS)
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n%s %s",
		Product, i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform)
}
