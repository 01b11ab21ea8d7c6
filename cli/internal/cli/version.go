package cli

import (
	"context"
	"encoding/json"

	"github.com/makima-ai/makima-go/internal/version"
)

func VersionCmd(ctx context.Context, rt *Runtime) error {
	info := version.Get()
	versionInfo := map[string]string{
		"makima_version": info.Version,
		"git_commit":     info.GitCommit,
		"build_date":     info.BuildDate,
		"go_version":     info.GoVersion,
		"platform":       info.Platform,
		"makima_url":     rt.Client.BaseURL(),
		"service":        "reachable",
	}
	if err := CheckServerConnection(ctx, rt.Client); err != nil {
		versionInfo["service"] = "unreachable"
	}

	enc := json.NewEncoder(rt.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(versionInfo)
}
