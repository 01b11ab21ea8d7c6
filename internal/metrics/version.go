// Package metrics holds the Prometheus collectors of the mock server
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/makima-ai/makima-go/internal/version"
)

// NewBuildInfoCollector returns a gauge exporting the build metadata as labels
func NewBuildInfoCollector() prometheus.Collector {
	info := version.Get()
	return prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "makima_mockserver_build_info",
			Help: "Mock server build metadata exposed as labels with a constant value of 1.",
			ConstLabels: prometheus.Labels{
				"version":    info.Version,
				"git_commit": info.GitCommit,
				"build_date": info.BuildDate,
				"go_version": info.GoVersion,
				"platform":   info.Platform,
			},
		},
		func() float64 { return 1 },
	)
}

// NewRegistry returns a registry with the build info and Go runtime
// collectors registered
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		NewBuildInfoCollector(),
		collectors.NewGoCollector(),
	)
	return reg
}
