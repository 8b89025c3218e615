// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package version

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cilium/ksnoop/pkg/metrics/consts"
)

var buildInfoLabels = []string{"version", "go_version", "commit", "modified"}

// NewBuildInfoCollector returns a gauge fixed at 1 whose labels describe the
// running binary.
func NewBuildInfoCollector() prometheus.Collector {
	info := ReadBuildInfo()
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: consts.MetricsNamespace,
		Name:      "build_info",
		Help:      "Build information about ksnoop.",
	}, buildInfoLabels)
	gauge.WithLabelValues(Version, info.GoVersion, info.Commit, info.Modified).Set(1)
	return gauge
}
