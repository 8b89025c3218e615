// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package metrics

import (
	"sync"

	"github.com/cilium/ksnoop/pkg/logger"
	"github.com/cilium/ksnoop/pkg/logger/logfields"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// GetRegistry returns the process wide registry every metrics group is
// attached to.
func GetRegistry() *prometheus.Registry {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
	return registry
}

// WriteTextfile writes everything gathered from the registry to path in the
// text exposition format, replacing the file atomically. The result can be
// picked up by the node exporter textfile collector.
func WriteTextfile(path string) error {
	logger.GetLogger().WithField(logfields.File, path).Debug("Writing metrics textfile")
	return prometheus.WriteToTextfile(path, GetRegistry())
}
