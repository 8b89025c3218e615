// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Group is a sub-registry of the root registry. Metrics packages register
// their collectors into a group together with a function initializing their
// label values, so that series are exported even before the first event.
type Group interface {
	prometheus.Registerer
	prometheus.Collector
	Init()
	ExtendInit(func())
}

type metricsGroup struct {
	*prometheus.Registry
	inits []func()
}

// NewMetricsGroup creates a new Group backed by a pedantic registry, which
// checks collected metrics against their descriptors.
func NewMetricsGroup() Group {
	return &metricsGroup{Registry: prometheus.NewPedanticRegistry()}
}

// Init runs the registered initializers in registration order.
func (g *metricsGroup) Init() {
	for _, init := range g.inits {
		init()
	}
}

func (g *metricsGroup) ExtendInit(init func()) {
	if init != nil {
		g.inits = append(g.inits, init)
	}
}
