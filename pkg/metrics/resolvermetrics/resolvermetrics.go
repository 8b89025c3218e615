// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package resolvermetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cilium/ksnoop/pkg/metrics"
	"github.com/cilium/ksnoop/pkg/metrics/consts"
)

type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeError
)

var outcomeLabelValues = map[Outcome]string{
	OutcomeOK:    "ok",
	OutcomeError: "error",
}

func (o Outcome) String() string {
	return outcomeLabelValues[o]
}

type ErrorType int

const (
	// The trace specification text could not be parsed
	ErrorSyntax ErrorType = iota
	// Function, argument, member or symbol missing
	ErrorNotFound
	// Name or argument count over the supported limits
	ErrorLimit
	// Valid request the resolver cannot express, e.g. predicate on a struct
	ErrorUnsupported
	// BTF or the symbol table could not be read
	ErrorSystem
	ErrorOther
)

var errorTypeLabelValues = map[ErrorType]string{
	ErrorSyntax:      "syntax",
	ErrorNotFound:    "not_found",
	ErrorLimit:       "limit",
	ErrorUnsupported: "unsupported",
	ErrorSystem:      "system",
	ErrorOther:       "other",
}

func (e ErrorType) String() string {
	return errorTypeLabelValues[e]
}

type CacheResult int

const (
	CacheHit CacheResult = iota
	CacheMiss
)

var cacheResultLabelValues = map[CacheResult]string{
	CacheHit:  "hit",
	CacheMiss: "miss",
}

func (c CacheResult) String() string {
	return cacheResultLabelValues[c]
}

var (
	ResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: consts.MetricsNamespace,
		Name:      "resolutions_total",
		Help:      "The total number of trace specifications resolved, by outcome.",
	}, []string{"outcome"})

	ErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: consts.MetricsNamespace,
		Name:      "resolution_errors_total",
		Help:      "The total number of failed trace specification resolutions, by error type.",
	}, []string{"type"})

	SignatureCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: consts.MetricsNamespace,
		Name:      "signature_cache_total",
		Help:      "The total number of function signature cache lookups.",
	}, []string{"result"})

	ValuesBound = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: consts.MetricsNamespace,
		Name:      "values_bound_total",
		Help:      "The total number of values bound to function arguments or return values.",
	})
)

func RegisterMetrics(group metrics.Group) {
	group.MustRegister(ResolutionsTotal)
	group.MustRegister(ErrorsTotal)
	group.MustRegister(SignatureCacheTotal)
	group.MustRegister(ValuesBound)
	group.ExtendInit(InitMetrics)
}

func InitMetrics() {
	// Initialize metrics with labels
	for o := range outcomeLabelValues {
		ResolutionsTotal.WithLabelValues(o.String()).Add(0)
	}
	for er := range errorTypeLabelValues {
		ErrorsTotal.WithLabelValues(er.String()).Add(0)
	}
	for c := range cacheResultLabelValues {
		SignatureCacheTotal.WithLabelValues(c.String()).Add(0)
	}
}

// ResolutionInc counts one resolved specification. Failures are also counted
// under their error type.
func ResolutionInc(er *ErrorType) {
	if er == nil {
		ResolutionsTotal.WithLabelValues(OutcomeOK.String()).Inc()
		return
	}
	ResolutionsTotal.WithLabelValues(OutcomeError.String()).Inc()
	ErrorsTotal.WithLabelValues(er.String()).Inc()
}

func SignatureCacheInc(c CacheResult) {
	SignatureCacheTotal.WithLabelValues(c.String()).Inc()
}

func ValuesBoundAdd(n int) {
	ValuesBound.Add(float64(n))
}
