// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package resolvermetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/cilium/ksnoop/pkg/metrics"
)

func TestRegisterAndInit(t *testing.T) {
	group := metrics.NewMetricsGroup()
	RegisterMetrics(group)
	group.Init()

	// 2 outcomes, 6 error types, 2 cache results and the plain counter
	assert.Equal(t, 11, testutil.CollectAndCount(group))
}

func TestResolutionInc(t *testing.T) {
	okBefore := testutil.ToFloat64(ResolutionsTotal.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(ResolutionsTotal.WithLabelValues("error"))
	syntaxBefore := testutil.ToFloat64(ErrorsTotal.WithLabelValues("syntax"))

	ResolutionInc(nil)
	er := ErrorSyntax
	ResolutionInc(&er)
	ResolutionInc(&er)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ResolutionsTotal.WithLabelValues("ok")))
	assert.Equal(t, errBefore+2, testutil.ToFloat64(ResolutionsTotal.WithLabelValues("error")))
	assert.Equal(t, syntaxBefore+2, testutil.ToFloat64(ErrorsTotal.WithLabelValues("syntax")))
}

func TestLabelValues(t *testing.T) {
	assert.Equal(t, "not_found", ErrorNotFound.String())
	assert.Equal(t, "miss", CacheMiss.String())
	assert.Equal(t, "error", OutcomeError.String())
}
