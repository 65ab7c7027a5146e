package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/zekoder/zegraphql/zegraphql/manager"
)

var _ manager.Observer = (*Metrics)(nil)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOperation("documents", "create", "ok", 2*time.Millisecond)
	m.ObserveOperation("documents", "create", "ok", 3*time.Millisecond)
	m.ObserveOperation("documents", "get", "not_found", time.Millisecond)
	m.ObserveSkip("documents", "sort")
	m.RecordRequest("GET", "/api/:entity/:id", "404", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("documents", "create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("documents", "get", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QuerySkippedTotal.WithLabelValues("documents", "sort")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/:entity/:id", "404")))
}

func TestSeparateRegistries(t *testing.T) {
	// Registering twice on one registry would panic; separate registries must not
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
