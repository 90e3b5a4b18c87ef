package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_CollectorsAreObservable(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)

	r.StageDuration.WithLabelValues("composite", "cascade").Observe(0.01)
	r.StageErrors.WithLabelValues("validate").Inc()
	r.BatchesTotal.Inc()
	r.KeywordsTotal.WithLabelValues("approved").Inc()
	r.WorkerPoolDepth.Set(3)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["keywordscout_stage_duration_seconds"])
	assert.True(t, names["keywordscout_batches_total"])

	var depthFamily *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "keywordscout_worker_pool_depth" {
			depthFamily = f
		}
	}
	require.NotNil(t, depthFamily)
	assert.Equal(t, 3.0, depthFamily.Metric[0].GetGauge().GetValue())
}
