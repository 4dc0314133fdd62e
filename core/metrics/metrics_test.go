package metrics_test

import (
	"errors"
	"testing"
	"time"

	"s3-client/core/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewStorageMetrics(reg)

	m.Observe("put", 128, nil, 10*time.Millisecond)
	m.Observe("put", 0, errors.New("boom"), time.Millisecond)
	m.Observe("get", 64, nil, time.Millisecond)
	m.ObserveDeleted(1500)
	m.ObserveDeleted(0)

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				key := mf.GetName()
				for _, lp := range metric.GetLabel() {
					key += "|" + lp.GetValue()
				}
				values[key] = metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				key := mf.GetName()
				for _, lp := range metric.GetLabel() {
					key += "|" + lp.GetValue()
				}
				values[key] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}

	assert.Equal(t, float64(1), values["objstore_client_ops_total|put|ok"])
	assert.Equal(t, float64(1), values["objstore_client_ops_total|put|error"])
	assert.Equal(t, float64(128), values["objstore_client_bytes_total|put"])
	assert.Equal(t, float64(64), values["objstore_client_bytes_total|get"])
	assert.Equal(t, float64(2), values["objstore_client_op_duration_seconds|put"])
	assert.Equal(t, float64(1500), values["objstore_client_deleted_keys_total"])
}

func TestStorageMetrics_ReuseRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := metrics.NewStorageMetrics(reg)
	second := metrics.NewStorageMetrics(reg)

	first.ObserveDeleted(3)
	second.ObserveDeleted(4)

	count, err := testutil.GatherAndCount(reg, "objstore_client_deleted_keys_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNop(t *testing.T) {
	var o metrics.Observer = metrics.Nop{}
	assert.NotPanics(t, func() {
		o.Observe("put", 1, nil, time.Second)
		o.ObserveDeleted(1)
	})
}
