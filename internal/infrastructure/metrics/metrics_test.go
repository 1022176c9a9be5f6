package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCounter(reg)

	c.WithLabelValues("file_registered_total").Inc()
	c.WithLabelValues("file_registered_total").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "palmr_general_counters", families[0].GetName())
	require.Len(t, families[0].GetMetric(), 1)
	assert.Equal(t, 2.0, families[0].GetMetric()[0].GetCounter().GetValue())
}

func TestNewCounter_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCounter(prometheus.NewRegistry())
		NewCounter(prometheus.NewRegistry())
		NewRequestDuration(prometheus.NewRegistry())
	})
}
