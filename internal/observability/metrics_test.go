package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnregisteredMetrics_RegistersCleanly(t *testing.T) {
	m := NewUnregisteredMetrics()

	reg := prometheus.NewPedanticRegistry()
	for _, c := range m.Collectors() {
		require.NoError(t, reg.Register(c))
	}

	m.Queries.WithLabelValues("success").Inc()
	assert.InDelta(t, 1, testutil.ToFloat64(m.Queries.WithLabelValues("success")), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		assert.NotEmpty(t, f.GetHelp(), f.GetName())
	}
}

func TestNewUnregisteredMetrics_Independent(t *testing.T) {
	a, b := NewUnregisteredMetrics(), NewUnregisteredMetrics()

	a.AnimationFrames.Inc()

	assert.InDelta(t, 1, testutil.ToFloat64(a.AnimationFrames), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.AnimationFrames), 0)
	assert.Len(t, a.Collectors(), 12)
}
