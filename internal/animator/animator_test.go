package animator

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/accident-map/internal/domain"
	"github.com/couchcryptid/accident-map/internal/mapview"
	"github.com/couchcryptid/accident-map/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseIntensity(t *testing.T) {
	tests := []struct {
		zoom float64
		want float64
	}{
		{0, 1},
		{7, 1},
		{9, 2},
		{11, 3},
		{14, 4.5},
		{15, 5},
		{22, 5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, BaseIntensity(tt.zoom), 1e-9, "zoom %v", tt.zoom)
	}
}

func TestPulse(t *testing.T) {
	assert.InDelta(t, 1, Pulse(0), 1e-9)

	ms := float64(time.Millisecond)
	quarter := time.Duration(300 * math.Pi / 2 * ms)
	assert.InDelta(t, 1.2, Pulse(quarter), 1e-6)
	assert.InDelta(t, 0.8, Pulse(3*quarter), 1e-6)

	period := time.Duration(600 * math.Pi * ms)
	assert.InDelta(t, Pulse(quarter), Pulse(quarter+period), 1e-6)
}

func heatmapStyle(t *testing.T, mode domain.ViewMode, zoom float64) *mapview.Style {
	t.Helper()
	s := mapview.NewStyle("mapbox://styles/mapbox/streets-v11", orb.Point{}, zoom)
	mg := mapview.NewManager(s, observability.NewMetricsForTesting(), slog.Default())
	require.NoError(t, mg.Render(mode, domain.NewAccidentCollection([]domain.Accident{{ID: "A-1", Severity: 2}})))
	return s
}

func TestStep_HeatmapMode(t *testing.T) {
	s := heatmapStyle(t, domain.ViewHeatmap, 11)
	m := observability.NewMetricsForTesting()
	a := New(s, func() domain.ViewMode { return domain.ViewHeatmap }, clockwork.NewFakeClock(), time.Millisecond, m, slog.Default())

	ms := float64(time.Millisecond)
	quarter := time.Duration(300 * math.Pi / 2 * ms)
	require.True(t, a.Step(quarter))

	v, ok := s.PaintProperty(mapview.LayerHeat, mapview.PaintHeatmapIntensity)
	require.True(t, ok)
	assert.InDelta(t, 3*1.2, v.(float64), 1e-6)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AnimationFrames), 0)
}

func TestStep_ClusterModeLeavesMapAlone(t *testing.T) {
	s := heatmapStyle(t, domain.ViewCluster, 11)
	a := New(s, func() domain.ViewMode { return domain.ViewCluster }, clockwork.NewFakeClock(), time.Millisecond,
		observability.NewMetricsForTesting(), slog.Default())

	assert.False(t, a.Step(time.Second))
}

func TestStep_HeatmapModeWithoutLayer(t *testing.T) {
	s := mapview.NewStyle("mapbox://styles/mapbox/streets-v11", orb.Point{}, 11)
	a := New(s, func() domain.ViewMode { return domain.ViewHeatmap }, clockwork.NewFakeClock(), time.Millisecond,
		observability.NewMetricsForTesting(), slog.Default())

	assert.False(t, a.Step(time.Second))
}

type recordingSurface struct {
	mu     sync.Mutex
	values []float64
	notify chan struct{}
}

func (r *recordingSurface) Zoom() float64         { return 15 }
func (r *recordingSurface) HasLayer(string) bool { return true }

func (r *recordingSurface) SetPaintProperty(_, _ string, value any) error {
	r.mu.Lock()
	r.values = append(r.values, value.(float64))
	r.mu.Unlock()
	r.notify <- struct{}{}
	return nil
}

func TestRun_TicksUntilCancelled(t *testing.T) {
	clock := clockwork.NewFakeClock()
	surface := &recordingSurface{notify: make(chan struct{}, 8)}
	a := New(surface, func() domain.ViewMode { return domain.ViewHeatmap }, clock, 16*time.Millisecond,
		observability.NewMetricsForTesting(), slog.Default())

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	for range 3 {
		clock.Advance(16 * time.Millisecond)
		<-surface.notify
	}
	cancel()

	err := <-done
	require.True(t, errors.Is(err, context.Canceled))

	surface.mu.Lock()
	defer surface.mu.Unlock()
	require.Len(t, surface.values, 3)
	for i, v := range surface.values {
		elapsed := time.Duration(i+1) * 16 * time.Millisecond
		assert.InDelta(t, 5*Pulse(elapsed), v, 1e-9)
	}
}
