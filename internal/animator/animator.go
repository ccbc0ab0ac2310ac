// Package animator pulses the heatmap intensity while heatmap mode is showing.
package animator

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/couchcryptid/accident-map/internal/domain"
	"github.com/couchcryptid/accident-map/internal/mapview"
	"github.com/couchcryptid/accident-map/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Surface is the part of the map the animator reads and writes.
type Surface interface {
	Zoom() float64
	HasLayer(id string) bool
	SetPaintProperty(layerID, name string, value any) error
}

// ModeFunc reports the current view mode.
type ModeFunc func() domain.ViewMode

// Animator updates the heatmap intensity once per frame.
type Animator struct {
	surface Surface
	mode    ModeFunc
	clock   clockwork.Clock
	frame   time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates an animator ticking every frame on clock.
func New(surface Surface, mode ModeFunc, clock clockwork.Clock, frame time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Animator {
	return &Animator{
		surface: surface,
		mode:    mode,
		clock:   clock,
		frame:   frame,
		metrics: metrics,
		logger:  logger,
	}
}

// BaseIntensity is the zoom-dependent intensity before pulsing: 1 up to zoom
// 7, 5 from zoom 15, linear between.
func BaseIntensity(zoom float64) float64 {
	switch {
	case zoom <= 7:
		return 1
	case zoom >= 15:
		return 5
	default:
		return 1 + (zoom-7)*0.5
	}
}

// Pulse is the breathing factor after elapsed time, between 0.8 and 1.2 with a
// period of 600π ms.
func Pulse(elapsed time.Duration) float64 {
	ms := float64(elapsed) / float64(time.Millisecond)
	return 1 + 0.2*math.Sin(ms/300)
}

// Step applies one frame. It reports whether the map was updated, which only
// happens in heatmap mode with the heatmap layer present.
func (a *Animator) Step(elapsed time.Duration) bool {
	if a.mode() != domain.ViewHeatmap || !a.surface.HasLayer(mapview.LayerHeat) {
		return false
	}
	intensity := BaseIntensity(a.surface.Zoom()) * Pulse(elapsed)
	if err := a.surface.SetPaintProperty(mapview.LayerHeat, mapview.PaintHeatmapIntensity, intensity); err != nil {
		// The layer can vanish between the check and the write during a re-render.
		a.logger.Debug("heatmap frame skipped", "error", err)
		return false
	}
	a.metrics.AnimationFrames.Inc()
	return true
}

// Run ticks until ctx is cancelled.
func (a *Animator) Run(ctx context.Context) error {
	ticker := a.clock.NewTicker(a.frame)
	defer ticker.Stop()

	start := a.clock.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.Chan():
			a.Step(now.Sub(start))
		}
	}
}
