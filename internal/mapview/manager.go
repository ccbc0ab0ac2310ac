package mapview

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/accident-map/internal/domain"
	"github.com/couchcryptid/accident-map/internal/observability"
	"github.com/paulmach/orb/geojson"
)

// Manager owns the accident source and layers on a Map.
type Manager struct {
	m       Map
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewManager creates a layer manager for m.
func NewManager(m Map, metrics *observability.Metrics, logger *slog.Logger) *Manager {
	return &Manager{m: m, metrics: metrics, logger: logger}
}

// Clear removes every accident layer and the accident source. Missing layers
// are skipped, so Clear is safe to call repeatedly.
func (mg *Manager) Clear() error {
	for _, id := range LayerIDs {
		if !mg.m.HasLayer(id) {
			continue
		}
		if err := mg.m.RemoveLayer(id); err != nil {
			return fmt.Errorf("remove layer %s: %w", id, err)
		}
	}
	if mg.m.HasSource(SourceID) {
		if err := mg.m.RemoveSource(SourceID); err != nil {
			return fmt.Errorf("remove source: %w", err)
		}
	}
	return nil
}

// Render replaces the accident layers with fc drawn in the given mode.
func (mg *Manager) Render(mode domain.ViewMode, fc *geojson.FeatureCollection) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown view mode %q", mode)
	}
	if fc == nil {
		return errors.New("render: nil feature collection")
	}

	if err := mg.Clear(); err != nil {
		return err
	}

	if err := mg.m.AddSource(SourceID, accidentSource(fc, mode == domain.ViewCluster)); err != nil {
		return fmt.Errorf("add source: %w", err)
	}

	layers := clusterLayers()
	if mode == domain.ViewHeatmap {
		layers = heatmapLayers()
	}
	for _, l := range layers {
		if err := mg.m.AddLayer(l); err != nil {
			return fmt.Errorf("add layer %s: %w", l.ID, err)
		}
	}

	mg.metrics.Renders.WithLabelValues(string(mode)).Inc()
	mg.logger.Debug("accident layers rendered", "mode", mode, "features", len(fc.Features))
	return nil
}
