// Package mapview drives the accident layers of a Mapbox GL style. The
// rendering engine sits behind Map; Style is an in-memory implementation that
// can be serialized as a style document.
package mapview

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// SourceID is the single GeoJSON source every accident layer draws from.
const SourceID = "accidents"

// Accident layer IDs, in the order they are removed.
const (
	LayerCluster          = "accidents-cluster"
	LayerClusterCount     = "accidents-cluster-count"
	LayerUnclusteredPoint = "accidents-unclustered-point"
	LayerHeat             = "accidents-heat"
	LayerCircle           = "accidents-circle"
)

// LayerIDs lists every layer the manager may add.
var LayerIDs = []string{LayerCluster, LayerClusterCount, LayerUnclusteredPoint, LayerHeat, LayerCircle}

// Source is a GeoJSON source definition.
type Source struct {
	Type           string                     `json:"type"`
	Data           *geojson.FeatureCollection `json:"data"`
	Cluster        bool                       `json:"cluster"`
	ClusterMaxZoom int                        `json:"clusterMaxZoom,omitempty"`
	ClusterRadius  int                        `json:"clusterRadius,omitempty"`
}

// Layer is a declarative style layer.
type Layer struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Source  string         `json:"source"`
	MinZoom float64        `json:"minzoom,omitempty"`
	Filter  []any          `json:"filter,omitempty"`
	Paint   map[string]any `json:"paint,omitempty"`
	Layout  map[string]any `json:"layout,omitempty"`
}

// Map is the subset of the rendering engine the accident layers need.
type Map interface {
	HasLayer(id string) bool
	RemoveLayer(id string) error
	HasSource(id string) bool
	RemoveSource(id string) error
	AddSource(id string, src Source) error
	AddLayer(l Layer) error
	SetPaintProperty(layerID, name string, value any) error
	Zoom() float64
	FlyTo(center orb.Point, zoom float64)
	// SetStyle loads a new base style, dropping all custom sources and
	// layers. onIdle runs once the new style has settled.
	SetStyle(styleURL string, onIdle func())
}
