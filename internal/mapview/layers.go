package mapview

import (
	"github.com/couchcryptid/accident-map/internal/domain"
	"github.com/paulmach/orb/geojson"
)

// Paint property the heatmap animator drives.
const PaintHeatmapIntensity = "heatmap-intensity"

// CircleMinZoom is the zoom above which heatmap mode also shows individual points.
const CircleMinZoom = 16

const (
	clusterMaxZoom = 14
	clusterRadius  = 50
)

// clusterTiers are the cluster circle steps by point count.
var clusterTiers = []struct {
	minCount int
	color    string
	radius   float64
}{
	{0, "#51bbd6", 20},
	{100, "#f1f075", 30},
	{750, "#f28cb1", 40},
}

// ClusterCircle returns the colour and radius a cluster of count points is drawn with.
func ClusterCircle(count int) (color string, radius float64) {
	for _, t := range clusterTiers {
		if count >= t.minCount {
			color, radius = t.color, t.radius
		}
	}
	return color, radius
}

func clusterStep(value func(i int) any) []any {
	expr := []any{"step", []any{"get", "point_count"}, value(0)}
	for i := 1; i < len(clusterTiers); i++ {
		expr = append(expr, clusterTiers[i].minCount, value(i))
	}
	return expr
}

// severityColorExpr matches the stringified severity against the palette.
func severityColorExpr() []any {
	expr := []any{"match", []any{"to-string", []any{"get", domain.PropSeverity}}}
	for _, sc := range domain.SeverityColors {
		expr = append(expr, sc.Level, sc.Color)
	}
	return append(expr, domain.ColorSeverityUnknown)
}

func severityCirclePaint() map[string]any {
	return map[string]any{
		"circle-color":        severityColorExpr(),
		"circle-radius":       5,
		"circle-stroke-width": 1,
		"circle-stroke-color": "#000",
	}
}

func accidentSource(fc *geojson.FeatureCollection, cluster bool) Source {
	return Source{
		Type:           "geojson",
		Data:           fc,
		Cluster:        cluster,
		ClusterMaxZoom: clusterMaxZoom,
		ClusterRadius:  clusterRadius,
	}
}

func clusterLayers() []Layer {
	hasCount := []any{"has", "point_count"}
	return []Layer{
		{
			ID:     LayerCluster,
			Type:   "circle",
			Source: SourceID,
			Filter: hasCount,
			Paint: map[string]any{
				"circle-color":  clusterStep(func(i int) any { return clusterTiers[i].color }),
				"circle-radius": clusterStep(func(i int) any { return clusterTiers[i].radius }),
			},
		},
		{
			ID:     LayerClusterCount,
			Type:   "symbol",
			Source: SourceID,
			Filter: hasCount,
			Layout: map[string]any{
				"text-field": "{point_count_abbreviated}",
				"text-font":  []any{"DIN Offc Pro Medium", "Arial Unicode MS Bold"},
				"text-size":  12,
			},
		},
		{
			ID:     LayerUnclusteredPoint,
			Type:   "circle",
			Source: SourceID,
			Filter: []any{"!", hasCount},
			Paint:  severityCirclePaint(),
		},
	}
}

func zoomInterpolate(stops ...any) []any {
	return append([]any{"interpolate", []any{"linear"}, []any{"zoom"}}, stops...)
}

func heatmapLayers() []Layer {
	return []Layer{
		{
			ID:     LayerHeat,
			Type:   "heatmap",
			Source: SourceID,
			Paint: map[string]any{
				"heatmap-weight": []any{
					"interpolate", []any{"linear"}, []any{"to-number", []any{"get", domain.PropSeverity}},
					1, 0.25,
					4, 1.0,
				},
				PaintHeatmapIntensity: zoomInterpolate(0, 0.5, 9, 1.0, 15, 2.0),
				"heatmap-color": []any{
					"interpolate", []any{"linear"}, []any{"heatmap-density"},
					0, "rgba(144,238,144,0)",
					0.2, "rgb(144,238,144)",
					0.4, "rgb(255,255,0)",
					0.6, "rgb(255,165,0)",
					1, "rgb(178,24,43)",
				},
				"heatmap-radius":  zoomInterpolate(0, 2, 9, 15, 15, 35),
				"heatmap-opacity": zoomInterpolate(7, 0.7, 15, 0.9),
			},
		},
		{
			ID:      LayerCircle,
			Type:    "circle",
			Source:  SourceID,
			MinZoom: CircleMinZoom,
			Paint:   severityCirclePaint(),
		},
	}
}
