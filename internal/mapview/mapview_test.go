package mapview

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/couchcryptid/accident-map/internal/domain"
	"github.com/couchcryptid/accident-map/internal/observability"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStyle = "mapbox://styles/mapbox/streets-v11"

func testCollection() *geojson.FeatureCollection {
	return domain.NewAccidentCollection([]domain.Accident{
		{ID: "A-1", Severity: 1, Location: orb.Point{-118.49, 34.01}},
		{ID: "A-2", Severity: 4, Location: orb.Point{-118.48, 34.02}},
	})
}

func newTestManager(t *testing.T) (*Manager, *Style, *observability.Metrics) {
	t.Helper()
	s := NewStyle(testStyle, orb.Point{-118.49, 34.01}, 12)
	m := observability.NewMetricsForTesting()
	return NewManager(s, m, slog.Default()), s, m
}

func TestRender_Cluster(t *testing.T) {
	mg, s, m := newTestManager(t)

	require.NoError(t, mg.Render(domain.ViewCluster, testCollection()))

	assert.Equal(t, []string{LayerCluster, LayerClusterCount, LayerUnclusteredPoint}, s.LayerIDs())
	src, ok := s.Source(SourceID)
	require.True(t, ok)
	assert.True(t, src.Cluster)
	assert.Equal(t, 14, src.ClusterMaxZoom)
	assert.Equal(t, 50, src.ClusterRadius)
	assert.Len(t, src.Data.Features, 2)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Renders.WithLabelValues("cluster")), 0)
}

func TestRender_Heatmap(t *testing.T) {
	mg, s, m := newTestManager(t)

	require.NoError(t, mg.Render(domain.ViewHeatmap, testCollection()))

	assert.Equal(t, []string{LayerHeat, LayerCircle}, s.LayerIDs())
	src, ok := s.Source(SourceID)
	require.True(t, ok)
	assert.False(t, src.Cluster)
	_, ok = s.PaintProperty(LayerHeat, PaintHeatmapIntensity)
	assert.True(t, ok)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Renders.WithLabelValues("heatmap")), 0)
}

func TestRender_SwitchModesReplacesLayers(t *testing.T) {
	mg, s, _ := newTestManager(t)

	require.NoError(t, mg.Render(domain.ViewCluster, testCollection()))
	require.NoError(t, mg.Render(domain.ViewHeatmap, testCollection()))
	assert.Equal(t, []string{LayerHeat, LayerCircle}, s.LayerIDs())

	require.NoError(t, mg.Render(domain.ViewCluster, testCollection()))
	assert.Equal(t, []string{LayerCluster, LayerClusterCount, LayerUnclusteredPoint}, s.LayerIDs())
}

func TestRender_RejectsBadInput(t *testing.T) {
	mg, s, _ := newTestManager(t)

	require.Error(t, mg.Render("scatter", testCollection()))
	require.Error(t, mg.Render(domain.ViewCluster, nil))
	assert.Empty(t, s.LayerIDs())
	assert.False(t, s.HasSource(SourceID))
}

func TestClear_Idempotent(t *testing.T) {
	mg, s, _ := newTestManager(t)

	require.NoError(t, mg.Clear())
	require.NoError(t, mg.Render(domain.ViewCluster, testCollection()))
	require.NoError(t, mg.Clear())
	require.NoError(t, mg.Clear())

	assert.Empty(t, s.LayerIDs())
	assert.False(t, s.HasSource(SourceID))
}

func TestClusterCircle(t *testing.T) {
	tests := []struct {
		count      int
		wantColor  string
		wantRadius float64
	}{
		{2, "#51bbd6", 20},
		{99, "#51bbd6", 20},
		{100, "#f1f075", 30},
		{749, "#f1f075", 30},
		{750, "#f28cb1", 40},
		{10000, "#f28cb1", 40},
	}
	for _, tt := range tests {
		color, radius := ClusterCircle(tt.count)
		assert.Equal(t, tt.wantColor, color, "count %d", tt.count)
		assert.InDelta(t, tt.wantRadius, radius, 0, "count %d", tt.count)
	}
}

func TestClusterStepExpression(t *testing.T) {
	layers := clusterLayers()
	got, err := json.Marshal(layers[0].Paint["circle-color"])
	require.NoError(t, err)
	assert.JSONEq(t, `["step",["get","point_count"],"#51bbd6",100,"#f1f075",750,"#f28cb1"]`, string(got))

	got, err = json.Marshal(layers[0].Paint["circle-radius"])
	require.NoError(t, err)
	assert.JSONEq(t, `["step",["get","point_count"],20,100,30,750,40]`, string(got))
}

func TestSeverityColorExpression(t *testing.T) {
	got, err := json.Marshal(severityColorExpr())
	require.NoError(t, err)
	assert.JSONEq(t, `["match",["to-string",["get","severity"]],
		"1","#00FF00","2","#FFFF00","3","#FFA500","4","#FF0000","#999999"]`, string(got))
}

func TestHeatmapCircleMinZoom(t *testing.T) {
	layers := heatmapLayers()
	require.Len(t, layers, 2)
	assert.Zero(t, layers[0].MinZoom)
	assert.InDelta(t, CircleMinZoom, layers[1].MinZoom, 0)
}

func TestStyle_EngineRules(t *testing.T) {
	s := NewStyle(testStyle, orb.Point{}, 3)

	require.Error(t, s.AddLayer(Layer{ID: "x", Source: "missing"}))
	require.NoError(t, s.AddSource("src", Source{Type: "geojson"}))
	require.Error(t, s.AddSource("src", Source{Type: "geojson"}))
	require.NoError(t, s.AddLayer(Layer{ID: "x", Source: "src"}))
	require.Error(t, s.AddLayer(Layer{ID: "x", Source: "src"}))
	require.Error(t, s.RemoveSource("src"), "source in use")
	require.Error(t, s.SetPaintProperty("nope", "circle-radius", 1))

	require.NoError(t, s.RemoveLayer("x"))
	require.Error(t, s.RemoveLayer("x"))
	require.NoError(t, s.RemoveSource("src"))
}

func TestStyle_SetStyleDropsLayersThenIdles(t *testing.T) {
	mg, s, _ := newTestManager(t)
	require.NoError(t, mg.Render(domain.ViewCluster, testCollection()))

	var layersAtIdle []string
	s.SetStyle("mapbox://styles/mapbox/dark-v10", func() {
		layersAtIdle = s.LayerIDs()
	})

	assert.Empty(t, layersAtIdle)
	assert.False(t, s.HasSource(SourceID))
	assert.Equal(t, "mapbox://styles/mapbox/dark-v10", s.URL())
}

func TestStyle_Document(t *testing.T) {
	mg, s, _ := newTestManager(t)
	require.NoError(t, mg.Render(domain.ViewHeatmap, testCollection()))

	raw, err := s.Document()
	require.NoError(t, err)

	var doc struct {
		Version  int                        `json:"version"`
		Metadata map[string]string          `json:"metadata"`
		Center   []float64                  `json:"center"`
		Zoom     float64                    `json:"zoom"`
		Sources  map[string]json.RawMessage `json:"sources"`
		Layers   []struct {
			ID string `json:"id"`
		} `json:"layers"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, 8, doc.Version)
	assert.Equal(t, testStyle, doc.Metadata["accident-map:base-style"])
	assert.Equal(t, []float64{-118.49, 34.01}, doc.Center)
	assert.InDelta(t, 12, doc.Zoom, 0)
	assert.Contains(t, doc.Sources, SourceID)
	require.Len(t, doc.Layers, 2)
	assert.Equal(t, LayerHeat, doc.Layers[0].ID)
}
