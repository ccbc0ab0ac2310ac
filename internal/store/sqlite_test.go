package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/accident-map/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// santaMonicaArea roughly covers Santa Monica, CA.
var santaMonicaArea = orb.Bound{
	Min: orb.Point{-118.52, 33.98},
	Max: orb.Point{-118.44, 34.05},
}.ToPolygon()

var fixtures = []domain.Accident{
	{ID: "A-1", Severity: 2, StartTime: "2017-02-01 08:15:00", WeatherCondition: "Clear", DistanceMi: 0.01, Description: "Lane blocked", Location: orb.Point{-118.49, 34.01}},
	{ID: "A-2", Severity: 4, StartTime: "2019-07-12 17:40:00", WeatherCondition: "Fog", DistanceMi: 1.2, Description: "Road closed", Location: orb.Point{-118.48, 34.02}},
	{ID: "A-3", Severity: 2, StartTime: "2021-11-30 22:05:00", WeatherCondition: "Rain", DistanceMi: 0.3, Description: "Shoulder", Location: orb.Point{-118.47, 34.03}},
	// Venice, outside the area.
	{ID: "A-4", Severity: 2, StartTime: "2019-01-01 10:00:00", Location: orb.Point{-118.47, 33.99 - 0.02}},
	// Downtown LA, well outside.
	{ID: "A-5", Severity: 3, StartTime: "2019-05-05 12:00:00", Location: orb.Point{-118.24, 34.05}},
}

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "accidents.db"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.InsertAccidents(ctx, fixtures))
	return s
}

func ids(res Result) []string {
	out := make([]string, 0, len(res.Accidents))
	for _, a := range res.Accidents {
		out = append(out, a.ID)
	}
	return out
}

func TestSQLite_FindAccidents_Area(t *testing.T) {
	s := openTestSQLite(t)

	res, err := s.FindAccidents(context.Background(), Query{Area: santaMonicaArea})
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"A-1", "A-2", "A-3"}, ids(res)); diff != "" {
		t.Errorf("accidents mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, res.Scanned)
	assert.Zero(t, res.Skipped)
	assert.Contains(t, res.SQL, "FROM accidentdata")

	first := res.Accidents[0]
	assert.Equal(t, 2, first.Severity)
	assert.Equal(t, "Clear", first.WeatherCondition)
	assert.Equal(t, "Lane blocked", first.Description)
	assert.InDelta(t, 0.01, first.DistanceMi, 1e-9)
	assert.InDelta(t, -118.49, first.Location.Lon(), 1e-9)
	assert.InDelta(t, 34.01, first.Location.Lat(), 1e-9)
}

func TestSQLite_FindAccidents_Filters(t *testing.T) {
	s := openTestSQLite(t)

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"severity", Query{Area: santaMonicaArea, Severity: "2"}, []string{"A-1", "A-3"}},
		{"start date", Query{Area: santaMonicaArea, StartDate: "2019-01-01"}, []string{"A-2", "A-3"}},
		{"end date", Query{Area: santaMonicaArea, EndDate: "2019-12-31"}, []string{"A-1", "A-2"}},
		{"year window", Query{Area: santaMonicaArea, StartDate: "2019-01-01", EndDate: "2019-12-31"}, []string{"A-2"}},
		{"no match", Query{Area: santaMonicaArea, Severity: "1"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.FindAccidents(context.Background(), tt.query)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, ids(res)); diff != "" {
				t.Errorf("accidents mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSQLite_FindAccidents_PolygonNotJustBBox(t *testing.T) {
	s := openTestSQLite(t)

	// Triangle whose bbox covers A-1..A-3 but whose hypotenuse excludes A-3.
	triangle := orb.Polygon{orb.Ring{
		{-118.52, 33.98}, {-118.44, 33.98}, {-118.52, 34.05}, {-118.52, 33.98},
	}}

	res, err := s.FindAccidents(context.Background(), Query{Area: triangle})
	require.NoError(t, err)
	assert.NotContains(t, ids(res), "A-3")
	assert.Contains(t, ids(res), "A-1")
}

func TestSQLite_InsertAccidents_Upserts(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	updated := fixtures[0]
	updated.Severity = 3
	require.NoError(t, s.InsertAccidents(ctx, []domain.Accident{updated}))

	res, err := s.FindAccidents(ctx, Query{Area: santaMonicaArea, Severity: "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A-1"}, ids(res))
}

func TestSQLite_InMemory(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:", discardLogger())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.InsertAccidents(ctx, fixtures[:1]))

	res, err := s.FindAccidents(ctx, Query{Area: santaMonicaArea})
	require.NoError(t, err)
	assert.Equal(t, []string{"A-1"}, ids(res))
}

func TestAccidentRow_BadWKT(t *testing.T) {
	_, err := accidentRow{ID: "x", LocationWKT: "LINESTRING(0 0, 1 1)"}.toAccident()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse location")
}
