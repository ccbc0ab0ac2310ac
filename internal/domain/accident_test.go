package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccident_Feature(t *testing.T) {
	a := Accident{
		ID:               "A-7",
		Severity:         2,
		StartTime:        "2020-06-01 08:00:00",
		Description:      "Right lane blocked",
		WeatherCondition: "Clear",
		DistanceMi:       0.5,
		Location:         orb.Point{-118.49, 34.01},
	}

	f := a.Feature()

	assert.Equal(t, orb.Point{-118.49, 34.01}, f.Geometry)
	assert.Equal(t, "A-7", f.Properties[PropID])
	assert.Equal(t, 2, f.Properties[PropSeverity])
	assert.Equal(t, "#FFFF00", SeverityColor(f.Properties[PropSeverity]))
}

func TestNewAccidentCollection_PreservesOrder(t *testing.T) {
	fc := NewAccidentCollection([]Accident{{ID: "b"}, {ID: "a"}, {ID: "c"}})

	var ids []string
	for _, f := range fc.Features {
		ids = append(ids, f.Properties.MustString(PropID))
	}
	if diff := cmp.Diff([]string{"b", "a", "c"}, ids); diff != "" {
		t.Errorf("feature order mismatch (-want +got):\n%s", diff)
	}
}

func TestNewQueryEvent_UsesClock(t *testing.T) {
	at := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { SetClock(nil) })

	ev := NewQueryEvent(AccidentQuery{Location: "Austin", Severity: "2"}, OutcomeSuccess, 12, 250*time.Millisecond)

	require.Equal(t, at, ev.ExecutedAt)
	assert.Equal(t, "Austin", ev.Location)
	assert.Equal(t, "2", ev.Severity)
	assert.Equal(t, 12, ev.AccidentCount)
	assert.InDelta(t, 0.25, ev.QueryTimeSeconds, 1e-9)
}
