package domain

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Property keys carried by every accident feature.
const (
	PropID               = "id"
	PropSeverity         = "severity"
	PropStartTime        = "start_time"
	PropWeatherCondition = "weather_condition"
	PropDistanceMi       = "distance_mi"
	PropDescription      = "description"
)

// Accident is a single accident record as read from a store.
type Accident struct {
	ID               string
	Severity         int
	StartTime        string
	Description      string
	WeatherCondition string
	DistanceMi       float64
	Location         orb.Point // [lon, lat]
}

// Feature converts the accident into a GeoJSON point feature.
func (a Accident) Feature() *geojson.Feature {
	f := geojson.NewFeature(a.Location)
	f.Properties = geojson.Properties{
		PropID:               a.ID,
		PropSeverity:         a.Severity,
		PropStartTime:        a.StartTime,
		PropDescription:      a.Description,
		PropWeatherCondition: a.WeatherCondition,
		PropDistanceMi:       a.DistanceMi,
	}
	return f
}

// NewAccidentCollection builds a FeatureCollection from accidents, preserving order.
func NewAccidentCollection(accidents []Accident) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Features = make([]*geojson.Feature, 0, len(accidents))
	for _, a := range accidents {
		fc.Append(a.Feature())
	}
	return fc
}

// AccidentQuery is the backend's view of a /geojson request. Date bounds are
// ISO dates (YYYY-MM-DD) or empty.
type AccidentQuery struct {
	Location  string
	Severity  string
	StartDate string
	EndDate   string
}
