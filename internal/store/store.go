// Package store reads accident records for an area from a SQL database.
// Two backends share one query shape: PostGIS for production data and an
// embedded SQLite file for local runs, fixtures, and tests.
package store

import (
	"database/sql"
	"fmt"

	"github.com/couchcryptid/accident-map/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// Query selects accidents inside Area, optionally narrowed by severity and an
// inclusive ISO date range on the accident start time.
type Query struct {
	Area      orb.Polygon
	Severity  string
	StartDate string
	EndDate   string
}

// Result is the outcome of a store query.
type Result struct {
	Accidents []domain.Accident
	// Scanned is the number of rows the database returned, including skipped ones.
	Scanned int
	// Skipped counts rows dropped because their location did not decode.
	Skipped int
	// SQL is the statement that ran, with placeholders.
	SQL string
}

// accidentRow is the column set both backends select.
type accidentRow struct {
	ID               string          `db:"id"`
	Severity         sql.NullInt64   `db:"severity"`
	StartTime        sql.NullString  `db:"start_time"`
	Description      sql.NullString  `db:"description"`
	WeatherCondition sql.NullString  `db:"weather_condition"`
	DistanceMi       sql.NullFloat64 `db:"distance_mi"`
	LocationWKT      string          `db:"location_wkt"`
}

func (r accidentRow) toAccident() (domain.Accident, error) {
	pt, err := wkt.UnmarshalPoint(r.LocationWKT)
	if err != nil {
		return domain.Accident{}, fmt.Errorf("parse location %q: %w", r.LocationWKT, err)
	}
	return domain.Accident{
		ID:               r.ID,
		Severity:         int(r.Severity.Int64),
		StartTime:        r.StartTime.String,
		Description:      r.Description.String,
		WeatherCondition: r.WeatherCondition.String,
		DistanceMi:       r.DistanceMi.Float64,
		Location:         pt,
	}, nil
}
