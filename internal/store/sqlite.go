package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/accident-map/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/paulmach/orb/planar"
	_ "modernc.org/sqlite" // sqlite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS accidentdata (
	id                TEXT PRIMARY KEY,
	severity          INTEGER NOT NULL,
	start_time        TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	weather_condition TEXT NOT NULL DEFAULT '',
	distance_mi       REAL NOT NULL DEFAULT 0,
	lon               REAL NOT NULL,
	lat               REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_accidentdata_lon_lat ON accidentdata (lon, lat);`

const sqliteSelect = `
	SELECT
		id,
		severity,
		start_time,
		description,
		weather_condition,
		distance_mi,
		'POINT(' || lon || ' ' || lat || ')' AS location_wkt
	FROM accidentdata
	WHERE lon BETWEEN ? AND ?
	AND lat BETWEEN ? AND ?`

// SQLite stores accidents in an embedded database file. The area filter runs
// as a bounding-box range scan followed by an exact point-in-polygon check.
type SQLite struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable wal: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db, logger: logger}, nil
}

// InsertAccidents upserts accidents in one transaction.
func (s *SQLite) InsertAccidents(ctx context.Context, accidents []domain.Accident) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PreparexContext(ctx, `
		INSERT OR REPLACE INTO accidentdata
			(id, severity, start_time, description, weather_condition, distance_mi, lon, lat)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range accidents {
		if _, err := stmt.ExecContext(ctx,
			a.ID, a.Severity, a.StartTime, a.Description, a.WeatherCondition, a.DistanceMi,
			a.Location.Lon(), a.Location.Lat(),
		); err != nil {
			return fmt.Errorf("insert accident %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

// FindAccidents runs the area query.
func (s *SQLite) FindAccidents(ctx context.Context, q Query) (Result, error) {
	query, args := buildSQLiteQuery(q)

	var rows []accidentRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return Result{}, fmt.Errorf("query accidents: %w", err)
	}

	res := Result{Scanned: len(rows), SQL: query}
	for _, row := range rows {
		a, err := row.toAccident()
		if err != nil {
			s.logger.Error("skipping accident row", "id", row.ID, "error", err)
			res.Skipped++
			continue
		}
		if !planar.PolygonContains(q.Area, a.Location) {
			continue
		}
		res.Accidents = append(res.Accidents, a)
	}
	return res, nil
}

// Ping checks the connection.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func buildSQLiteQuery(q Query) (string, []any) {
	bound := q.Area.Bound()
	args := []any{bound.Min.Lon(), bound.Max.Lon(), bound.Min.Lat(), bound.Max.Lat()}

	var b strings.Builder
	b.WriteString(sqliteSelect)
	add := func(clause, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		b.WriteString("\n\tAND ")
		b.WriteString(clause)
	}
	add("severity = ?", q.Severity)
	add("date(start_time) >= date(?)", q.StartDate)
	add("date(start_time) <= date(?)", q.EndDate)

	b.WriteString("\n\tORDER BY start_time, id")
	return b.String(), args
}
