package store

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/paulmach/orb/encoding/wkt"
)

const postgresSelect = `
	SELECT DISTINCT
		id,
		severity,
		start_time::text AS start_time,
		description,
		weather_condition,
		distance_mi,
		ST_AsText(start_location) AS location_wkt
	FROM accidentdata
	WHERE ST_Contains(ST_GeomFromText($1, 4326), start_location::geometry)`

// Postgres queries a PostGIS accidentdata table.
type Postgres struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgres connects to PostGIS using a lib/pq connection string.
func NewPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*Postgres, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Postgres{db: db, logger: logger}, nil
}

// FindAccidents runs the area query.
func (p *Postgres) FindAccidents(ctx context.Context, q Query) (Result, error) {
	query, args := buildPostgresQuery(q)

	var rows []accidentRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return Result{}, fmt.Errorf("query accidents: %w", err)
	}

	res := Result{Scanned: len(rows), SQL: query}
	for _, row := range rows {
		a, err := row.toAccident()
		if err != nil {
			p.logger.Error("skipping accident row", "id", row.ID, "error", err)
			res.Skipped++
			continue
		}
		res.Accidents = append(res.Accidents, a)
	}
	return res, nil
}

// Ping checks the connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// buildPostgresQuery appends one bound predicate per set filter.
func buildPostgresQuery(q Query) (string, []any) {
	var b strings.Builder
	b.WriteString(postgresSelect)
	args := []any{wkt.MarshalString(q.Area)}

	add := func(clause, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		b.WriteString("\n\tAND ")
		b.WriteString(strings.Replace(clause, "?", "$"+strconv.Itoa(len(args)), 1))
	}
	add("severity = ?", q.Severity)
	add("start_time::date >= ?::date", q.StartDate)
	add("start_time::date <= ?::date", q.EndDate)

	b.WriteString("\n\tORDER BY start_time, id")
	return b.String(), args
}
