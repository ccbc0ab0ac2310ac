// Package accidents serves the /geojson query: it resolves a place name to an
// area, reads matching accidents from the store, and shapes the response the
// map client consumes.
package accidents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/accident-map/internal/domain"
	"github.com/couchcryptid/accident-map/internal/observability"
	"github.com/couchcryptid/accident-map/internal/store"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
)

// pointBuffer is the half-width, in degrees, of the square used when the
// geocoder returns a point without an extent.
const pointBuffer = 0.01

var (
	// ErrGeocoding wraps geocoder failures; the request cannot be answered.
	ErrGeocoding = errors.New("geocoding error")
	// ErrLocationNotFound means the geocoder matched nothing.
	ErrLocationNotFound = errors.New("location not found")
	// ErrNoData means the area query matched no accidents.
	ErrNoData = errors.New("no data found")
)

// Store reads accidents for an area.
type Store interface {
	FindAccidents(ctx context.Context, q store.Query) (store.Result, error)
	Ping(ctx context.Context) error
}

// Publisher records executed queries. Implementations must be safe for
// concurrent use.
type Publisher interface {
	PublishQuery(ctx context.Context, ev domain.QueryEvent) error
}

// Service answers accident queries.
type Service struct {
	geocoder        domain.Geocoder
	store           Store
	publisher       Publisher // optional
	defaultLocation string
	clock           clockwork.Clock
	metrics         *observability.Metrics
	logger          *slog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithPublisher enables audit events.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock replaces the clock used to time store queries.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// NewService creates a Service. defaultLocation is reported by DefaultLocation
// for requests that carry no location parameter.
func NewService(geocoder domain.Geocoder, st Store, defaultLocation string, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		geocoder:        geocoder,
		store:           st,
		defaultLocation: defaultLocation,
		clock:           clockwork.NewRealClock(),
		metrics:         metrics,
		logger:          logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CheckReadiness reports whether the store is reachable.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	return nil
}

// DefaultLocation is the place queried when a request names none.
func (s *Service) DefaultLocation() string {
	return s.defaultLocation
}

// Query resolves q.Location and returns the accidents inside it. Errors wrap
// ErrGeocoding, ErrLocationNotFound, or ErrNoData, or come from the store.
func (s *Service) Query(ctx context.Context, q domain.AccidentQuery) (domain.ResultBody, error) {
	area, err := s.resolveArea(ctx, q.Location)
	if err != nil {
		outcome := domain.OutcomeNotFound
		if errors.Is(err, ErrGeocoding) {
			outcome = domain.OutcomeError
		}
		s.metrics.Queries.WithLabelValues(outcome).Inc()
		return domain.ResultBody{}, err
	}

	start := s.clock.Now()
	res, err := s.store.FindAccidents(ctx, store.Query{
		Area:      area,
		Severity:  q.Severity,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
	})
	elapsed := s.clock.Since(start)
	s.metrics.QueryDuration.Observe(elapsed.Seconds())

	if err != nil {
		s.logger.Error("error executing query", "location", q.Location, "error", err)
		s.metrics.Queries.WithLabelValues(domain.OutcomeError).Inc()
		s.publish(ctx, domain.NewQueryEvent(q, domain.OutcomeError, 0, elapsed))
		return domain.ResultBody{}, err
	}
	s.logger.Info("query executed", "location", q.Location, "elapsed", elapsed, "rows", res.Scanned)

	if res.Skipped > 0 {
		s.metrics.SkippedRows.Add(float64(res.Skipped))
	}

	if len(res.Accidents) == 0 {
		s.metrics.Queries.WithLabelValues(domain.OutcomeEmpty).Inc()
		s.publish(ctx, domain.NewQueryEvent(q, domain.OutcomeEmpty, 0, elapsed))
		return domain.ResultBody{}, ErrNoData
	}

	count := len(res.Accidents)
	s.metrics.Queries.WithLabelValues(domain.OutcomeSuccess).Inc()
	s.metrics.AccidentsReturned.Observe(float64(count))
	s.publish(ctx, domain.NewQueryEvent(q, domain.OutcomeSuccess, count, elapsed))

	return domain.ResultBody{
		GeoJSON:       domain.NewAccidentCollection(res.Accidents),
		Query:         res.SQL,
		QueryTime:     roundSeconds(elapsed.Seconds()),
		DataScanned:   res.Scanned,
		AccidentCount: count,
	}, nil
}

// resolveArea turns a place name into a search polygon: the provider's bbox
// when it has one, else a small square around the matched point.
func (s *Service) resolveArea(ctx context.Context, location string) (orb.Polygon, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: %q", ErrLocationNotFound, location)
	}
	result, err := s.geocoder.ForwardGeocode(ctx, location)
	if err != nil {
		s.logger.Error("geocoding error", "location", location, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrGeocoding, err)
	}
	if !result.Found() {
		return nil, fmt.Errorf("%w: %q", ErrLocationNotFound, location)
	}
	if result.HasBBox {
		return result.BBox.ToPolygon(), nil
	}
	c := result.Center()
	return orb.Bound{
		Min: orb.Point{c.Lon() - pointBuffer, c.Lat() - pointBuffer},
		Max: orb.Point{c.Lon() + pointBuffer, c.Lat() + pointBuffer},
	}.ToPolygon(), nil
}

func (s *Service) publish(ctx context.Context, ev domain.QueryEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishQuery(ctx, ev); err != nil {
		s.metrics.AuditPublishFails.Inc()
		s.logger.Warn("publish query event failed", "location", ev.Location, "error", err)
	}
}

// roundSeconds keeps four decimal places.
func roundSeconds(s float64) float64 {
	return float64(int64(s*10000+0.5)) / 10000
}
