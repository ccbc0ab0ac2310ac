// Package client is the headless map client: it keeps the filter and view
// state, fetches accidents for the current filters, and keeps the map layers
// and query-info panel in step with the last response.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/couchcryptid/accident-map/internal/domain"
	"github.com/couchcryptid/accident-map/internal/mapview"
	"github.com/couchcryptid/accident-map/internal/observability"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FlyToZoom is the zoom used after locating a place.
const FlyToZoom = 12

// Start-up centres when the initial place cannot be located.
var (
	FallbackCenter      = orb.Point{-118.55, 33.98}
	FallbackErrorCenter = orb.Point{-119.55, 39.98}
)

// ErrPlaceNotFound is returned by Search when the geocoder matches nothing.
var ErrPlaceNotFound = errors.New("place not found")

// Fetcher retrieves a decoded backend response for a query string.
type Fetcher interface {
	Fetch(ctx context.Context, query string) (domain.Response, error)
}

// State is a snapshot of the controller.
type State struct {
	Filter           domain.FilterState
	Dataset          *geojson.FeatureCollection
	Meta             domain.QueryMetadata
	QueryInfoVisible bool
	LastQuery        string
}

// Popup is the click popup for an accident point.
type Popup struct {
	LngLat orb.Point
	HTML   string
}

// Controller reacts to control changes by re-fetching or re-rendering.
// Network calls run without the lock held. Overlapping loads are not
// cancelled, so the response that resolves last wins.
type Controller struct {
	fetcher  Fetcher
	geocoder domain.Geocoder // optional
	m        mapview.Map
	layers   *mapview.Manager
	view     StatusView
	metrics  *observability.Metrics
	logger   *slog.Logger

	mu    sync.Mutex
	state State
}

// NewController creates a controller with the given initial filters. An empty
// view mode defaults to cluster.
func NewController(
	fetcher Fetcher,
	geocoder domain.Geocoder,
	m mapview.Map,
	view StatusView,
	initial domain.FilterState,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Controller {
	if initial.ViewMode == "" {
		initial.ViewMode = domain.ViewCluster
	}
	return &Controller{
		fetcher:  fetcher,
		geocoder: geocoder,
		m:        m,
		layers:   mapview.NewManager(m, metrics, logger),
		view:     view,
		metrics:  metrics,
		logger:   logger,
		state:    State{Filter: initial},
	}
}

// Snapshot returns a copy of the current state. The dataset is shared, not copied.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ViewMode returns the current view mode.
func (c *Controller) ViewMode() domain.ViewMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Filter.ViewMode
}

// Start centres the map on the initial location and loads its accidents.
// A geocoding failure is not fatal: the map falls back to a fixed centre.
func (c *Controller) Start(ctx context.Context) error {
	location := c.Snapshot().Filter.Location

	center := FallbackCenter
	if c.geocoder != nil {
		res, err := c.geocoder.ForwardGeocode(ctx, location)
		switch {
		case err != nil:
			c.logger.Warn("initial location lookup failed", "location", location, "error", err)
			center = FallbackErrorCenter
		case res.Found():
			center = res.Center()
		}
	}
	c.m.FlyTo(center, FlyToZoom)

	return c.LoadAccidents(ctx, location)
}

// Search locates place, flies there, and loads its accidents under the
// provider's canonical place name.
func (c *Controller) Search(ctx context.Context, place string) error {
	if c.geocoder == nil {
		return errors.New("search: no geocoder configured")
	}
	res, err := c.geocoder.ForwardGeocode(ctx, place)
	if err != nil {
		return fmt.Errorf("search %q: %w", place, err)
	}
	if !res.Found() {
		return fmt.Errorf("search %q: %w", place, ErrPlaceNotFound)
	}

	location := res.PlaceName
	if location == "" {
		location = place
	}
	c.m.FlyTo(res.Center(), FlyToZoom)
	return c.LoadAccidents(ctx, location)
}

// LoadAccidents fetches accidents for location under the current filters.
// Backend errors and empty results clear the map and return nil. A transport
// or decode failure marks the engine as errored, leaves the map untouched, and
// returns the error.
func (c *Controller) LoadAccidents(ctx context.Context, location string) error {
	c.mu.Lock()
	c.state.Filter.Location = location
	query := domain.BuildQuery(c.state.Filter)
	c.state.LastQuery = query
	visible := c.state.QueryInfoVisible
	c.mu.Unlock()

	c.view.SetEngineStatus(StatusStarting)
	c.view.SetQueryString(query)
	c.view.SetQueryInfoVisible(visible)
	c.logger.Debug("loading accidents", "query", query)

	resp, err := c.fetcher.Fetch(ctx, query)
	if err != nil {
		c.metrics.Fetches.WithLabelValues("error").Inc()
		c.logger.Error("error loading accident data", "query", query, "error", err)
		c.view.SetQueryString(MsgLoadError)
		c.view.SetEngineStatus(StatusError)
		return fmt.Errorf("load accidents: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.view.SetEngineStatus(StatusReady)

	if resp.Kind == domain.KindError {
		c.metrics.Fetches.WithLabelValues("backend_error").Inc()
		c.logger.Info("backend reported error", "query", query, "error", resp.Error)
		return c.resetLocked()
	}
	if resp.FeatureCount() == 0 {
		c.metrics.Fetches.WithLabelValues("empty").Inc()
		c.view.SetEngineStatus(StatusNoResults)
		return c.resetLocked()
	}

	c.metrics.Fetches.WithLabelValues("success").Inc()
	c.state.Dataset = resp.Collection
	c.state.Meta = resp.Meta
	if c.state.Meta.AccidentCount == 0 {
		c.state.Meta.AccidentCount = resp.FeatureCount()
	}

	c.view.SetQueryTime("Query time: " + formatQueryTime(resp.Meta.QueryTimeSeconds) + " s")
	c.view.SetDataScanned("Data scanned: " + orDefault(resp.Meta.DataScanned, "N/A"))
	c.view.SetAccidentCount(accidentCountText(c.state.Meta.AccidentCount))

	return c.layers.Render(c.state.Filter.ViewMode, c.state.Dataset)
}

// resetLocked clears the dataset and layers and zeroes the count.
func (c *Controller) resetLocked() error {
	c.state.Dataset = nil
	c.state.Meta = domain.QueryMetadata{}
	c.view.SetAccidentCount(accidentCountText(0))
	return c.layers.Clear()
}

// SetViewMode switches between cluster and heatmap, re-rendering the current
// dataset without fetching.
func (c *Controller) SetViewMode(mode domain.ViewMode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown view mode %q", mode)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Filter.ViewMode = mode
	if c.state.Dataset == nil {
		return nil
	}
	return c.layers.Render(mode, c.state.Dataset)
}

// SetSeverity changes the severity filter and re-fetches. Empty clears it.
func (c *Controller) SetSeverity(ctx context.Context, severity string) error {
	return c.refilter(ctx, func(f *domain.FilterState) { f.Severity = severity })
}

// SetStartYear changes the first year of the range and re-fetches.
func (c *Controller) SetStartYear(ctx context.Context, year string) error {
	return c.refilter(ctx, func(f *domain.FilterState) { f.StartYear = year })
}

// SetEndYear changes the last year of the range and re-fetches.
func (c *Controller) SetEndYear(ctx context.Context, year string) error {
	return c.refilter(ctx, func(f *domain.FilterState) { f.EndYear = year })
}

func (c *Controller) refilter(ctx context.Context, apply func(*domain.FilterState)) error {
	c.mu.Lock()
	apply(&c.state.Filter)
	location := c.state.Filter.Location
	c.mu.Unlock()

	return c.LoadAccidents(ctx, location)
}

// SetQueryInfoVisible shows or hides the query-info panel.
func (c *Controller) SetQueryInfoVisible(visible bool) {
	c.mu.Lock()
	c.state.QueryInfoVisible = visible
	c.mu.Unlock()

	c.view.SetQueryInfoVisible(visible)
}

// SwitchStyle loads a new base style. The style swap drops every custom layer,
// so the current dataset is re-rendered once the map is idle.
func (c *Controller) SwitchStyle(styleURL string) {
	c.m.SetStyle(styleURL, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.state.Dataset == nil {
			return
		}
		if err := c.layers.Render(c.state.Filter.ViewMode, c.state.Dataset); err != nil {
			c.logger.Error("re-render after style switch failed", "style", styleURL, "error", err)
		}
	})
}

// HandleClick builds the popup for a click on an individual accident point.
// Clicks on other layers, or on features without a point geometry, yield no popup.
func (c *Controller) HandleClick(layerID string, f *geojson.Feature) (Popup, bool) {
	if layerID != mapview.LayerUnclusteredPoint && layerID != mapview.LayerCircle {
		return Popup{}, false
	}
	if f == nil {
		return Popup{}, false
	}
	pt, ok := f.Geometry.(orb.Point)
	if !ok {
		return Popup{}, false
	}
	return Popup{LngLat: pt, HTML: domain.PopupHTML(f.Properties)}, true
}

func accidentCountText(n int) string {
	return "Accidents found: " + strconv.Itoa(n)
}

func formatQueryTime(seconds float64) string {
	if seconds == 0 {
		return "--"
	}
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
