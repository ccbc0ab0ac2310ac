// Command mapclient runs the map client headlessly against a running accident
// service: it centres on a place, loads accidents under the given filters, and
// writes the resulting query-info panel and map style document as JSON.
//
// Usage:
//
//	go run ./cmd/mapclient \
//	  -location "Santa Monica, California, United States" \
//	  -severity 3 -start-year 2019 -end-year 2021 -view heatmap \
//	  -animate 2s -out style.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/accident-map/internal/adapter/api"
	"github.com/couchcryptid/accident-map/internal/adapter/mapbox"
	"github.com/couchcryptid/accident-map/internal/animator"
	"github.com/couchcryptid/accident-map/internal/client"
	"github.com/couchcryptid/accident-map/internal/config"
	"github.com/couchcryptid/accident-map/internal/domain"
	"github.com/couchcryptid/accident-map/internal/mapview"
	"github.com/couchcryptid/accident-map/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
)

type output struct {
	Panel client.PanelState `json:"panel"`
	Style json.RawMessage   `json:"style"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mapclient: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	location := flag.String("location", cfg.ClientLocation, "place to centre on and query")
	search := flag.String("search", "", "place to search for after start-up")
	severity := flag.String("severity", "", "severity filter (1-4)")
	startYear := flag.String("start-year", "", "first year of the date range")
	endYear := flag.String("end-year", "", "last year of the date range")
	view := flag.String("view", string(domain.ViewCluster), "view mode: cluster or heatmap")
	style := flag.String("style", cfg.MapStyle, "base map style URL")
	animate := flag.Duration("animate", 0, "run the heatmap animation for this long before writing output")
	showInfo := flag.Bool("query-info", true, "show the query-info panel")
	out := flag.String("out", "", "output path (default stdout)")
	flag.Parse()

	mode := domain.ViewMode(*view)
	if !mode.Valid() {
		return fmt.Errorf("invalid -view %q", *view)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	// The client serves no /metrics endpoint.
	metrics := observability.NewUnregisteredMetrics()

	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		geocoder = mapbox.NewCachedGeocoder(
			mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger),
			cfg.MapboxCacheSize, metrics)
	} else {
		logger.Info("mapbox geocoding disabled; using fallback centre")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := mapview.NewStyle(cfg.MapStyle, orb.Point{}, 0)
	panel := &client.Panel{}
	ctrl := client.NewController(
		api.NewClient(cfg.APIBaseURL, cfg.FetchTimeout, logger),
		geocoder, m, panel,
		domain.FilterState{
			Location:  *location,
			Severity:  *severity,
			StartYear: *startYear,
			EndYear:   *endYear,
			ViewMode:  mode,
		},
		metrics, logger,
	)
	ctrl.SetQueryInfoVisible(*showInfo)

	if err := ctrl.Start(ctx); err != nil {
		logger.Error("initial load failed", "error", err)
	}
	if *search != "" {
		if err := ctrl.Search(ctx, *search); err != nil {
			return err
		}
	}
	if *style != cfg.MapStyle {
		ctrl.SwitchStyle(*style)
	}

	if *animate > 0 {
		anim := animator.New(m, ctrl.ViewMode, clockwork.NewRealClock(), cfg.AnimationFrame, metrics, logger)
		animCtx, cancel := context.WithTimeout(ctx, *animate)
		err := anim.Run(animCtx)
		cancel()
		if ctx.Err() != nil {
			return err
		}
	}

	doc, err := m.Document()
	if err != nil {
		return fmt.Errorf("encode style: %w", err)
	}
	data, err := json.MarshalIndent(output{Panel: panel.State(), Style: doc}, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if *out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(*out, data, 0o600)
}
