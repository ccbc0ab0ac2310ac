// Command validate checks the mock accident fixtures: the GeoJSON fixture must
// match the shape the map client renders, and, when a SQLite store is given,
// the store must answer an area query with the same records.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -geojson data/mock/accidents.geojson \
//	  -db accidents.db
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/accident-map/internal/domain"
	"github.com/couchcryptid/accident-map/internal/store"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	geojsonPath := flag.String("geojson", "", "path to the GeoJSON accident fixture")
	dbPath := flag.String("db", "", "optional SQLite store to cross-check")
	flag.Parse()

	if *geojsonPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*geojsonPath, *dbPath); code != 0 {
		os.Exit(code)
	}
}

func run(geojsonPath, dbPath string) int {
	fmt.Println("=== Accident Fixture Validation ===")
	fmt.Println()

	data, err := os.ReadFile(geojsonPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read fixture: %v\n", err)
		return 1
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse fixture: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateFeatures(fc),
		validateClientDecode(data, len(fc.Features)),
	}
	if dbPath != "" {
		phases = append(phases, validateStoreParity(dbPath, fc))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d GeoJSON features\n", len(fc.Features))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i >= 20 {
				fmt.Printf("  ... and %d more\n", len(p.errors)-20)
				break
			}
			fmt.Printf("  %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	return 0
}

// validateFeatures checks every feature carries what the layers and popup read.
func validateFeatures(fc *geojson.FeatureCollection) *phase {
	p := &phase{name: "Feature schema"}
	seen := make(map[string]bool, len(fc.Features))

	for i, f := range fc.Features {
		pf := func(format string, args ...any) {
			p.errorf("feature %d: "+format, append([]any{i}, args...)...)
		}

		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			pf("geometry is %T, want Point", f.Geometry)
		} else if pt.Lon() < -180 || pt.Lon() > 180 || pt.Lat() < -90 || pt.Lat() > 90 {
			pf("coordinates %v out of range", pt)
		}

		id := f.Properties.MustString(domain.PropID, "")
		switch {
		case id == "":
			pf("id is empty")
		case seen[id]:
			pf("duplicate id %q", id)
		}
		seen[id] = true

		if sev := f.Properties.MustInt(domain.PropSeverity, 0); sev < 1 || sev > 4 {
			pf("severity %v not in 1-4", f.Properties[domain.PropSeverity])
		}
		if st := f.Properties.MustString(domain.PropStartTime, ""); st == "" {
			pf("start_time is empty")
		} else if _, err := time.Parse(time.DateTime, st); err != nil {
			pf("start_time %q: %v", st, err)
		}
		if f.Properties.MustFloat64(domain.PropDistanceMi, -1) < 0 {
			pf("distance_mi missing or negative")
		}
	}
	return p
}

// validateClientDecode runs the fixture through the client's response decoder.
func validateClientDecode(data []byte, want int) *phase {
	p := &phase{name: "Client decode (bare FeatureCollection)"}
	resp, err := domain.DecodeResponse(data)
	switch {
	case err != nil:
		p.errorf("decode: %v", err)
	case resp.Kind != domain.KindResult:
		p.errorf("decoded as error response: %s", resp.Error)
	case resp.FeatureCount() != want:
		p.errorf("decoded %d features, want %d", resp.FeatureCount(), want)
	}
	return p
}

// validateStoreParity queries the store over the fixture's extent and expects
// exactly the fixture's IDs back.
func validateStoreParity(dbPath string, fc *geojson.FeatureCollection) *phase {
	p := &phase{name: "SQLite store parity"}
	if len(fc.Features) == 0 {
		return p
	}

	ctx := context.Background()
	db, err := store.OpenSQLite(ctx, dbPath, slog.New(slog.DiscardHandler))
	if err != nil {
		p.errorf("open store: %v", err)
		return p
	}
	defer db.Close()

	bound := fc.Features[0].Geometry.Bound()
	for _, f := range fc.Features[1:] {
		bound = bound.Union(f.Geometry.Bound())
	}
	res, err := db.FindAccidents(ctx, store.Query{Area: bound.Pad(1e-6).ToPolygon()})
	if err != nil {
		p.errorf("query store: %v", err)
		return p
	}

	got := make(map[string]domain.Accident, len(res.Accidents))
	for _, a := range res.Accidents {
		got[a.ID] = a
	}
	if len(got) != len(fc.Features) {
		p.errorf("store returned %d accidents, fixture has %d", len(got), len(fc.Features))
	}
	for _, f := range fc.Features {
		id := f.Properties.MustString(domain.PropID, "")
		a, ok := got[id]
		if !ok {
			p.errorf("id %q missing from store", id)
			continue
		}
		if a.Severity != f.Properties.MustInt(domain.PropSeverity, 0) {
			p.errorf("id %q: store severity %d, fixture %v", id, a.Severity, f.Properties[domain.PropSeverity])
		}
		// The store renders coordinates through text, keeping 15 significant digits.
		if pt, ok := f.Geometry.(orb.Point); ok && planar.Distance(pt, a.Location) > 1e-9 {
			p.errorf("id %q: store location %v, fixture %v", id, a.Location, pt)
		}
	}
	if res.Skipped > 0 {
		p.errorf("store skipped %d unparseable rows", res.Skipped)
	}
	return p
}
