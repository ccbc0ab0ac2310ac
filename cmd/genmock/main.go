// Command genmock generates deterministic mock accident data for local runs
// and tests. It seeds a SQLite store and writes the same records as a GeoJSON
// fixture, so the service and client suites see identical data.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -db accidents.db \
//	  -geojson-out data/mock/accidents.geojson \
//	  -per-city 500
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/accident-map/internal/domain"
	"github.com/couchcryptid/accident-map/internal/store"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
)

var baseDate = time.Date(2016, time.February, 8, 0, 0, 0, 0, time.UTC)

// city is a cluster centre with the spread, in degrees, of its accidents.
type city struct {
	name   string
	center orb.Point
	spread float64
}

var cities = []city{
	{"Santa Monica", orb.Point{-118.4912, 34.0195}, 0.03},
	{"Long Beach", orb.Point{-118.1937, 33.7701}, 0.06},
	{"Los Angeles", orb.Point{-118.2437, 34.0522}, 0.12},
	{"Austin", orb.Point{-97.7431, 30.2672}, 0.08},
}

var weather = []string{"Clear", "Fair", "Overcast", "Light Rain", "Rain", "Fog", "Haze", "Partly Cloudy"}

var streets = []string{"I-405 N", "I-10 W", "Lincoln Blvd", "Wilshire Blvd", "Ocean Ave", "Pacific Coast Hwy", "Main St", "Congress Ave"}

// severityWeights skews toward minor accidents, like real traffic data.
var severityWeights = []int{1: 10, 2: 65, 3: 20, 4: 5}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dbPath := flag.String("db", "", "SQLite database to seed")
	geojsonOut := flag.String("geojson-out", "", "output path for the GeoJSON fixture")
	perCity := flag.Int("per-city", 250, "accidents generated around each city")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if *dbPath == "" && *geojsonOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -db and/or -geojson-out")
	}

	accidents := generate(*perCity, *seed)
	log.Printf("generated %d accidents", len(accidents))

	if *dbPath != "" {
		if err := seedSQLite(*dbPath, accidents); err != nil {
			return fmt.Errorf("seeding %s: %w", *dbPath, err)
		}
		log.Printf("seeded SQLite store: %s", *dbPath)
	}

	if *geojsonOut != "" {
		if err := writeJSON(*geojsonOut, domain.NewAccidentCollection(accidents)); err != nil {
			return fmt.Errorf("writing GeoJSON fixture: %w", err)
		}
		log.Printf("wrote GeoJSON fixture: %s", *geojsonOut)
	}

	printStats(accidents)
	return nil
}

func generate(perCity int, seed uint64) []domain.Accident {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	// A fake clock walks forward through time so start times are reproducible.
	clock := clockwork.NewFakeClockAt(baseDate)

	accidents := make([]domain.Accident, 0, perCity*len(cities))
	for i := range perCity * len(cities) {
		c := cities[i%len(cities)]
		clock.Advance(time.Duration(rng.IntN(180)+1) * time.Minute)

		accidents = append(accidents, domain.Accident{
			ID:               fmt.Sprintf("A-%d", 1000+i),
			Severity:         pickSeverity(rng),
			StartTime:        clock.Now().Format(time.DateTime),
			Description:      fmt.Sprintf("Accident on %s near %s.", streets[rng.IntN(len(streets))], c.name),
			WeatherCondition: weather[rng.IntN(len(weather))],
			DistanceMi:       float64(rng.IntN(300)) / 100,
			Location: orb.Point{
				c.center.Lon() + (rng.Float64()*2-1)*c.spread,
				c.center.Lat() + (rng.Float64()*2-1)*c.spread,
			},
		})
	}
	return accidents
}

func pickSeverity(rng *rand.Rand) int {
	n := rng.IntN(100)
	for level := 1; level < len(severityWeights); level++ {
		if n < severityWeights[level] {
			return level
		}
		n -= severityWeights[level]
	}
	return len(severityWeights) - 1
}

func seedSQLite(path string, accidents []domain.Accident) error {
	ctx := context.Background()
	db, err := store.OpenSQLite(ctx, path, slog.New(slog.DiscardHandler))
	if err != nil {
		return err
	}
	defer db.Close()
	return db.InsertAccidents(ctx, accidents)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

type count struct {
	key   string
	count int
}

func sortedCounts(m map[string]int) []count {
	out := make([]count, 0, len(m))
	for k, c := range m {
		out = append(out, count{k, c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

func printStats(accidents []domain.Accident) {
	bySeverity := map[string]int{}
	byYear := map[string]int{}
	byCity := map[string]int{}
	for i := range accidents {
		a := &accidents[i]
		bySeverity[fmt.Sprint(a.Severity)]++
		byYear[a.StartTime[:4]]++
		byCity[cities[i%len(cities)].name]++
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(accidents))
	for _, group := range []struct {
		name   string
		counts map[string]int
	}{{"By severity", bySeverity}, {"By year", byYear}, {"By city", byCity}} {
		fmt.Printf("%s:", group.name)
		for _, c := range sortedCounts(group.counts) {
			fmt.Printf(" %s=%d", c.key, c.count)
		}
		fmt.Println()
	}
	if len(accidents) > 0 {
		fmt.Printf("Date range: %s .. %s\n", accidents[0].StartTime, accidents[len(accidents)-1].StartTime)
	}
}
