// Command genseries evaluates a location's harmonic model and writes the
// predicted series and detected extrema as JSON fixtures, one object per day.
//
// Usage:
//
//	go run ./cmd/genseries \
//	  -harmonics config/harmonics \
//	  -location choshi \
//	  -start 2024-03-01 -days 3 \
//	  -out data/fixtures/choshi_240301.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/civil"
	"github.com/couchcryptid/tide-calendar-sync/internal/adapter/harmonic"
	"github.com/couchcryptid/tide-calendar-sync/internal/domain"
)

// dayFixture is the JSON shape of one generated day.
type dayFixture struct {
	LocationID string               `json:"location_id"`
	Series     domain.DaySeries     `json:"series"`
	Events     []domain.TideEvent   `json:"events"`
	Dropped    int                  `json:"dropped"`
	RangeCm    float64              `json:"range_cm"`
	LunarAge   float64              `json:"lunar_age"`
	Regime     domain.TideRegime    `json:"regime"`
	Prime      []domain.PrimeWindow `json:"prime_windows"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dir := flag.String("harmonics", "config/harmonics", "directory of per-location harmonic models")
	location := flag.String("location", "", "location id")
	start := flag.String("start", "", "first date, YYYY-MM-DD")
	days := flag.Int("days", 1, "number of days")
	interval := flag.Duration("interval", 10*time.Minute, "sample interval")
	out := flag.String("out", "", "output path for the JSON fixture")
	flag.Parse()

	if *location == "" || *start == "" || *out == "" {
		flag.Usage()
		return errors.New("missing required flags: -location, -start, -out")
	}
	first, err := civil.ParseDate(*start)
	if err != nil {
		return fmt.Errorf("-start %q: %w", *start, domain.ErrInvalidDate)
	}

	logger := slog.Default()
	fixtures, err := generate(context.Background(), harmonic.NewSource(*dir, *interval, logger), logger, *location, first, *days)
	if err != nil {
		return err
	}

	if err := writeJSON(*out, fixtures); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d days to %s", len(fixtures), *out)
	return nil
}

func generate(ctx context.Context, src domain.TimeSeriesSource, logger *slog.Logger, locationID string, first civil.Date, days int) ([]dayFixture, error) {
	cal := domain.DefaultCalibration()
	extractor := domain.NewExtractor(logger)

	fixtures := make([]dayFixture, 0, days)
	for i := range days {
		date := first.AddDays(i)
		series, err := src.Series(ctx, locationID, date)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", locationID, date, err)
		}

		events, dropped := extractor.ExtractDay(series)
		rangeCm := domain.TideRange(events)
		age := cal.LunarAge(date)

		fixtures = append(fixtures, dayFixture{
			LocationID: locationID,
			Series:     series,
			Events:     events,
			Dropped:    dropped,
			RangeCm:    rangeCm,
			LunarAge:   age,
			Regime:     domain.Classify(rangeCm, age, cal),
			Prime:      domain.FindPrimeWindows(events, domain.DefaultPrimeOffset),
		})
		log.Printf("%s: %d samples, %d extrema", date, len(series.Samples), len(events))
	}
	return fixtures, nil
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
