package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/tide-calendar-sync/internal/adapter/gcal"
	"github.com/couchcryptid/tide-calendar-sync/internal/adapter/harmonic"
	"github.com/couchcryptid/tide-calendar-sync/internal/adapter/mapbox"
	"github.com/couchcryptid/tide-calendar-sync/internal/adapter/sqlite"
	"github.com/couchcryptid/tide-calendar-sync/internal/config"
	"github.com/couchcryptid/tide-calendar-sync/internal/domain"
	"github.com/couchcryptid/tide-calendar-sync/internal/observability"
	"github.com/couchcryptid/tide-calendar-sync/internal/pipeline"
)

// app holds the wired dependencies shared by every subcommand.
type app struct {
	cfg     *config.Config
	file    *config.File
	logger  *slog.Logger
	metrics *observability.Metrics
	store   domain.ManagedStore
	close   func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	file, err := config.LoadFile(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		file:    file,
		logger:  logger,
		metrics: metrics,
		close:   func() error { return nil },
	}

	switch cfg.RecordStore {
	case config.StoreGCal:
		client, err := gcal.NewClient(ctx, cfg.GCalBaseURL, cfg.GCalCalendar, cfg.GCalToken, cfg.GCalTimeout, logger)
		if err != nil {
			return nil, err
		}
		a.store = client
		logger.Info("record store: calendar", "calendar", cfg.GCalCalendar)
	default:
		store, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		a.store = store
		a.close = store.Close
		logger.Info("record store: sqlite", "path", cfg.SQLitePath)
	}

	a.resolveLocations(ctx)
	return a, nil
}

// resolveLocations geocodes configured locations that lack coordinates.
func (a *app) resolveLocations(ctx context.Context) {
	if !a.cfg.MapboxEnabled {
		a.logger.Info("mapbox geocoding disabled")
		return
	}

	a.metrics.GeocodeEnabled.Set(1)
	client := mapbox.NewClient(a.cfg.MapboxToken, a.cfg.MapboxTimeout, a.metrics, a.logger)
	geocoder := mapbox.NewCachedGeocoder(client, a.cfg.MapboxCacheSize, a.metrics)
	a.logger.Info("mapbox geocoding enabled", "cache_size", a.cfg.MapboxCacheSize, "timeout", a.cfg.MapboxTimeout)

	for i, loc := range a.file.Locations {
		a.file.Locations[i] = domain.ResolveCoordinates(ctx, loc, geocoder, a.logger)
	}
}

func (a *app) syncer() *pipeline.Syncer {
	source := harmonic.NewSource(a.cfg.HarmonicsDir, a.cfg.SampleInterval, a.logger)

	opts := pipeline.DefaultSyncerOptions()
	opts.Calibration = a.file.TideCalibration()
	opts.PrimeOffset = a.file.PrimeOffset()
	opts.WindowDays = a.cfg.PeriodWindowDays

	return pipeline.NewSyncer(source, a.store, a.file, opts, a.logger, a.metrics)
}

func (a *app) requireLocation(id string) error {
	if id == "" {
		return errors.New("--location-id is required")
	}
	if _, ok := a.file.Location(id); !ok {
		return fmt.Errorf("location %q: %w", id, domain.ErrLocationNotFound)
	}
	return nil
}

func (a *app) shutdown() {
	if err := a.close(); err != nil {
		a.logger.Error("record store close error", "error", err)
	}
}
