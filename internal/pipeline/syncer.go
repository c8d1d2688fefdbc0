package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"github.com/couchcryptid/tide-calendar-sync/internal/domain"
	"github.com/couchcryptid/tide-calendar-sync/internal/observability"
)

// DefaultWindowDays is the number of days on each side of the target date
// used to resolve regime runs.
const DefaultWindowDays = 7

// LocationRegistry resolves configured locations.
type LocationRegistry interface {
	Location(id string) (domain.Location, bool)
}

// SyncerOptions tunes the tide computation.
type SyncerOptions struct {
	Calibration domain.Calibration
	PrimeOffset time.Duration
	WindowDays  int
	Renderer    domain.Renderer
}

// DefaultSyncerOptions returns the reference calibration and window settings.
func DefaultSyncerOptions() SyncerOptions {
	return SyncerOptions{
		Calibration: domain.DefaultCalibration(),
		PrimeOffset: domain.DefaultPrimeOffset,
		WindowDays:  DefaultWindowDays,
		Renderer:    domain.NewRenderer(),
	}
}

// Syncer computes a day's tide summary and writes it into the record store
// with a single idempotent create or update.
type Syncer struct {
	source    domain.TimeSeriesSource
	store     domain.RecordStore
	locations LocationRegistry
	extractor *domain.Extractor
	opts      SyncerOptions
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewSyncer creates a Syncer. WindowDays below 3 is raised to 3.
func NewSyncer(source domain.TimeSeriesSource, store domain.RecordStore, locations LocationRegistry, opts SyncerOptions, logger *slog.Logger, metrics *observability.Metrics) *Syncer {
	if opts.WindowDays < 3 {
		opts.WindowDays = 3
	}
	if opts.PrimeOffset <= 0 {
		opts.PrimeOffset = domain.DefaultPrimeOffset
	}
	return &Syncer{
		source:    source,
		store:     store,
		locations: locations,
		extractor: domain.NewExtractor(logger),
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
	}
}

// Sync brings the record for (locationID, date) up to date. It returns
// Created or Updated after a successful write, and Skipped when the stored
// record is corrupted and was left untouched.
func (s *Syncer) Sync(ctx context.Context, locationID string, date civil.Date) (domain.SyncResult, error) {
	start := time.Now()
	defer func() { s.metrics.SyncDuration.Observe(time.Since(start).Seconds()) }()

	if !date.IsValid() {
		return domain.SyncResult{}, fmt.Errorf("sync %s: %w", locationID, domain.ErrInvalidDate)
	}
	loc, ok := s.locations.Location(locationID)
	if !ok {
		return domain.SyncResult{}, fmt.Errorf("sync %s: %w", locationID, domain.ErrLocationNotFound)
	}

	id := domain.StableID(locationID, date)
	log := s.logger.With("location", locationID, "date", date.String(), "stable_id", id)

	day, err := s.computeDay(ctx, locationID, date, log)
	if err != nil {
		s.metrics.SyncErrors.WithLabelValues("source").Inc()
		return domain.SyncResult{}, err
	}
	result := domain.SyncResult{LocationID: locationID, StableID: id, Day: day}

	fresh := s.opts.Renderer.Sections(loc, day)
	title := s.opts.Renderer.Title(loc, day)

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		s.metrics.SyncErrors.WithLabelValues("store").Inc()
		return domain.SyncResult{}, fmt.Errorf("%w: get %s: %w", domain.ErrStore, id, err)
	}

	if existing == nil {
		fields := domain.RecordFields{LocationID: locationID, Date: date, Title: title, Body: fresh.Render()}
		if err := s.store.Create(ctx, id, fields); err != nil {
			s.metrics.SyncErrors.WithLabelValues("store").Inc()
			return domain.SyncResult{}, fmt.Errorf("%w: create %s: %w", domain.ErrStore, id, err)
		}
		result.Outcome = domain.Created
		s.finish(log, result)
		return result, nil
	}

	current, err := domain.ParseSections(existing.Body)
	if err != nil {
		log.Warn("stored record is corrupted, skipping write", "error", err)
		result.Outcome = domain.Skipped
		s.finish(log, result)
		return result, nil
	}

	merged := domain.MergeSections(current, fresh)
	fields := domain.RecordFields{LocationID: locationID, Date: date, Title: title, Body: merged.Render()}
	if err := s.store.Update(ctx, id, fields, existing); err != nil {
		s.metrics.SyncErrors.WithLabelValues("store").Inc()
		return domain.SyncResult{}, fmt.Errorf("%w: update %s: %w", domain.ErrStore, id, err)
	}
	result.Outcome = domain.Updated
	s.finish(log, result)
	return result, nil
}

func (s *Syncer) finish(log *slog.Logger, r domain.SyncResult) {
	s.metrics.SyncOutcomes.WithLabelValues(r.Outcome.String()).Inc()
	log.Info("sync complete",
		"outcome", r.Outcome.String(),
		"regime", r.Day.Regime.String(),
		"events", len(r.Day.Events),
		"midpoint", r.Day.Midpoint,
	)
}

// computeDay builds the DayTide for date. Neighbouring days within the
// window are classified too, so the run midpoint can be resolved. A neighbour
// that fails to load is logged and left out, and a run reaching it or the
// window edge is not flagged.
func (s *Syncer) computeDay(ctx context.Context, locationID string, date civil.Date, log *slog.Logger) (domain.DayTide, error) {
	target, err := s.source.Series(ctx, locationID, date)
	if err != nil {
		if errors.Is(err, domain.ErrLocationNotFound) {
			return domain.DayTide{}, fmt.Errorf("series %s %s: %w", locationID, date, err)
		}
		return domain.DayTide{}, fmt.Errorf("%w: series %s %s: %w", domain.ErrSourceUnavailable, locationID, date, err)
	}

	day := s.classifyDay(date, target)
	day.PrimeWindows = domain.FindPrimeWindows(day.Events, s.opts.PrimeOffset)

	regimes := make([]domain.DayRegime, 0, 2*s.opts.WindowDays+1)
	regimes = append(regimes, domain.DayRegime{Date: date, Regime: day.Regime})
	for offset := -s.opts.WindowDays; offset <= s.opts.WindowDays; offset++ {
		if offset == 0 {
			continue
		}
		d := date.AddDays(offset)
		series, err := s.source.Series(ctx, locationID, d)
		if err != nil {
			if ctx.Err() != nil {
				return domain.DayTide{}, ctx.Err()
			}
			log.Warn("neighbouring day unavailable", "neighbour", d.String(), "error", err)
			continue
		}
		regimes = append(regimes, domain.DayRegime{Date: d, Regime: s.classifyDay(d, series).Regime})
	}
	day.Midpoint = boundedMidpoint(date, regimes)

	return day, nil
}

// boundedMidpoint reports whether date is the midpoint of its run and the days
// on both sides of the run were loaded with a different regime.
func boundedMidpoint(date civil.Date, regimes []domain.DayRegime) bool {
	w, ok := domain.FindPeriod(date, regimes)
	if !ok || w.Midpoint != date {
		return false
	}
	loaded := make(map[civil.Date]bool, len(regimes))
	for _, r := range regimes {
		loaded[r.Date] = true
	}
	return loaded[w.Start.AddDays(-1)] && loaded[w.End.AddDays(1)]
}

func (s *Syncer) classifyDay(date civil.Date, series domain.DaySeries) domain.DayTide {
	events, dropped := s.extractor.ExtractDay(series)
	if dropped > 0 {
		s.metrics.ExtremaDropped.Add(float64(dropped))
	}
	rangeCm := domain.TideRange(events)
	age := s.opts.Calibration.LunarAge(date)
	return domain.DayTide{
		Date:     date,
		Events:   events,
		Regime:   domain.Classify(rangeCm, age, s.opts.Calibration),
		RangeCm:  rangeCm,
		LunarAge: age,
	}
}
