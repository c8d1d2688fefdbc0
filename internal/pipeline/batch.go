package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/civil"
	"github.com/couchcryptid/tide-calendar-sync/internal/domain"
)

// RangeReport counts the outcomes of a multi-day sync.
type RangeReport struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Total returns the number of days attempted.
func (r RangeReport) Total() int {
	return r.Created + r.Updated + r.Skipped + r.Failed
}

// SyncRange syncs days consecutive dates starting at start. A failing day is
// logged and counted; only an unknown location or a cancelled context stops
// the run early.
func (s *Syncer) SyncRange(ctx context.Context, locationID string, start civil.Date, days int) (RangeReport, error) {
	var report RangeReport
	if _, ok := s.locations.Location(locationID); !ok {
		return report, fmt.Errorf("sync range %s: %w", locationID, domain.ErrLocationNotFound)
	}
	if !start.IsValid() {
		return report, fmt.Errorf("sync range %s: %w", locationID, domain.ErrInvalidDate)
	}

	for i := range days {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		date := start.AddDays(i)
		res, err := s.Sync(ctx, locationID, date)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failed++
			s.logger.Error("day sync failed", "location", locationID, "date", date.String(), "error", err)
			continue
		}
		switch res.Outcome {
		case domain.Created:
			report.Created++
		case domain.Updated:
			report.Updated++
		case domain.Skipped:
			report.Skipped++
		}
	}

	s.logger.Info("range sync complete",
		"location", locationID,
		"start", start.String(),
		"days", days,
		"created", report.Created,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report, nil
}

// ResetStore lists and deletes records.
type ResetStore interface {
	domain.RecordLister
	domain.RecordDeleter
}

// ResetReport counts the records a reset touched.
type ResetReport struct {
	Found   int `json:"found"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// Resetter removes a location's records over a date range.
type Resetter struct {
	store  ResetStore
	logger *slog.Logger
}

// NewResetter creates a Resetter.
func NewResetter(store ResetStore, logger *slog.Logger) *Resetter {
	return &Resetter{store: store, logger: logger}
}

// Reset deletes the location's records dated from..to inclusive. With dryRun
// the records are only counted.
func (r *Resetter) Reset(ctx context.Context, locationID string, from, to civil.Date, dryRun bool) (ResetReport, error) {
	var report ResetReport
	if to.Before(from) {
		return report, fmt.Errorf("reset %s: end date %s is before start date %s", locationID, to, from)
	}

	records, err := r.store.List(ctx, locationID, from, to)
	if err != nil {
		return report, fmt.Errorf("reset %s: %w", locationID, err)
	}
	report.Found = len(records)

	if dryRun {
		for _, rec := range records {
			r.logger.Info("would delete record", "stable_id", rec.ID, "date", rec.Date.String(), "title", rec.Title)
		}
		return report, nil
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		deleted, err := r.store.Delete(ctx, rec.ID)
		switch {
		case err != nil:
			report.Failed++
			r.logger.Error("delete record failed", "stable_id", rec.ID, "error", err)
		case deleted:
			report.Deleted++
		default:
			r.logger.Debug("record already gone", "stable_id", rec.ID)
		}
	}

	r.logger.Info("reset complete",
		"location", locationID,
		"from", from.String(),
		"to", to.String(),
		"found", report.Found,
		"deleted", report.Deleted,
		"failed", report.Failed,
	)
	return report, nil
}
