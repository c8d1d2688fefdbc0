package harmonic

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"cloud.google.com/go/civil"
	"github.com/couchcryptid/tide-calendar-sync/internal/cache"
	"github.com/couchcryptid/tide-calendar-sync/internal/domain"
)

const modelCacheSize = 64

var locationIDRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Source implements domain.TimeSeriesSource from per-location harmonic
// constants files named <dir>/<location_id>.yaml.
type Source struct {
	dir      string
	interval time.Duration
	models   *cache.LRU[string, *Model]
	logger   *slog.Logger
}

// NewSource creates a Source sampling every interval.
func NewSource(dir string, interval time.Duration, logger *slog.Logger) *Source {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Source{
		dir:      dir,
		interval: interval,
		models:   cache.NewLRU[string, *Model](modelCacheSize),
		logger:   logger,
	}
}

// Series returns the samples for local day date: 00:00 inclusive to 24:00
// exclusive, with the lead guard one interval before midnight and the trail
// guard at the following midnight.
func (s *Source) Series(ctx context.Context, locationID string, date civil.Date) (domain.DaySeries, error) {
	if err := ctx.Err(); err != nil {
		return domain.DaySeries{}, err
	}
	if !date.IsValid() {
		return domain.DaySeries{}, domain.ErrInvalidDate
	}
	m, err := s.model(locationID)
	if err != nil {
		return domain.DaySeries{}, err
	}

	tz := m.Location()
	start := time.Date(date.Year, date.Month, date.Day, 0, 0, 0, 0, tz)
	end := start.AddDate(0, 0, 1)

	samples := make([]domain.TimeSample, 0, int(end.Sub(start)/s.interval)+1)
	for t := start; t.Before(end); t = t.Add(s.interval) {
		samples = append(samples, domain.TimeSample{Time: t, HeightCm: m.Height(t)})
	}
	lead := start.Add(-s.interval)

	return domain.DaySeries{
		Date:    date,
		Samples: samples,
		Lead:    &domain.TimeSample{Time: lead, HeightCm: m.Height(lead)},
		Trail:   &domain.TimeSample{Time: end, HeightCm: m.Height(end)},
	}, nil
}

func (s *Source) model(locationID string) (*Model, error) {
	if !locationIDRe.MatchString(locationID) {
		return nil, fmt.Errorf("location %q: %w", locationID, domain.ErrLocationNotFound)
	}
	if m, ok := s.models.Get(locationID); ok {
		return m, nil
	}

	path := filepath.Join(s.dir, locationID+".yaml")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("location %q: %w", locationID, domain.ErrLocationNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read harmonic model: %w", err)
	}
	m, err := ParseModel(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s.models.Put(locationID, m)
	s.logger.Debug("harmonic model loaded", "location", locationID, "constituents", len(m.Constituents))
	return m, nil
}
