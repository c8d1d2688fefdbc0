package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/couchcryptid/tide-calendar-sync/internal/domain"
	"github.com/couchcryptid/tide-calendar-sync/internal/observability"
	"github.com/couchcryptid/tide-calendar-sync/internal/pipeline"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

// sineSource produces a semidiurnal series of mean 150cm and the given
// amplitude, sampled every 30 minutes in UTC. amplitudes overrides the
// amplitude for single dates. Dates listed in failing return an error.
type sineSource struct {
	amplitude  float64
	amplitudes map[civil.Date]float64
	failing    map[civil.Date]error
	mu         sync.Mutex
	calls      int
}

func (s *sineSource) Series(_ context.Context, _ string, date civil.Date) (domain.DaySeries, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if err, ok := s.failing[date]; ok {
		return domain.DaySeries{}, err
	}

	amp := s.amplitude
	if a, ok := s.amplitudes[date]; ok {
		amp = a
	}
	const period = 12.42 * float64(time.Hour)
	height := func(t time.Time) float64 {
		return 150 + amp*math.Cos(2*math.Pi*float64(t.UnixNano())/period)
	}
	start := date.In(time.UTC)
	step := 30 * time.Minute

	var samples []domain.TimeSample
	for t := start; t.Before(start.AddDate(0, 0, 1)); t = t.Add(step) {
		samples = append(samples, domain.TimeSample{Time: t, HeightCm: height(t)})
	}
	lead, trail := start.Add(-step), start.AddDate(0, 0, 1)
	return domain.DaySeries{
		Date:    date,
		Samples: samples,
		Lead:    &domain.TimeSample{Time: lead, HeightCm: height(lead)},
		Trail:   &domain.TimeSample{Time: trail, HeightCm: height(trail)},
	}, nil
}

// memStore is an in-memory domain.ManagedStore that counts calls.
type memStore struct {
	mu        sync.Mutex
	records   map[string]domain.Record
	gets      int
	creates   int
	updates   int
	getErr    error
	writeErr  error
	deleteErr map[string]error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]domain.Record)}
}

func (m *memStore) Get(_ context.Context, id string) (*domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *memStore) Create(_ context.Context, id string, f domain.RecordFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.writeErr != nil {
		return m.writeErr
	}
	if _, ok := m.records[id]; ok {
		return domain.ErrRecordExists
	}
	m.records[id] = domain.Record{ID: id, LocationID: f.LocationID, Date: f.Date, Title: f.Title, Body: f.Body}
	return nil
}

func (m *memStore) Update(_ context.Context, id string, f domain.RecordFields, _ *domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if m.writeErr != nil {
		return m.writeErr
	}
	if _, ok := m.records[id]; !ok {
		return domain.ErrRecordNotFound
	}
	m.records[id] = domain.Record{ID: id, LocationID: f.LocationID, Date: f.Date, Title: f.Title, Body: f.Body}
	return nil
}

func (m *memStore) List(_ context.Context, locationID string, from, to civil.Date) ([]domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Record
	for _, r := range m.records {
		if r.LocationID == locationID && !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *memStore) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.deleteErr[id]; err != nil {
		return false, err
	}
	if _, ok := m.records[id]; !ok {
		return false, nil
	}
	delete(m.records, id)
	return true, nil
}

func (m *memStore) put(r domain.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.ID] = r
}

func (m *memStore) get(id string) (domain.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	return r, ok
}

type registry map[string]domain.Location

func (r registry) Location(id string) (domain.Location, bool) {
	loc, ok := r[id]
	return loc, ok
}

var testLocations = registry{
	"choshi": {ID: "choshi", Name: "Choshi", Latitude: 35.7333, Longitude: 140.8667, Timezone: "UTC"},
}

// springEverywhere classifies every lunar age as Spring, so a day's regime
// depends only on its range.
func springEverywhere() domain.Calibration {
	cal := domain.DefaultCalibration()
	cal.Spring = []domain.Band{{From: 0, To: 30}}
	cal.Neap, cal.Long, cal.Young = nil, nil, nil
	return cal
}

func newTestSyncer(src domain.TimeSeriesSource, store domain.RecordStore) *pipeline.Syncer {
	opts := pipeline.DefaultSyncerOptions()
	opts.Calibration = springEverywhere()
	return pipeline.NewSyncer(src, store, testLocations, opts, discardLogger(), newTestMetrics())
}

var errBoom = errors.New("boom")
