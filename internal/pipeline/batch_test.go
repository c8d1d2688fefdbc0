package pipeline_test

import (
	"context"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/couchcryptid/tide-calendar-sync/internal/domain"
	"github.com/couchcryptid/tide-calendar-sync/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncRange_CountsOutcomes(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	src := &sineSource{amplitude: 100, failing: map[civil.Date]error{jan26.AddDays(2): errBoom}}
	s := newTestSyncer(src, store)

	corrupted := domain.StableID("choshi", jan26.AddDays(3))
	store.put(domain.Record{ID: corrupted, LocationID: "choshi", Date: jan26.AddDays(3), Body: "scribbles"})

	report, err := s.SyncRange(ctx, "choshi", jan26, 5)
	require.NoError(t, err)
	assert.Equal(t, pipeline.RangeReport{Created: 3, Skipped: 1, Failed: 1}, report)
	assert.Equal(t, 5, report.Total())

	report, err = s.SyncRange(ctx, "choshi", jan26, 2)
	require.NoError(t, err)
	assert.Equal(t, pipeline.RangeReport{Updated: 2}, report)
}

func TestSyncRange_UnknownLocation(t *testing.T) {
	s := newTestSyncer(&sineSource{amplitude: 100}, newMemStore())

	_, err := s.SyncRange(context.Background(), "atlantis", jan26, 3)
	require.ErrorIs(t, err, domain.ErrLocationNotFound)
}

func TestSyncRange_Cancelled(t *testing.T) {
	store := newMemStore()
	s := newTestSyncer(&sineSource{amplitude: 100}, store)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SyncRange(ctx, "choshi", jan26, 3)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.records)
}

func seedRecords(t *testing.T, store *memStore, loc string, start civil.Date, days int) {
	t.Helper()
	for i := range days {
		d := start.AddDays(i)
		store.put(domain.Record{ID: domain.StableID(loc, d), LocationID: loc, Date: d, Body: "x"})
	}
}

func TestResetter_DeletesRange(t *testing.T) {
	store := newMemStore()
	seedRecords(t, store, "choshi", jan26, 5)
	seedRecords(t, store, "misaki", jan26, 5)
	r := pipeline.NewResetter(store, discardLogger())

	report, err := r.Reset(context.Background(), "choshi", jan26.AddDays(1), jan26.AddDays(3), false)
	require.NoError(t, err)
	assert.Equal(t, pipeline.ResetReport{Found: 3, Deleted: 3}, report)

	assert.Len(t, store.records, 7)
	_, ok := store.get(domain.StableID("choshi", jan26))
	assert.True(t, ok)
	_, ok = store.get(domain.StableID("choshi", jan26.AddDays(2)))
	assert.False(t, ok)
}

func TestResetter_DryRun(t *testing.T) {
	store := newMemStore()
	seedRecords(t, store, "choshi", jan26, 3)
	r := pipeline.NewResetter(store, discardLogger())

	report, err := r.Reset(context.Background(), "choshi", jan26, jan26.AddDays(10), true)
	require.NoError(t, err)
	assert.Equal(t, pipeline.ResetReport{Found: 3}, report)
	assert.Len(t, store.records, 3)
}

func TestResetter_CountsFailures(t *testing.T) {
	store := newMemStore()
	seedRecords(t, store, "choshi", jan26, 3)
	store.deleteErr = map[string]error{domain.StableID("choshi", jan26.AddDays(1)): errBoom}
	r := pipeline.NewResetter(store, discardLogger())

	report, err := r.Reset(context.Background(), "choshi", jan26, jan26.AddDays(2), false)
	require.NoError(t, err)
	assert.Equal(t, pipeline.ResetReport{Found: 3, Deleted: 2, Failed: 1}, report)
}

func TestResetter_InvertedRange(t *testing.T) {
	r := pipeline.NewResetter(newMemStore(), discardLogger())

	_, err := r.Reset(context.Background(), "choshi", jan26, jan26.AddDays(-1), false)
	require.Error(t, err)
}

func TestResetThenResync(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := newTestSyncer(&sineSource{amplitude: 100}, store)

	_, err := s.SyncRange(ctx, "choshi", jan26, 3)
	require.NoError(t, err)

	_, err = pipeline.NewResetter(store, discardLogger()).Reset(ctx, "choshi", jan26, jan26.AddDays(2), false)
	require.NoError(t, err)
	assert.Empty(t, store.records)

	report, err := s.SyncRange(ctx, "choshi", jan26, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Created)
}
