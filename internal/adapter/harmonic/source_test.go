package harmonic

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/couchcryptid/tide-calendar-sync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const m2Speed = 28.9841042

const choshiModel = `
msl_cm: 150
timezone: Asia/Tokyo
epoch: 2024-01-01T00:00:00Z
constituents:
  - name: M2
    speed_deg_per_hour: 28.9841042
    amplitude_cm: 80
    phase_deg: 0
  - name: K1
    speed_deg_per_hour: 15.0410686
    amplitude_cm: 20
    phase_deg: 45
`

func writeModel(t *testing.T, dir, id, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".yaml"), []byte(body), 0o600))
}

func testSource(t *testing.T, interval time.Duration) (*Source, string) {
	t.Helper()
	dir := t.TempDir()
	writeModel(t, dir, "choshi", choshiModel)
	return NewSource(dir, interval, slog.New(slog.NewTextHandler(io.Discard, nil))), dir
}

func TestModel_Height(t *testing.T) {
	m, err := ParseModel([]byte(`
msl_cm: 100
epoch: 2024-01-01T00:00:00Z
constituents:
  - {name: M2, speed_deg_per_hour: 28.9841042, amplitude_cm: 50, phase_deg: 0}
`))
	require.NoError(t, err)

	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	speed := m2Speed
	halfPeriod := time.Duration(180 / speed * float64(time.Hour))

	assert.InDelta(t, 150, m.Height(epoch), 1e-6)
	assert.InDelta(t, 50, m.Height(epoch.Add(halfPeriod)), 1e-3)
	assert.Equal(t, time.UTC, m.Location())
}

func TestParseModel_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not yaml", "msl_cm: [1"},
		{"no constituents", "msl_cm: 100\n"},
		{"zero speed", "constituents:\n  - {name: X, speed_deg_per_hour: 0, amplitude_cm: 1}\n"},
		{"negative amplitude", "constituents:\n  - {name: X, speed_deg_per_hour: 1, amplitude_cm: -1}\n"},
		{"bad timezone", "timezone: Mars/Base\nconstituents:\n  - {name: X, speed_deg_per_hour: 1, amplitude_cm: 1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseModel([]byte(tt.body))
			require.Error(t, err)
		})
	}
}

func TestSource_SeriesGrid(t *testing.T) {
	src, _ := testSource(t, 10*time.Minute)
	date := civil.Date{Year: 2024, Month: time.March, Day: 15}

	series, err := src.Series(context.Background(), "choshi", date)
	require.NoError(t, err)

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	midnight := time.Date(2024, 3, 15, 0, 0, 0, 0, tokyo)

	assert.Equal(t, date, series.Date)
	require.Len(t, series.Samples, 144)
	assert.True(t, series.Samples[0].Time.Equal(midnight))
	assert.True(t, series.Samples[143].Time.Equal(midnight.Add(23*time.Hour+50*time.Minute)))
	require.NotNil(t, series.Lead)
	require.NotNil(t, series.Trail)
	assert.True(t, series.Lead.Time.Equal(midnight.Add(-10*time.Minute)))
	assert.True(t, series.Trail.Time.Equal(midnight.Add(24*time.Hour)))
}

func TestSource_TrailMatchesNextDayFirstSample(t *testing.T) {
	src, _ := testSource(t, 10*time.Minute)
	day := civil.Date{Year: 2024, Month: time.March, Day: 15}

	today, err := src.Series(context.Background(), "choshi", day)
	require.NoError(t, err)
	tomorrow, err := src.Series(context.Background(), "choshi", day.AddDays(1))
	require.NoError(t, err)

	assert.True(t, today.Trail.Time.Equal(tomorrow.Samples[0].Time))
	assert.InDelta(t, tomorrow.Samples[0].HeightCm, today.Trail.HeightCm, 1e-9)
	assert.True(t, tomorrow.Lead.Time.Equal(today.Samples[len(today.Samples)-1].Time))
}

func TestSource_ExtremaAlternate(t *testing.T) {
	src, _ := testSource(t, 10*time.Minute)

	series, err := src.Series(context.Background(), "choshi", civil.Date{Year: 2024, Month: time.March, Day: 15})
	require.NoError(t, err)

	events, dropped := domain.NewExtractor(nil).ExtractDay(series)
	assert.Zero(t, dropped)
	require.GreaterOrEqual(t, len(events), 2)
	assert.LessOrEqual(t, len(events), 5)
	for i := 1; i < len(events); i++ {
		assert.NotEqual(t, events[i-1].Kind, events[i].Kind, "extrema should alternate")
		assert.True(t, events[i].Time.After(events[i-1].Time))
	}
}

func TestSource_DSTShortDay(t *testing.T) {
	dir := t.TempDir()
	writeModel(t, dir, "boston", `
msl_cm: 150
timezone: America/New_York
constituents:
  - {name: M2, speed_deg_per_hour: 28.9841042, amplitude_cm: 100, phase_deg: 0}
`)
	src := NewSource(dir, 10*time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	series, err := src.Series(context.Background(), "boston", civil.Date{Year: 2024, Month: time.March, Day: 10})
	require.NoError(t, err)
	assert.Len(t, series.Samples, 138)
}

func TestSource_UnknownLocation(t *testing.T) {
	src, _ := testSource(t, 10*time.Minute)
	date := civil.Date{Year: 2024, Month: time.March, Day: 15}

	for _, id := range []string{"misaki", "../choshi", "", "a/b"} {
		_, err := src.Series(context.Background(), id, date)
		require.ErrorIs(t, err, domain.ErrLocationNotFound, id)
	}
}

func TestSource_InvalidDate(t *testing.T) {
	src, _ := testSource(t, 10*time.Minute)

	_, err := src.Series(context.Background(), "choshi", civil.Date{Year: 2024, Month: time.February, Day: 30})
	require.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestSource_CachesModel(t *testing.T) {
	src, dir := testSource(t, 30*time.Minute)
	date := civil.Date{Year: 2024, Month: time.March, Day: 15}

	first, err := src.Series(context.Background(), "choshi", date)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "choshi.yaml")))

	second, err := src.Series(context.Background(), "choshi", date)
	require.NoError(t, err)
	assert.Equal(t, first.Samples, second.Samples)
	assert.Len(t, second.Samples, 48)
}

func TestSource_CorruptModel(t *testing.T) {
	src, dir := testSource(t, 10*time.Minute)
	writeModel(t, dir, "broken", "constituents: {")

	_, err := src.Series(context.Background(), "broken", civil.Date{Year: 2024, Month: time.March, Day: 15})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrLocationNotFound)
}

func TestSource_CancelledContext(t *testing.T) {
	src, _ := testSource(t, 10*time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Series(ctx, "choshi", civil.Date{Year: 2024, Month: time.March, Day: 15})
	require.ErrorIs(t, err, context.Canceled)
}
