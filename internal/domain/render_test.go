package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func testDayTide() DayTide {
	events := []TideEvent{
		{Time: at(0, 40), HeightCm: 22, Kind: Low},
		{Time: at(6, 0), HeightCm: 181.6, Kind: High},
		{Time: at(12, 10), HeightCm: 35, Kind: Low},
		{Time: at(18, 0), HeightCm: 170, Kind: High},
	}
	return DayTide{
		Date:         date(2024, 3, 10),
		Events:       events,
		Regime:       Spring,
		RangeCm:      TideRange(events),
		PrimeWindows: FindPrimeWindows(events, DefaultPrimeOffset),
		Midpoint:     true,
	}
}

func TestRenderer_Tide(t *testing.T) {
	loc := Location{ID: "choshi", Name: "Choshi", Latitude: 35.7347, Longitude: 140.8267}

	got := NewRenderer().Tide(loc, testDayTide())

	want := strings.Join([]string{
		"📍 35.7347, 140.8267",
		"◎ Spring midpoint",
		"High 06:00 (182cm)",
		"High 18:00 (170cm)",
		"Low 00:40 (22cm)",
		"Low 12:10 (35cm)",
		"Prime 04:00-08:00",
		"Prime 16:00-20:00",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRenderer_MarkerPolicy(t *testing.T) {
	day := testDayTide()
	day.Regime = Neap

	assert.NotContains(t, NewRenderer().Tide(Location{}, day), "midpoint")

	everyRegime := Renderer{ShowMarker: func(TideRegime) bool { return true }}
	assert.Contains(t, everyRegime.Tide(Location{}, day), "◎ Neap midpoint")

	day.Regime = Spring
	day.Midpoint = false
	assert.NotContains(t, NewRenderer().Tide(Location{}, day), "midpoint")
}

func TestRenderer_TideIsDeterministic(t *testing.T) {
	loc := Location{ID: "choshi", Name: "Choshi"}
	assert.Equal(t, NewRenderer().Tide(loc, testDayTide()), NewRenderer().Tide(loc, testDayTide()))
}

func TestRenderer_NoEvents(t *testing.T) {
	assert.Equal(t, "(no tide events)", NewRenderer().Tide(Location{}, DayTide{Regime: Neap}))
}

func TestRenderer_Title(t *testing.T) {
	r := NewRenderer()

	assert.Equal(t, "🔴 Choshi (Spring)", r.Title(Location{ID: "choshi", Name: "Choshi"}, DayTide{Regime: Spring}))
	assert.Equal(t, "🔵 osaka-bay (Neap)", r.Title(Location{ID: "osaka-bay"}, DayTide{Regime: Neap}))

	long := Location{ID: "x", Name: strings.Repeat("長い名前", 20)}
	title := r.Title(long, DayTide{Regime: Long})
	assert.Equal(t, MaxTitleRunes, utf8.RuneCountInString(title))
	assert.True(t, utf8.ValidString(title))
}

func TestLegend(t *testing.T) {
	assert.Equal(t, "🔴Spring 🟠Intermediate 🔵Neap ⚪Long 🟢Young", Legend())
}

func TestRenderer_SectionsAreParseable(t *testing.T) {
	body := NewRenderer().Sections(Location{ID: "choshi"}, testDayTide()).Render()

	s, err := ParseSections(body)
	if assert.NoError(t, err) {
		notes, _ := s.Get(SectionNotes)
		assert.Equal(t, NotesPlaceholder, notes)
		forecast, _ := s.Get(SectionForecast)
		assert.Equal(t, ForecastPlaceholder, forecast)
	}
}
