package domain

import (
	"fmt"
	"strings"
)

// MaxTitleRunes caps record titles; calendar clients truncate longer summaries.
const MaxTitleRunes = 50

// Placeholder texts for sections with no content yet.
const (
	ForecastPlaceholder = "(forecast not yet available)"
	NotesPlaceholder    = "(add your notes here)"
)

// MarkerPolicy decides whether the run-midpoint marker is shown for a regime.
type MarkerPolicy func(TideRegime) bool

// SpringOnly shows the midpoint marker on Spring runs only.
func SpringOnly(r TideRegime) bool { return r == Spring }

// Renderer produces the machine-owned text of a record.
type Renderer struct {
	ShowMarker MarkerPolicy
}

// NewRenderer returns a Renderer using the SpringOnly marker policy.
func NewRenderer() Renderer {
	return Renderer{ShowMarker: SpringOnly}
}

// Legend lists every regime with its emoji.
func Legend() string {
	parts := make([]string, 0, len(Regimes))
	for _, r := range Regimes {
		parts = append(parts, r.Emoji()+r.String())
	}
	return strings.Join(parts, " ")
}

// Title returns the record title for a day at a location.
func (Renderer) Title(loc Location, day DayTide) string {
	name := loc.Name
	if name == "" {
		name = loc.ID
	}
	title := fmt.Sprintf("%s %s (%s)", day.Regime.Emoji(), name, day.Regime)
	runes := []rune(title)
	if len(runes) > MaxTitleRunes {
		return string(runes[:MaxTitleRunes])
	}
	return title
}

// Tide renders the TIDE section content. It contains no wall-clock
// timestamps, so unchanged input renders byte-identical output.
func (rd Renderer) Tide(loc Location, day DayTide) string {
	var lines []string
	if loc.HasCoordinates() {
		lines = append(lines, fmt.Sprintf("📍 %.4f, %.4f", loc.Latitude, loc.Longitude))
	}
	if day.Midpoint && rd.ShowMarker != nil && rd.ShowMarker(day.Regime) {
		lines = append(lines, fmt.Sprintf("◎ %s midpoint", day.Regime))
	}
	for _, e := range day.Highs() {
		lines = append(lines, fmt.Sprintf("High %s (%.0fcm)", e.Time.Format("15:04"), e.HeightCm))
	}
	for _, e := range day.Lows() {
		lines = append(lines, fmt.Sprintf("Low %s (%.0fcm)", e.Time.Format("15:04"), e.HeightCm))
	}
	for _, w := range day.PrimeWindows {
		lines = append(lines, fmt.Sprintf("Prime %s-%s", w.Start.Format("15:04"), w.End.Format("15:04")))
	}
	if len(lines) == 0 {
		return "(no tide events)"
	}
	return strings.Join(lines, "\n")
}

// Sections builds the complete section set for a new record.
func (rd Renderer) Sections(loc Location, day DayTide) Sections {
	return Sections{
		Preamble: Legend(),
		List: []Section{
			{Name: SectionTide, Content: rd.Tide(loc, day)},
			{Name: SectionForecast, Content: ForecastPlaceholder},
			{Name: SectionNotes, Content: NotesPlaceholder},
		},
	}
}
