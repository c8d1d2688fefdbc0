package domain

import (
	"sort"
	"time"
)

// DefaultPrimeOffset is the half-width of a prime window around a high tide.
const DefaultPrimeOffset = 2 * time.Hour

// FindPrimeWindows returns one window of [t-offset, t+offset] per High event,
// in chronological order. Windows are neither merged nor clamped to the day.
func FindPrimeWindows(events []TideEvent, offset time.Duration) []PrimeWindow {
	highs := eventsOfKind(events, High)
	sort.SliceStable(highs, func(i, j int) bool {
		return highs[i].Time.Before(highs[j].Time)
	})

	windows := make([]PrimeWindow, 0, len(highs))
	for _, h := range highs {
		windows = append(windows, PrimeWindow{
			Start: h.Time.Add(-offset),
			End:   h.Time.Add(offset),
		})
	}
	return windows
}
