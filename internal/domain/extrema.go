package domain

import (
	"log/slog"
	"sort"
)

// Valid extremum heights in centimetres.
const (
	MinHeightCm = 0
	MaxHeightCm = 500
)

// Extractor finds local maxima and minima in an ordered height series.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an Extractor that logs dropped samples to logger.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract returns the strict local extrema of samples in time order, along
// with the number of extrema dropped for falling outside the valid height range.
// Samples must be sorted ascending by time. Fewer than three samples, or a
// series with no strict turning points, yields no events.
func (x *Extractor) Extract(samples []TimeSample) ([]TideEvent, int) {
	if len(samples) < 3 {
		return nil, 0
	}

	var (
		events  []TideEvent
		dropped int
	)
	for i := 1; i < len(samples)-1; i++ {
		prev, cur, next := samples[i-1].HeightCm, samples[i].HeightCm, samples[i+1].HeightCm

		var kind EventKind
		switch {
		case prev < cur && cur > next:
			kind = High
		case prev > cur && cur < next:
			kind = Low
		default:
			continue
		}

		if cur < MinHeightCm || cur > MaxHeightCm {
			x.logger.Warn("extremum out of range, dropping",
				"time", samples[i].Time,
				"height_cm", cur,
				"kind", kind.String(),
			)
			dropped++
			continue
		}

		events = append(events, TideEvent{Time: samples[i].Time, HeightCm: cur, Kind: kind})
	}

	return dedupeEvents(events), dropped
}

// ExtractDay runs Extract over the day's samples with the neighbouring-day
// guards attached, so extrema on the first or last sample are detected.
func (x *Extractor) ExtractDay(series DaySeries) ([]TideEvent, int) {
	return x.Extract(series.Guarded())
}

// dedupeEvents keeps the first event for any timestamp reported more than once.
func dedupeEvents(events []TideEvent) []TideEvent {
	if len(events) < 2 {
		return events
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})
	out := events[:1]
	for _, e := range events[1:] {
		if e.Time.Equal(out[len(out)-1].Time) {
			continue
		}
		out = append(out, e)
	}
	return out
}
