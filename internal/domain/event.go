package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// TimeSample is one predicted sea-level height.
type TimeSample struct {
	Time     time.Time `json:"time"`
	HeightCm float64   `json:"height_cm"`
}

// DaySeries is one local calendar day of samples, ordered by time, plus the
// neighbouring-day guard samples used for boundary extrema detection.
type DaySeries struct {
	Date    civil.Date   `json:"date"`
	Samples []TimeSample `json:"samples"`
	Lead    *TimeSample  `json:"lead,omitempty"`
	Trail   *TimeSample  `json:"trail,omitempty"`
}

// Guarded returns the day's samples with the lead and trail guards attached.
// A guard is only attached if it lies strictly outside the day's samples.
func (s DaySeries) Guarded() []TimeSample {
	out := make([]TimeSample, 0, len(s.Samples)+2)
	if s.Lead != nil && (len(s.Samples) == 0 || s.Lead.Time.Before(s.Samples[0].Time)) {
		out = append(out, *s.Lead)
	}
	out = append(out, s.Samples...)
	if s.Trail != nil && (len(s.Samples) == 0 || s.Trail.Time.After(s.Samples[len(s.Samples)-1].Time)) {
		out = append(out, *s.Trail)
	}
	return out
}

// EventKind distinguishes high and low tide events.
type EventKind int

const (
	High EventKind = iota + 1
	Low
)

func (k EventKind) String() string {
	switch k {
	case High:
		return "high"
	case Low:
		return "low"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

func (k EventKind) MarshalText() ([]byte, error) {
	switch k {
	case High, Low:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("unknown event kind %d", int(k))
	}
}

func (k *EventKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "high":
		*k = High
	case "low":
		*k = Low
	default:
		return fmt.Errorf("unknown event kind %q", b)
	}
	return nil
}

// TideEvent is a local extremum of the height series.
type TideEvent struct {
	Time     time.Time `json:"time"`
	HeightCm float64   `json:"height_cm"`
	Kind     EventKind `json:"kind"`
}

// PrimeWindow is the activity window around a high tide.
type PrimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DayTide is the computed tide summary for one location and date.
type DayTide struct {
	Date         civil.Date    `json:"date"`
	Events       []TideEvent   `json:"events"`
	Regime       TideRegime    `json:"regime"`
	RangeCm      float64       `json:"range_cm"`
	LunarAge     float64       `json:"lunar_age"`
	PrimeWindows []PrimeWindow `json:"prime_windows"`
	// Midpoint is true when the date is the midpoint of its same-regime run.
	Midpoint bool `json:"midpoint"`
}

// Highs returns the high tide events in time order.
func (d DayTide) Highs() []TideEvent { return eventsOfKind(d.Events, High) }

// Lows returns the low tide events in time order.
func (d DayTide) Lows() []TideEvent { return eventsOfKind(d.Events, Low) }

func eventsOfKind(events []TideEvent, kind EventKind) []TideEvent {
	var out []TideEvent
	for _, e := range events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Location is a configured tide station.
type Location struct {
	ID        string  `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"latitude,omitempty" yaml:"latitude"`
	Longitude float64 `json:"longitude,omitempty" yaml:"longitude"`
	// Query is a free-form place name used to geocode missing coordinates.
	Query    string `json:"query,omitempty" yaml:"query"`
	Timezone string `json:"timezone,omitempty" yaml:"timezone"`
}

// HasCoordinates reports whether latitude and longitude are set.
func (l Location) HasCoordinates() bool {
	return l.Latitude != 0 || l.Longitude != 0
}

// SyncOutcome is the result of a single sync call.
type SyncOutcome int

const (
	Created SyncOutcome = iota + 1
	Updated
	Skipped
)

func (o SyncOutcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("SyncOutcome(%d)", int(o))
	}
}

func (o SyncOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *SyncOutcome) UnmarshalText(b []byte) error {
	switch string(b) {
	case "created":
		*o = Created
	case "updated":
		*o = Updated
	case "skipped":
		*o = Skipped
	default:
		return fmt.Errorf("unknown sync outcome %q", b)
	}
	return nil
}

// SyncResult describes what a sync did for one location and date.
type SyncResult struct {
	LocationID string      `json:"location_id"`
	StableID   string      `json:"stable_id"`
	Outcome    SyncOutcome `json:"outcome"`
	Day        DayTide     `json:"day"`
}

// SyncRequest asks the service to sync one location and date.
type SyncRequest struct {
	LocationID string     `json:"location_id"`
	Date       civil.Date `json:"date"`
}

// ParseSyncRequest decodes and validates a sync request payload.
func ParseSyncRequest(data []byte) (SyncRequest, error) {
	var req SyncRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return SyncRequest{}, fmt.Errorf("parse sync request: %w", err)
	}
	if req.LocationID == "" {
		return SyncRequest{}, errors.New("parse sync request: location_id is required")
	}
	if !req.Date.IsValid() {
		return SyncRequest{}, fmt.Errorf("parse sync request: %w", ErrInvalidDate)
	}
	return req, nil
}

// DaySummary is the serialized form published after a sync.
type DaySummary struct {
	StableID   string      `json:"stable_id"`
	LocationID string      `json:"location_id"`
	Outcome    SyncOutcome `json:"outcome"`
	Day        DayTide     `json:"day"`
	SyncedAt   time.Time   `json:"synced_at"`
}

// NewDaySummary stamps a sync result with the current time.
func NewDaySummary(r SyncResult) DaySummary {
	return DaySummary{
		StableID:   r.StableID,
		LocationID: r.LocationID,
		Outcome:    r.Outcome,
		Day:        r.Day,
		SyncedAt:   clock.Now().UTC(),
	}
}

// RawMessage represents an unprocessed message from the source topic.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}
