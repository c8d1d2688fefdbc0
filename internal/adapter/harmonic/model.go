// Package harmonic predicts sea-level heights from tidal harmonic constants.
package harmonic

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gopkg.in/yaml.v3"
)

// Constituent is one tidal harmonic component.
type Constituent struct {
	Name        string  `yaml:"name"`
	SpeedDegHr  float64 `yaml:"speed_deg_per_hour"`
	AmplitudeCm float64 `yaml:"amplitude_cm"`
	PhaseDeg    float64 `yaml:"phase_deg"`
}

// Model is a location's harmonic constants file.
type Model struct {
	MSLCm        float64       `yaml:"msl_cm"`
	Timezone     string        `yaml:"timezone"`
	Epoch        *time.Time    `yaml:"epoch"`
	Constituents []Constituent `yaml:"constituents"`

	tz    *time.Location
	epoch time.Time
}

var defaultEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// ParseModel decodes and validates a harmonic constants document.
func ParseModel(data []byte) (*Model, error) {
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse harmonic model: %w", err)
	}
	if len(m.Constituents) == 0 {
		return nil, errors.New("harmonic model has no constituents")
	}
	for i, c := range m.Constituents {
		if c.SpeedDegHr <= 0 {
			return nil, fmt.Errorf("constituents[%d] %s: speed must be positive", i, c.Name)
		}
		if c.AmplitudeCm < 0 {
			return nil, fmt.Errorf("constituents[%d] %s: amplitude must not be negative", i, c.Name)
		}
	}

	if m.Timezone == "" {
		m.Timezone = "UTC"
	}
	tz, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", m.Timezone, err)
	}
	m.tz = tz

	m.epoch = defaultEpoch
	if m.Epoch != nil {
		m.epoch = m.Epoch.UTC()
	}
	return &m, nil
}

// Location returns the timezone that defines the model's calendar days.
func (m *Model) Location() *time.Location { return m.tz }

// Height returns the predicted height in centimetres at t.
func (m *Model) Height(t time.Time) float64 {
	dt := t.Sub(m.epoch).Hours()
	h := m.MSLCm
	for _, c := range m.Constituents {
		arg := (c.SpeedDegHr*dt - c.PhaseDeg) * math.Pi / 180
		h += c.AmplitudeCm * math.Cos(arg)
	}
	return h
}
