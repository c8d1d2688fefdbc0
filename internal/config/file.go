package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // location timezones must resolve without system zoneinfo

	"github.com/couchcryptid/tide-calendar-sync/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone     = "UTC"
	defaultRegisterDays = 30
)

// File is the YAML configuration describing locations and tide settings.
type File struct {
	Settings          Settings          `yaml:"settings"`
	Locations         []domain.Location `yaml:"locations"`
	FishingConditions FishingConditions `yaml:"fishing_conditions"`
	Calibration       CalibrationFile   `yaml:"calibration"`

	tz *time.Location
}

// Settings holds general sync settings.
type Settings struct {
	Timezone     string `yaml:"timezone"`
	RegisterDays int    `yaml:"register_days"`
}

// FishingConditions holds activity window settings.
type FishingConditions struct {
	PrimeTimeOffsetHours *float64 `yaml:"prime_time_offset_hours"`
}

// CalibrationFile overrides the default classification constants. Unset
// fields keep their defaults.
type CalibrationFile struct {
	Epoch           *time.Time    `yaml:"epoch"`
	SynodicMonth    float64       `yaml:"synodic_month"`
	Spring          []domain.Band `yaml:"spring"`
	Neap            []domain.Band `yaml:"neap"`
	Long            []domain.Band `yaml:"long"`
	Young           []domain.Band `yaml:"young"`
	SpringPromoteCm *float64      `yaml:"spring_promote_cm"`
	SpringDemoteCm  *float64      `yaml:"spring_demote_cm"`
}

// LoadFile reads and validates the YAML configuration at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	f, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ParseFile decodes YAML configuration, applies defaults, and validates it.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if f.Settings.Timezone == "" {
		f.Settings.Timezone = defaultTimezone
	}
	if f.Settings.RegisterDays == 0 {
		f.Settings.RegisterDays = defaultRegisterDays
	}

	tz, err := time.LoadLocation(f.Settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid settings.timezone %q: %w", f.Settings.Timezone, err)
	}
	f.tz = tz

	if f.Settings.RegisterDays < 0 {
		return nil, errors.New("settings.register_days must be positive")
	}
	if off := f.FishingConditions.PrimeTimeOffsetHours; off != nil && *off <= 0 {
		return nil, errors.New("fishing_conditions.prime_time_offset_hours must be positive")
	}
	if len(f.Locations) == 0 {
		return nil, errors.New("at least one location is required")
	}

	seen := make(map[string]bool, len(f.Locations))
	for i := range f.Locations {
		loc := &f.Locations[i]
		if loc.ID == "" {
			return nil, fmt.Errorf("locations[%d]: id is required", i)
		}
		if seen[loc.ID] {
			return nil, fmt.Errorf("locations[%d]: duplicate id %q", i, loc.ID)
		}
		seen[loc.ID] = true
		if loc.Timezone == "" {
			loc.Timezone = f.Settings.Timezone
		}
		if _, err := time.LoadLocation(loc.Timezone); err != nil {
			return nil, fmt.Errorf("locations[%d]: invalid timezone %q: %w", i, loc.Timezone, err)
		}
	}

	if err := f.TideCalibration().Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// TimeZone returns the default timezone from settings.
func (f *File) TimeZone() *time.Location {
	if f.tz == nil {
		return time.UTC
	}
	return f.tz
}

// PrimeOffset returns the half-width of prime windows.
func (f *File) PrimeOffset() time.Duration {
	if f.FishingConditions.PrimeTimeOffsetHours == nil {
		return domain.DefaultPrimeOffset
	}
	return time.Duration(*f.FishingConditions.PrimeTimeOffsetHours * float64(time.Hour))
}

// TideCalibration merges the file overrides onto the default calibration.
func (f *File) TideCalibration() domain.Calibration {
	cal := domain.DefaultCalibration()
	c := f.Calibration
	if c.Epoch != nil {
		cal.Epoch = c.Epoch.UTC()
	}
	if c.SynodicMonth != 0 {
		cal.SynodicMonth = c.SynodicMonth
	}
	if c.Spring != nil {
		cal.Spring = c.Spring
	}
	if c.Neap != nil {
		cal.Neap = c.Neap
	}
	if c.Long != nil {
		cal.Long = c.Long
	}
	if c.Young != nil {
		cal.Young = c.Young
	}
	if c.SpringPromoteCm != nil {
		cal.SpringPromoteCm = *c.SpringPromoteCm
	}
	if c.SpringDemoteCm != nil {
		cal.SpringDemoteCm = *c.SpringDemoteCm
	}
	return cal
}

// Location looks up a configured location by id.
func (f *File) Location(id string) (domain.Location, bool) {
	for _, loc := range f.Locations {
		if loc.ID == id {
			return loc, true
		}
	}
	return domain.Location{}, false
}
