package domain

import (
	"errors"
	"fmt"
	"math"
	"time"

	"cloud.google.com/go/civil"
	"github.com/soniakeys/meeus/v3/julian"
)

// Band is a lunar-age interval in days. To is exclusive unless Inclusive is set.
type Band struct {
	From      float64 `yaml:"from"`
	To        float64 `yaml:"to"`
	Inclusive bool    `yaml:"inclusive"`
}

// Contains reports whether age falls within the band.
func (b Band) Contains(age float64) bool {
	if age < b.From {
		return false
	}
	if b.Inclusive {
		return age <= b.To
	}
	return age < b.To
}

// Calibration holds the reference constants and thresholds used by Classify.
type Calibration struct {
	// Epoch is a reference new moon.
	Epoch        time.Time
	SynodicMonth float64

	Spring []Band
	Neap   []Band
	Long   []Band
	Young  []Band

	// SpringPromoteCm promotes Intermediate to Spring when the range reaches it.
	SpringPromoteCm float64
	// SpringDemoteCm demotes Spring to Intermediate when the range is below it.
	SpringDemoteCm float64
}

// DefaultCalibration returns the reference table values.
func DefaultCalibration() Calibration {
	return Calibration{
		Epoch:        time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC),
		SynodicMonth: 29.530588867,
		Spring: []Band{
			{From: 0, To: 3, Inclusive: true},
			{From: 12, To: 18, Inclusive: true},
			{From: 26.5, To: 30},
		},
		Neap:            []Band{{From: 5, To: 8}, {From: 20, To: 23}},
		Long:            []Band{{From: 8, To: 9}, {From: 23, To: 24}},
		Young:           []Band{{From: 9, To: 10}, {From: 24, To: 25}},
		SpringPromoteCm: 180,
		SpringDemoteCm:  80,
	}
}

// Validate checks that the calibration can classify every lunar age.
func (c Calibration) Validate() error {
	if c.Epoch.IsZero() {
		return errors.New("calibration epoch is required")
	}
	if c.SynodicMonth <= 0 {
		return errors.New("calibration synodic month must be positive")
	}
	for name, bands := range map[string][]Band{"spring": c.Spring, "neap": c.Neap, "long": c.Long, "young": c.Young} {
		for _, b := range bands {
			if b.To < b.From {
				return fmt.Errorf("calibration %s band [%g, %g] is inverted", name, b.From, b.To)
			}
		}
	}
	if c.SpringDemoteCm > c.SpringPromoteCm {
		return errors.New("calibration spring demote threshold exceeds promote threshold")
	}
	return nil
}

// LunarAge returns days since the epoch new moon at 00:00 UTC of d, reduced
// modulo the synodic month into [0, synodicMonth).
func LunarAge(d civil.Date, epoch time.Time, synodicMonth float64) float64 {
	jd := julian.TimeToJD(d.In(time.UTC))
	return normalizeAge(jd-julian.TimeToJD(epoch), synodicMonth)
}

func normalizeAge(age, synodicMonth float64) float64 {
	if synodicMonth <= 0 || math.IsNaN(age) || math.IsInf(age, 0) {
		return 0
	}
	age = math.Mod(age, synodicMonth)
	if age < 0 {
		age += synodicMonth
	}
	return age
}

// LunarAge returns the lunar age of d under this calibration.
func (c Calibration) LunarAge(d civil.Date) float64 {
	return LunarAge(d, c.Epoch, c.SynodicMonth)
}

// Classify assigns a regime from the day's tidal range and lunar age.
// A non-positive range carries no signal and leaves the age classification alone.
func Classify(rangeCm, lunarAgeDays float64, c Calibration) TideRegime {
	regime := classifyAge(normalizeAge(lunarAgeDays, c.SynodicMonth), c)

	if rangeCm <= 0 || math.IsNaN(rangeCm) {
		return regime
	}
	switch regime {
	case Intermediate:
		if rangeCm >= c.SpringPromoteCm {
			return Spring
		}
	case Spring:
		if rangeCm < c.SpringDemoteCm {
			return Intermediate
		}
	case Neap, Long, Young:
	}
	return regime
}

func classifyAge(age float64, c Calibration) TideRegime {
	switch {
	case inAny(age, c.Spring):
		return Spring
	case inAny(age, c.Neap):
		return Neap
	case inAny(age, c.Long):
		return Long
	case inAny(age, c.Young):
		return Young
	default:
		return Intermediate
	}
}

func inAny(age float64, bands []Band) bool {
	for _, b := range bands {
		if b.Contains(age) {
			return true
		}
	}
	return false
}

// TideRange returns max(High) minus min(Low), or 0 when either kind is missing.
func TideRange(events []TideEvent) float64 {
	var (
		maxHigh, minLow float64
		hasHigh, hasLow bool
	)
	for _, e := range events {
		switch e.Kind {
		case High:
			if !hasHigh || e.HeightCm > maxHigh {
				maxHigh = e.HeightCm
			}
			hasHigh = true
		case Low:
			if !hasLow || e.HeightCm < minLow {
				minLow = e.HeightCm
			}
			hasLow = true
		}
	}
	if !hasHigh || !hasLow {
		return 0
	}
	return maxHigh - minLow
}
