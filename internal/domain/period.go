package domain

import "cloud.google.com/go/civil"

// DayRegime pairs a date with its classified regime.
type DayRegime struct {
	Date   civil.Date `json:"date"`
	Regime TideRegime `json:"regime"`
}

// PeriodWindow is a maximal run of consecutive dates sharing one regime.
type PeriodWindow struct {
	Regime   TideRegime
	Start    civil.Date
	End      civil.Date
	Midpoint civil.Date
}

// Len returns the number of days in the run.
func (w PeriodWindow) Len() int {
	return w.End.DaysSince(w.Start) + 1
}

// FindPeriod locates the run containing target within series. The series may
// be unsorted. The outermost dates of the series bound the run; a date missing
// inside that span, or listed twice with different regimes, makes the run
// boundary unobservable and FindPeriod reports false.
func FindPeriod(target civil.Date, series []DayRegime) (PeriodWindow, bool) {
	if len(series) == 0 {
		return PeriodWindow{}, false
	}

	byDate := make(map[civil.Date]TideRegime, len(series))
	conflicts := make(map[civil.Date]bool)
	first, last := series[0].Date, series[0].Date
	for _, dr := range series {
		if prev, ok := byDate[dr.Date]; ok && prev != dr.Regime {
			conflicts[dr.Date] = true
		}
		byDate[dr.Date] = dr.Regime
		if dr.Date.Before(first) {
			first = dr.Date
		}
		if dr.Date.After(last) {
			last = dr.Date
		}
	}

	regime, ok := byDate[target]
	if !ok || conflicts[target] {
		return PeriodWindow{}, false
	}

	// observe reports whether d continues the run, and false for ok when the
	// boundary cannot be determined.
	observe := func(d civil.Date) (same, ok bool) {
		if d.Before(first) || d.After(last) {
			return false, true
		}
		r, present := byDate[d]
		if !present || conflicts[d] {
			return false, false
		}
		return r == regime, true
	}

	start := target
	for {
		same, ok := observe(start.AddDays(-1))
		if !ok {
			return PeriodWindow{}, false
		}
		if !same {
			break
		}
		start = start.AddDays(-1)
	}

	end := target
	for {
		same, ok := observe(end.AddDays(1))
		if !ok {
			return PeriodWindow{}, false
		}
		if !same {
			break
		}
		end = end.AddDays(1)
	}

	w := PeriodWindow{Regime: regime, Start: start, End: end}
	w.Midpoint = start.AddDays((w.Len() - 1) / 2)
	return w, true
}

// IsMidpoint reports whether target is the midpoint of the run of same-regime
// days containing it. Even-length runs resolve to the earlier central day.
func IsMidpoint(target civil.Date, series []DayRegime) bool {
	w, ok := FindPeriod(target, series)
	return ok && w.Midpoint == target
}
