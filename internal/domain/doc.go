// Package domain models daily tide predictions and the calendar records they
// are synchronized into.
//
// # Time Series
//
// A [DaySeries] holds one local calendar day of predicted sea-level heights,
// sampled on a regular grid (10 minutes by default), plus one guard sample on
// each side taken from the neighbouring days:
//
//	lead guard | 00:00 00:10 ... 23:50 | trail guard (next day 00:00)
//
// The guards let the extractor see an extremum sitting on the first or last
// sample of the day. Without them a low tide at 23:59 is the final element of
// the slice and can never be a strict local minimum.
//
// # Extrema
//
// [Extractor] compares every sample with its immediate neighbours. A strictly
// greater sample is a High, a strictly smaller one a Low. Plateaus produce no
// event. Heights outside [MinHeightCm, MaxHeightCm] are model artifacts and are
// dropped with a warning.
//
// # Regimes
//
// The five regimes follow the Japanese tide-table convention:
//
//	Spring       大潮  new/full moon, largest range
//	Intermediate 中潮  transition days
//	Neap         小潮  quarter moons, smallest range
//	Long         長潮  last neap day, long slack water
//	Young        若潮  first day after Long, range recovering
//
// Classification is driven by lunar age (days since a reference new moon,
// modulo the synodic month) using the bands in [Calibration]. The day's tidal
// range then corrects the boundary cases: a very large range promotes
// Intermediate to Spring and a very small range demotes Spring to Intermediate.
//
// # Records
//
// A synchronized [Record] body is plain text split into bracketed sections:
//
//	legend line
//
//	[TIDE]
//	High 05:48 (182cm)
//	...
//
//	[FORECAST]
//	(forecast not yet available)
//
//	[NOTES]
//	anything the user typed
//
// TIDE and FORECAST are rewritten on every sync. NOTES, and any other section
// the user added, is carried over verbatim. A body missing one of the three
// required markers is treated as corrupted and never overwritten.
//
// # ID Generation
//
// Record IDs are deterministic SHA-256 hashes of location|date, so repeated
// syncs of the same day always address the same record. See [StableID].
package domain
