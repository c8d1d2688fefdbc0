package domain

import "errors"

var (
	// ErrLocationNotFound means no harmonic model or registry entry exists for a location.
	ErrLocationNotFound = errors.New("location not found")

	// ErrSourceUnavailable means the time-series source could not produce data.
	ErrSourceUnavailable = errors.New("time series unavailable")

	// ErrStore wraps record store failures surfaced from a sync.
	ErrStore = errors.New("sync failed")

	// ErrCorruptedRecord means a stored body lacks one of the required section markers.
	ErrCorruptedRecord = errors.New("corrupted record")

	// ErrInvalidRecord means a store payload could not be parsed into a Record.
	ErrInvalidRecord = errors.New("invalid record")

	ErrInvalidDate    = errors.New("invalid date")
	ErrRecordNotFound = errors.New("record not found")
	ErrRecordExists   = errors.New("record already exists")
)
