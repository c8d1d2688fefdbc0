package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"cloud.google.com/go/civil"
)

// Record is a stored calendar entry, parsed and validated at the store boundary.
type Record struct {
	ID         string
	LocationID string
	Date       civil.Date
	Title      string
	Body       string
}

// Fields returns the writable part of the record.
func (r Record) Fields() RecordFields {
	return RecordFields{LocationID: r.LocationID, Date: r.Date, Title: r.Title, Body: r.Body}
}

// Validate checks the invariants every store adapter guarantees before a
// record enters the sync flow.
func (r Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	if !r.Date.IsValid() {
		return fmt.Errorf("%w: record %s has invalid date", ErrInvalidRecord, r.ID)
	}
	return nil
}

// RecordFields is the content written to the store for a record.
type RecordFields struct {
	LocationID string
	Date       civil.Date
	Title      string
	Body       string
}

// StableID derives the record id for a location and date. The same inputs
// always produce the same id.
func StableID(locationID string, date civil.Date) string {
	h := sha256.Sum256([]byte(locationID + "|" + date.String()))
	return hex.EncodeToString(h[:])
}

// TimeSeriesSource produces the predicted height series for a location and date.
type TimeSeriesSource interface {
	// Series returns the local day's samples with lead and trail guards.
	// It returns ErrLocationNotFound when no model exists for the location.
	Series(ctx context.Context, locationID string, date civil.Date) (DaySeries, error)
}

// RecordStore is the keyed document store that receives synced days.
type RecordStore interface {
	// Get returns nil, nil when no record exists for id.
	Get(ctx context.Context, id string) (*Record, error)
	Create(ctx context.Context, id string, fields RecordFields) error
	// Update overwrites the record. existing is the value the caller already
	// fetched, so implementations need not read it again.
	Update(ctx context.Context, id string, fields RecordFields, existing *Record) error
}

// RecordLister lists stored records for a location within a date range.
type RecordLister interface {
	List(ctx context.Context, locationID string, from, to civil.Date) ([]Record, error)
}

// RecordDeleter removes a record. It reports false when the record did not exist.
type RecordDeleter interface {
	Delete(ctx context.Context, id string) (bool, error)
}

// ManagedStore is a store supporting the full record lifecycle.
type ManagedStore interface {
	RecordStore
	RecordLister
	RecordDeleter
}
