package gcal

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/couchcryptid/tide-calendar-sync/internal/domain"
	calendar "google.golang.org/api/calendar/v3"
)

// newEvent builds an all-day event. The end date is exclusive.
func newEvent(id string, f domain.RecordFields) *calendar.Event {
	return &calendar.Event{
		Id:          id,
		Status:      statusConfirmed,
		Summary:     f.Title,
		Description: f.Body,
		Start:       &calendar.EventDateTime{Date: f.Date.String()},
		End:         &calendar.EventDateTime{Date: f.Date.AddDays(1).String()},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{locationKey: f.LocationID},
		},
	}
}

func toRecord(ev *calendar.Event) (domain.Record, error) {
	if ev.Start == nil || ev.Start.Date == "" {
		return domain.Record{}, fmt.Errorf("%w: event %s is not an all-day event", domain.ErrInvalidRecord, ev.Id)
	}
	d, err := civil.ParseDate(ev.Start.Date)
	if err != nil {
		return domain.Record{}, fmt.Errorf("%w: event %s start date %q", domain.ErrInvalidRecord, ev.Id, ev.Start.Date)
	}
	rec := domain.Record{
		ID:    ev.Id,
		Date:  d,
		Title: ev.Summary,
		Body:  ev.Description,
	}
	if ev.ExtendedProperties != nil {
		rec.LocationID = ev.ExtendedProperties.Private[locationKey]
	}
	if err := rec.Validate(); err != nil {
		return domain.Record{}, err
	}
	return rec, nil
}
