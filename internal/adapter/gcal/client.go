// Package gcal stores tide records as all-day events in a Google Calendar.
package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/couchcryptid/tide-calendar-sync/internal/domain"
	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	locationKey     = "location_id"
	statusCancelled = "cancelled"
	statusConfirmed = "confirmed"
	listPageSize    = 250
)

// Client is a domain.ManagedStore backed by one calendar.
type Client struct {
	events     *calendar.EventsService
	calendarID string
	logger     *slog.Logger
}

// NewClient creates a calendar store that authenticates with a static bearer
// token. baseURL is the API root, e.g. https://www.googleapis.com/calendar/v3.
func NewClient(ctx context.Context, baseURL, calendarID, token string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		},
	}
	svc, err := calendar.NewService(ctx,
		option.WithHTTPClient(httpClient),
		option.WithEndpoint(strings.TrimSuffix(baseURL, "/")+"/"),
	)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &Client{events: svc.Events, calendarID: calendarID, logger: logger}, nil
}

// Get returns nil when the event does not exist or was cancelled.
func (c *Client) Get(ctx context.Context, id string) (*domain.Record, error) {
	ev, err := c.events.Get(c.calendarID, id).Context(ctx).Do()
	if isGone(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", id, classify(err))
	}
	if ev.Status == statusCancelled {
		return nil, nil
	}
	rec, err := toRecord(ev)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserts the event. An id that belongs to a previously deleted event
// is rejected by the API with 409, in which case the event is restored with
// a full replace.
func (c *Client) Create(ctx context.Context, id string, f domain.RecordFields) error {
	ev := newEvent(id, f)
	_, err := c.events.Insert(c.calendarID, ev).Context(ctx).Do()
	if statusOf(err) == http.StatusConflict {
		c.logger.Debug("event id taken, restoring", "stable_id", id)
		if _, err := c.events.Update(c.calendarID, id, ev).Context(ctx).Do(); err != nil {
			return fmt.Errorf("restore event %s: %w", id, classify(err))
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("create event %s: %w", id, classify(err))
	}
	return nil
}

// Update patches the event. existing is not re-read.
func (c *Client) Update(ctx context.Context, id string, f domain.RecordFields, _ *domain.Record) error {
	_, err := c.events.Patch(c.calendarID, id, newEvent(id, f)).Context(ctx).Do()
	if statusOf(err) == http.StatusNotFound {
		return fmt.Errorf("update event %s: %w", id, domain.ErrRecordNotFound)
	}
	if err != nil {
		return fmt.Errorf("update event %s: %w", id, classify(err))
	}
	return nil
}

// List returns the location's events dated from..to inclusive.
func (c *Client) List(ctx context.Context, locationID string, from, to civil.Date) ([]domain.Record, error) {
	call := c.events.List(c.calendarID).
		PrivateExtendedProperty(locationKey+"="+locationID).
		TimeMin(dayStart(from).Format(time.RFC3339)).
		TimeMax(dayStart(to.AddDays(1)).Format(time.RFC3339)).
		SingleEvents(true).
		MaxResults(listPageSize)

	var out []domain.Record
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, ev := range page.Items {
			if ev.Status == statusCancelled {
				continue
			}
			rec, err := toRecord(ev)
			if err != nil {
				c.logger.Warn("skipping invalid event", "event_id", ev.Id, "error", err)
				continue
			}
			if rec.Date.Before(from) || rec.Date.After(to) {
				continue
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", classify(err))
	}
	return out, nil
}

// Delete removes the event, reporting false when it was already gone.
func (c *Client) Delete(ctx context.Context, id string) (bool, error) {
	err := c.events.Delete(c.calendarID, id).Context(ctx).Do()
	if isGone(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete event %s: %w", id, classify(err))
	}
	return true, nil
}

// statusOf returns the HTTP status of an API error, or 0.
func statusOf(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func isGone(err error) bool {
	s := statusOf(err)
	return s == http.StatusNotFound || s == http.StatusGone
}

// classify marks undecodable response bodies as invalid records.
func classify(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: decode response: %w", domain.ErrInvalidRecord, err)
	}
	return err
}

func dayStart(d civil.Date) time.Time {
	return d.In(time.UTC)
}
