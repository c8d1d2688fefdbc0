package pipeline

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/couchcryptid/tide-calendar-sync/internal/domain"
)

// DaySyncer syncs one location and date.
type DaySyncer interface {
	Sync(ctx context.Context, locationID string, date civil.Date) (domain.SyncResult, error)
}

// RequestHandler implements Transformer by decoding a sync request and
// running it through a DaySyncer.
type RequestHandler struct {
	syncer DaySyncer
}

// NewRequestHandler creates a RequestHandler.
func NewRequestHandler(syncer DaySyncer) *RequestHandler {
	return &RequestHandler{syncer: syncer}
}

func (h *RequestHandler) Transform(ctx context.Context, raw domain.RawMessage) (domain.DaySummary, error) {
	req, err := domain.ParseSyncRequest(raw.Value)
	if err != nil {
		return domain.DaySummary{}, err
	}
	result, err := h.syncer.Sync(ctx, req.LocationID, req.Date)
	if err != nil {
		return domain.DaySummary{}, err
	}
	return domain.NewDaySummary(result), nil
}
