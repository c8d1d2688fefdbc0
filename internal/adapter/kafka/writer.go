package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/tide-calendar-sync/internal/config"
	"github.com/couchcryptid/tide-calendar-sync/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces day summaries to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes summaries in a single WriteMessages call. Messages are
// keyed by stable id, so repeated syncs of one day land on one partition.
func (w *Writer) LoadBatch(ctx context.Context, summaries []domain.DaySummary) error {
	if len(summaries) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(summaries))
	for i := range summaries {
		msg, err := serializeToMessage(summaries[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write summaries: %w", err)
	}
	w.logger.Debug("summaries published", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func serializeToMessage(s domain.DaySummary) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize day summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(s.StableID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "regime", Value: []byte(s.Day.Regime.String())},
			{Key: "synced_at", Value: []byte(s.SyncedAt.Format(time.RFC3339))},
		},
	}, nil
}
