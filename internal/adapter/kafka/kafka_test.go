package kafka

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/couchcryptid/tide-calendar-sync/internal/config"
	"github.com/couchcryptid/tide-calendar-sync/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapMessageToRawMessage(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("choshi"),
		Value:     []byte(`{"location_id":"choshi","date":"2024-01-26"}`),
		Topic:     "tide-sync-requests",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("scheduler")},
		},
	}

	raw := mapMessageToRawMessage(msg)

	assert.Equal(t, []byte("choshi"), raw.Key)
	assert.JSONEq(t, `{"location_id":"choshi","date":"2024-01-26"}`, string(raw.Value))
	assert.Equal(t, "tide-sync-requests", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "scheduler", raw.Headers["source"])
	assert.Nil(t, raw.Commit)
}

func TestReader_AttachesCommit(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:       []string{"localhost:9092"},
		KafkaSourceTopic:   "tide-sync-requests",
		KafkaGroupID:       "test",
		BatchFlushInterval: time.Second,
	}
	r := NewReader(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer r.Close()

	raw := r.mapMessageToRawMessage(kafkago.Message{Topic: "tide-sync-requests", Offset: 7})
	assert.NotNil(t, raw.Commit)
	assert.Equal(t, int64(7), raw.Offset)
}

func TestSerializeToMessage(t *testing.T) {
	synced := time.Date(2024, 1, 26, 3, 0, 0, 0, time.UTC)
	date := civil.Date{Year: 2024, Month: time.January, Day: 26}
	summary := domain.DaySummary{
		StableID:   domain.StableID("choshi", date),
		LocationID: "choshi",
		Outcome:    domain.Created,
		Day:        domain.DayTide{Date: date, Regime: domain.Spring, RangeCm: 182},
		SyncedAt:   synced,
	}

	msg, err := serializeToMessage(summary)
	require.NoError(t, err)

	assert.Equal(t, []byte(summary.StableID), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "regime", msg.Headers[0].Key)
	assert.Equal(t, []byte("Spring"), msg.Headers[0].Value)
	assert.Equal(t, "synced_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2024-01-26T03:00:00Z"), msg.Headers[1].Value)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "choshi", decoded["location_id"])
	assert.Equal(t, "created", decoded["outcome"])
}
