//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/tide-calendar-sync/internal/adapter/harmonic"
	"github.com/couchcryptid/tide-calendar-sync/internal/adapter/sqlite"
	"github.com/couchcryptid/tide-calendar-sync/internal/config"
	"github.com/couchcryptid/tide-calendar-sync/internal/observability"
	"github.com/couchcryptid/tide-calendar-sync/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("tide-sync-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// newSyncer wires the bundled example configuration to a temporary SQLite store.
func newSyncer(t *testing.T) (*pipeline.Syncer, *sqlite.Store) {
	t.Helper()
	root := filepath.Join("..", "..", "config")

	file, err := config.LoadFile(filepath.Join(root, "tidesync.yaml"))
	require.NoError(t, err)

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "records.db"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	src := harmonic.NewSource(filepath.Join(root, "harmonics"), 10*time.Minute, discardLogger())
	opts := pipeline.DefaultSyncerOptions()
	opts.Calibration = file.TideCalibration()
	opts.PrimeOffset = file.PrimeOffset()

	return pipeline.NewSyncer(src, store, file, opts, discardLogger(), observability.NewMetricsForTesting()), store
}
