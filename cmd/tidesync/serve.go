package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/couchcryptid/tide-calendar-sync/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/tide-calendar-sync/internal/adapter/kafka"
	"github.com/couchcryptid/tide-calendar-sync/internal/pipeline"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Consume sync requests from Kafka and serve HTTP endpoints",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.shutdown()
	logger := a.logger

	syncer := a.syncer()
	reader := kafkaadapter.NewReader(a.cfg, logger)
	writer := kafkaadapter.NewWriter(a.cfg, logger)

	p := pipeline.New(reader, pipeline.NewRequestHandler(syncer), writer, logger, a.metrics, a.cfg.BatchSize)
	srv := httpadapter.NewServer(a.cfg.HTTPAddr, p, syncer, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start sync pipeline.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
