package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"candlecast/configs"
	"candlecast/internal/aggregator"
	"candlecast/internal/ingester"
	"candlecast/internal/live"
	"candlecast/internal/storage"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	appConfig := configs.AppLoad()

	db, err := storage.Open(appConfig.DBDSN)
	if err != nil {
		logger.Error("failed to connect to DB", "error", err)
		os.Exit(1)
	}
	candleStorage := storage.NewGormCandleStorage(db)

	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{appConfig.Kafka.Broker},
		Topic:          appConfig.Kafka.Topic,
		GroupID:        appConfig.Kafka.GroupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: 0,    // Important: We handle commits manually in Ingester!
	})
	defer kafkaReader.Close()

	agg := aggregator.New(aggregator.Config{
		BucketWidth: time.Duration(appConfig.Aggregator.BucketWidthMillis) * time.Millisecond,
		MinTrades:   appConfig.Aggregator.MinTrades,
	}, logger)

	writer := ingester.NewWriter(candleStorage, logger, ingester.WriterConfig{
		BatchSize:    appConfig.Writer.BatchSize,
		FlushTimeout: time.Duration(appConfig.Writer.FlushTimeoutSeconds) * time.Second,
		QueueSize:    appConfig.Writer.QueueSize,
	})

	svc := ingester.NewIngester(kafkaReader, agg, writer, logger)

	hub := live.NewHub(logger)
	publisher := live.NewPublisher(agg, hub,
		time.Duration(appConfig.Aggregator.SnapshotIntervalMillis)*time.Millisecond, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/live", hub.Handle)
	liveServer := &http.Server{
		Addr:    ":" + appConfig.Aggregator.LivePort,
		Handler: mux,
	}

	// Run with Graceful Shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return svc.Start(ctx) })
	group.Go(func() error { return writer.Start(ctx) })
	group.Go(func() error { return publisher.Start(ctx) })
	group.Go(func() error {
		if err := liveServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return liveServer.Shutdown(shutdownCtx)
	})

	logger.Info("aggregator started successfully",
		"bucket_width_ms", appConfig.Aggregator.BucketWidthMillis)

	if err := group.Wait(); err != nil {
		logger.Error("aggregator stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("aggregator shutdown complete")
}
