package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"

	"candlecast/configs"
	"candlecast/internal/feed"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	appConfig := configs.AppLoad()
	if len(appConfig.Feed.Symbols) == 0 {
		logger.Fatal("No symbols configured, set FEED_SYMBOLS")
	}

	producer, err := feed.NewProducer(appConfig.Kafka.Broker, appConfig.Kafka.Topic, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize Kafka producer: %v", err)
	}
	defer producer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for _, symbol := range appConfig.Feed.Symbols {
		wg.Add(1)
		worker := feed.NewWorker(appConfig.Feed.WSBaseURL, symbol, producer, logger)
		go worker.Run(ctx, &wg)
	}

	logger.Infof("Collector started for %d symbols", len(appConfig.Feed.Symbols))
	wg.Wait()
	logger.Info("Collector shutdown complete")
}
