// Package configs provides application configuration loaded from environment variables.
// All configuration is externalized via environment variables for 12-factor app compliance.
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all application configuration.
// Load it once at startup using AppLoad().
type AppConfig struct {
	// DBDSN is the Postgres connection string.
	DBDSN string

	// Kafka contains Kafka connection settings for the trade stream.
	Kafka KafkaConfig

	// Feed contains settings for the exchange trade feed collector.
	Feed FeedConfig

	// Aggregator contains settings for the bucket aggregation service.
	Aggregator AggregatorConfig

	// Writer contains settings for the async candle persistence writer.
	Writer WriterConfig

	// ServerPort is the HTTP port for the query API.
	ServerPort string
}

// KafkaConfig holds Kafka connection settings.
type KafkaConfig struct {
	// Broker is the Kafka broker address (e.g., "localhost:9092").
	Broker string

	// Topic is the Kafka topic carrying normalized trade messages.
	Topic string

	// GroupID is the consumer group ID for the aggregator.
	GroupID string
}

// FeedConfig holds exchange WebSocket feed settings for the collector.
type FeedConfig struct {
	// WSBaseURL is the exchange WebSocket base URL.
	WSBaseURL string

	// Symbols is the list of symbols to stream (comma-separated in env).
	Symbols []string
}

// AggregatorConfig holds settings for bucket aggregation and live publishing.
type AggregatorConfig struct {
	// BucketWidthMillis is the fixed candle bucket width in milliseconds.
	BucketWidthMillis int

	// MinTrades is the minimum number of trades a bucket needs to be persisted.
	MinTrades int

	// SnapshotIntervalMillis is the live snapshot broadcast cadence.
	SnapshotIntervalMillis int

	// LivePort is the HTTP port serving the live snapshot WebSocket.
	LivePort string
}

// WriterConfig holds settings for the async storage writer.
type WriterConfig struct {
	// BatchSize is the maximum number of candles to accumulate before flushing.
	BatchSize int

	// FlushTimeoutSeconds is the maximum seconds to wait before flushing.
	FlushTimeoutSeconds int

	// QueueSize is the capacity of the finalized-candle queue.
	QueueSize int
}

// getDatabaseDSN constructs the Postgres DSN from environment variables.
func getDatabaseDSN() string {
	dbUser := getEnv("POSTGRES_USER", "postgres")
	dbPassword := getEnv("POSTGRES_PASSWORD", "postgres")
	dbHost := getEnv("POSTGRES_HOST", "localhost")
	dbPort := getEnv("POSTGRES_PORT", "5432")
	dbName := getEnv("POSTGRES_DB", "candlecast")
	sslMode := getEnv("POSTGRES_SSLMODE", "disable")

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPassword, dbHost, dbPort, dbName, sslMode,
	)
}

// getFeedConfig loads collector feed settings from environment.
func getFeedConfig() FeedConfig {
	symbolsRaw := getEnv("FEED_SYMBOLS", "btcusdt,ethusdt")
	var symbols []string
	for _, s := range strings.Split(symbolsRaw, ",") {
		s = strings.TrimSpace(strings.ToLower(s))
		if s != "" {
			symbols = append(symbols, s)
		}
	}

	return FeedConfig{
		WSBaseURL: getEnv("FEED_WS_URL", "wss://stream.binance.com:9443/ws"),
		Symbols:   symbols,
	}
}

// AppLoad loads all application configuration from environment variables.
// It attempts to load a .env file first (for local development).
// Call this once at application startup.
func AppLoad() *AppConfig {
	_ = godotenv.Load() // Ignore error - .env is optional

	return &AppConfig{
		Kafka: KafkaConfig{
			Broker:  getEnv("KAFKA_BROKER", "localhost:9092"),
			Topic:   getEnv("KAFKA_TRADE_TOPIC", "candlecast_trades"),
			GroupID: getEnv("KAFKA_TRADE_GROUP_ID", "candlecast-aggregator"),
		},
		DBDSN: getDatabaseDSN(),
		Feed:  getFeedConfig(),
		Aggregator: AggregatorConfig{
			BucketWidthMillis:      getEnvInt("BUCKET_WIDTH_MS", 1000),
			MinTrades:              getEnvInt("BUCKET_MIN_TRADES", 2),
			SnapshotIntervalMillis: getEnvInt("SNAPSHOT_INTERVAL_MS", 500),
			LivePort:               getEnv("LIVE_PORT", "8081"),
		},
		Writer: WriterConfig{
			BatchSize:           getEnvInt("WRITER_BATCH_SIZE", 100),
			FlushTimeoutSeconds: getEnvInt("WRITER_FLUSH_SECONDS", 2),
			QueueSize:           getEnvInt("WRITER_QUEUE_SIZE", 1024),
		},
		ServerPort: getEnv("SERVER_PORT", "8080"),
	}
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
