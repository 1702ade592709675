package feed

import (
	"encoding/json"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/sirupsen/logrus"

	"candlecast/internal/models"
)

// Producer wraps the Kafka producer used by the collector. Messages are
// keyed by symbol so one partition carries all of a symbol's trades in
// order, which the aggregator's boundary detection depends on.
type Producer struct {
	producer *kafka.Producer
	topic    string
	logger   *logrus.Logger
}

// NewProducer creates a Kafka producer and starts draining its delivery
// reports in the background.
func NewProducer(broker, topic string, logger *logrus.Logger) (*Producer, error) {
	config := kafka.ConfigMap{
		"bootstrap.servers": broker,
	}

	producer, err := kafka.NewProducer(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	p := &Producer{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
	go p.drainDeliveryReports()

	logger.Info("Kafka producer initialized successfully")
	return p, nil
}

// Publish serializes one trade message and produces it keyed by symbol.
func (p *Producer) Publish(msg *models.TradeMessage) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal trade message: %w", err)
	}

	return p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(msg.Symbol),
		Value:          value,
	}, nil)
}

// drainDeliveryReports logs failed deliveries from the producer event channel.
func (p *Producer) drainDeliveryReports() {
	for e := range p.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				p.logger.Errorf("Message delivery failed: %v", ev.TopicPartition.Error)
			}
		}
	}
}

// Close flushes outstanding messages and closes the producer.
func (p *Producer) Close() {
	remaining := p.producer.Flush(5000)
	if remaining > 0 {
		p.logger.Warnf("Closing producer with %d undelivered messages", remaining)
	}
	p.producer.Close()
}
