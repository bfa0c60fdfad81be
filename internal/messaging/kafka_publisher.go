package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
)

// KafkaPublisher publishes detected opportunities to Kafka
type KafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// KafkaPublisherConfig holds Kafka publisher configuration
type KafkaPublisherConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "arbitrage_opportunities"
}

// NewKafkaPublisher creates a new Kafka publisher.
// Messages are keyed by event ID so every opportunity of an event lands on one partition.
func NewKafkaPublisher(config KafkaPublisherConfig, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger.With().Str("component", "kafka_publisher").Logger(),
	}
}

// Publish writes one message per opportunity
func (p *KafkaPublisher) Publish(ctx context.Context, batchID string, opps []*models.ArbitrageOpportunity) error {
	if len(opps) == 0 {
		return nil
	}

	msgs, err := buildOpportunityMessages(batchID, opps, time.Now().UTC())
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write opportunities to Kafka: %w", err)
	}

	p.logger.Debug().
		Str("topic", p.writer.Topic).
		Str("batch_id", batchID).
		Int("count", len(msgs)).
		Msg("published opportunities")

	return nil
}

// Close flushes pending messages and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func buildOpportunityMessages(batchID string, opps []*models.ArbitrageOpportunity, now time.Time) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(opps))
	for _, opp := range opps {
		value, err := json.Marshal(models.KafkaOpportunityMessage{
			Opportunity: *opp,
			BatchID:     batchID,
			Timestamp:   now,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal opportunity %s: %w", opp.ID, err)
		}

		msgs = append(msgs, kafka.Message{
			Key:   []byte(opp.EventID),
			Value: value,
			Time:  now,
		})
	}
	return msgs, nil
}
