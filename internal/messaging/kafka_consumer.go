package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/metrics"
	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
	"github.com/cypherlabdev/arbitrage-scanner-service/internal/service"
	"github.com/cypherlabdev/arbitrage-scanner-service/pkg/arbitrage"
)

// sourceKafka labels scans triggered by consumed batches
const sourceKafka = "kafka"

// KafkaConsumer consumes odds record batches from Kafka and scans them for arbitrage
type KafkaConsumer struct {
	reader  *kafka.Reader
	scanner service.RecordScanner
	logger  zerolog.Logger
}

// KafkaConsumerConfig holds Kafka consumer configuration
type KafkaConsumerConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "odds_records"
	GroupID string   // e.g., "arbitrage-scanner"
}

// NewKafkaConsumer creates a new Kafka consumer
func NewKafkaConsumer(
	config KafkaConsumerConfig,
	scanner service.RecordScanner,
	logger zerolog.Logger,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Brokers,
		Topic:          config.Topic,
		GroupID:        config.GroupID,
		MinBytes:       1e3,  // 1KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: 1000, // Commit every 1 second
	})

	return &KafkaConsumer{
		reader:  reader,
		scanner: scanner,
		logger:  logger.With().Str("component", "kafka_consumer").Logger(),
	}
}

// Start begins consuming messages from Kafka
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("topic", c.reader.Config().Topic).
		Str("group_id", c.reader.Config().GroupID).
		Msg("started consuming from Kafka")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("stopping Kafka consumer")
			return nil

		default:
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				c.logger.Error().Err(err).Msg("failed to fetch message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.logger.Error().
					Err(err).
					Int64("offset", msg.Offset).
					Str("key", string(msg.Key)).
					Msg("failed to process message")
				// Don't commit if processing failed
				continue
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error().Err(err).Msg("failed to commit message")
			}
		}
	}
}

// processMessage scans a single batch message. A batch carrying an unusable stake
// is rejected and reported as processed since redelivery cannot fix it.
func (c *KafkaConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var batch models.KafkaOddsBatchMessage
	if err := json.Unmarshal(msg.Value, &batch); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	batchID := batch.BatchID
	if batchID == "" {
		batchID = string(msg.Key)
	}

	c.logger.Debug().
		Int("records", len(batch.Records)).
		Str("batch_id", batchID).
		Msg("processing odds batch")

	result, err := c.scanner.ScanRecords(ctx, sourceKafka, batchID, batch.Records, batch.Stake)
	if err != nil {
		if errors.Is(err, arbitrage.ErrInvalidStake) {
			metrics.RecordsRejectedTotal.WithLabelValues("ingest").Add(float64(len(batch.Records)))
			c.logger.Warn().
				Err(err).
				Str("batch_id", batchID).
				Msg("rejected batch with invalid stake")
			return nil
		}
		return fmt.Errorf("failed to scan batch: %w", err)
	}

	c.logger.Info().
		Int("records", len(batch.Records)).
		Int("opportunities", len(result.Opportunities)).
		Str("batch_id", batchID).
		Msg("processed odds batch")

	return nil
}

// Close closes the Kafka reader
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
