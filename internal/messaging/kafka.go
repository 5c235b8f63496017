package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/offbeatoasis/oasis/internal/config"
	"github.com/offbeatoasis/oasis/pkg/models"
)

const (
	ReviewIngestionTopic    = "review-ingestion"
	ReviewIngestionDLQTopic = "review-ingestion-dlq"
	ConsumerGroup           = "review-processors"
)

// ReviewMessage is the envelope published for every accepted review
// submission. RetryCount is rewritten by the consumer on each attempt.
type ReviewMessage struct {
	JobID      uuid.UUID               `json:"job_id"`
	Review     models.ReviewSubmission `json:"review"`
	Timestamp  time.Time               `json:"timestamp"`
	RetryCount int                     `json:"retry_count"`
}

// MessageBus owns the review ingestion producer, consumer and DLQ
// writer. Reviews are keyed by user id so one user's submissions stay
// ordered within a partition.
type MessageBus struct {
	writer    *kafka.Writer
	reader    *kafka.Reader
	dlqWriter *kafka.Writer
	logger    *logrus.Logger
}

func NewMessageBus(cfg *config.Config, logger *logrus.Logger) (*MessageBus, error) {
	topic := cfg.Kafka.Topics.ReviewIngestion
	if topic == "" {
		topic = ReviewIngestionTopic
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          topic,
		GroupID:        ConsumerGroup,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	dlqWriter := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        topic + "-dlq",
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &MessageBus{
		writer:    writer,
		reader:    reader,
		dlqWriter: dlqWriter,
		logger:    logger,
	}, nil
}

// PublishReview enqueues one review submission for asynchronous
// ingestion and returns once the broker has acknowledged it.
func (mb *MessageBus) PublishReview(jobID uuid.UUID, review models.ReviewSubmission) error {
	message := ReviewMessage{
		JobID:     jobID,
		Review:    review,
		Timestamp: time.Now(),
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal review message: %w", err)
	}

	kafkaMessage := kafka.Message{
		Key:   []byte(strconv.FormatInt(review.UserID, 10)),
		Value: messageBytes,
		Headers: []kafka.Header{
			{Key: "job_id", Value: []byte(jobID.String())},
			{Key: "timestamp", Value: []byte(message.Timestamp.Format(time.RFC3339))},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := mb.writer.WriteMessages(ctx, kafkaMessage); err != nil {
		mb.logger.WithError(err).WithField("job_id", jobID).Error("Failed to publish review to Kafka")
		return fmt.Errorf("failed to write review to Kafka: %w", err)
	}

	mb.logger.WithFields(logrus.Fields{
		"job_id":      jobID,
		"user_id":     review.UserID,
		"location_id": review.LocationID,
	}).Info("Review published to Kafka")

	return nil
}

// ConsumeReviews reads review messages until the context is cancelled,
// invoking handler with retries and routing poisoned messages to the
// DLQ.
func (mb *MessageBus) ConsumeReviews(ctx context.Context, handler func(ReviewMessage) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			message, err := mb.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				mb.logger.WithError(err).Error("Failed to read review from Kafka")
				continue
			}

			var reviewMessage ReviewMessage
			if err := json.Unmarshal(message.Value, &reviewMessage); err != nil {
				mb.logger.WithError(err).Error("Failed to unmarshal review message")
				continue
			}

			if err := mb.processWithRetry(ctx, reviewMessage, handler); err != nil {
				mb.logger.WithError(err).WithField("job_id", reviewMessage.JobID).Error("Failed to process review after retries")
				if dlqErr := mb.sendToDLQ(ctx, reviewMessage, err); dlqErr != nil {
					mb.logger.WithError(dlqErr).Error("Failed to send review to DLQ")
				}
			}
		}
	}
}

func (mb *MessageBus) processWithRetry(ctx context.Context, message ReviewMessage, handler func(ReviewMessage) error) error {
	maxRetries := 3
	baseDelay := time.Second

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseDelay * time.Duration(1<<uint(attempt-1))
			mb.logger.WithFields(logrus.Fields{
				"job_id":  message.JobID,
				"attempt": attempt,
				"delay":   delay,
			}).Info("Retrying review processing")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		message.RetryCount = attempt
		if err := handler(message); err != nil {
			mb.logger.WithError(err).WithFields(logrus.Fields{
				"job_id":  message.JobID,
				"attempt": attempt,
			}).Warn("Review processing failed")

			if attempt == maxRetries {
				return fmt.Errorf("max retries exceeded: %w", err)
			}
			continue
		}
		return nil
	}

	return fmt.Errorf("unexpected retry loop exit")
}

func (mb *MessageBus) sendToDLQ(ctx context.Context, message ReviewMessage, originalError error) error {
	dlqMessage := map[string]interface{}{
		"original_message": message,
		"error":            originalError.Error(),
		"dlq_timestamp":    time.Now(),
	}

	dlqBytes, err := json.Marshal(dlqMessage)
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ message: %w", err)
	}

	kafkaMessage := kafka.Message{
		Key:   []byte(message.JobID.String()),
		Value: dlqBytes,
		Headers: []kafka.Header{
			{Key: "job_id", Value: []byte(message.JobID.String())},
			{Key: "error", Value: []byte(originalError.Error())},
		},
	}

	if err := mb.dlqWriter.WriteMessages(ctx, kafkaMessage); err != nil {
		return fmt.Errorf("failed to write message to DLQ: %w", err)
	}

	mb.logger.WithFields(logrus.Fields{
		"job_id": message.JobID,
		"error":  originalError.Error(),
	}).Warn("Review sent to DLQ")

	return nil
}

func (mb *MessageBus) Close() error {
	var errs []error

	if err := mb.writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close producer: %w", err))
	}
	if err := mb.reader.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close consumer: %w", err))
	}
	if err := mb.dlqWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close DLQ writer: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing message bus: %v", errs)
	}
	return nil
}

// Stats exposes consumer counters for the health endpoint.
func (mb *MessageBus) Stats() map[string]interface{} {
	stats := mb.reader.Stats()
	return map[string]interface{}{
		"consumer_lag":    stats.Lag,
		"consumer_offset": stats.Offset,
		"messages_read":   stats.Messages,
		"bytes_read":      stats.Bytes,
		"errors":          stats.Errors,
	}
}
