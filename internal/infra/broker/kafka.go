package broker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"court-booking/internal/pkg/config"
	"court-booking/internal/pkg/errs"
	"court-booking/internal/usecase/shared"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

func NewSyncProducer(cfg config.KafkaConfig) (sarama.SyncProducer, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = cfg.RetryMax
	sc.Producer.Timeout = 10 * time.Second
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1
	// All notifications for one reservation land on one partition, in order.
	sc.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, errs.Wrap(err, "failed to create kafka producer")
	}
	return producer, nil
}

type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// NewKafkaPublisher publishes to topic; an empty topic falls back to the job's own.
func NewKafkaPublisher(producer sarama.SyncProducer, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, job shared.NotificationJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	topic := p.topic
	if topic == "" {
		topic = job.Topic
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(partitionKey(job)),
		Value: sarama.ByteEncoder(job.Payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("notification_id"), Value: []byte(job.ID.String())},
			{Key: []byte("kind"), Value: []byte(job.Kind)},
			{Key: []byte("category"), Value: []byte(job.Topic)},
		},
		Timestamp: job.RunAt,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return errs.Wrap(err, "failed to send notification to kafka")
	}

	p.logger.DebugContext(ctx, "notification published",
		slog.String("notification_id", job.ID.String()),
		slog.String("kind", job.Kind),
		slog.String("topic", topic),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return errs.Wrap(err, "failed to close kafka producer")
	}
	return nil
}

// partitionKey is the reservation id when the payload carries one.
func partitionKey(job shared.NotificationJob) string {
	var body shared.NotificationPayload
	if err := json.Unmarshal(job.Payload, &body); err == nil && body.ReservationID != uuid.Nil {
		return body.ReservationID.String()
	}
	return job.ID.String()
}
