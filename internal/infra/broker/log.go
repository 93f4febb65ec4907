package broker

import (
	"context"
	"log/slog"

	"court-booking/internal/usecase/shared"
)

// LogPublisher writes notifications to the application log. It is used when
// no Kafka brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, job shared.NotificationJob) error {
	p.logger.InfoContext(ctx, "notification",
		slog.String("notification_id", job.ID.String()),
		slog.String("kind", job.Kind),
		slog.String("topic", job.Topic),
		slog.Int("attempt", job.Attempts),
		slog.String("payload", string(job.Payload)),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
