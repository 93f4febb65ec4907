package bootstrap

import (
	"context"
	"log/slog"

	"court-booking/internal/infra/broker"
	"court-booking/internal/pkg/config"
	"court-booking/internal/usecase/worker"

	"go.uber.org/fx"
)

var BrokerModule = fx.Module("broker",
	fx.Provide(
		NewPublisher,
	),
)

func NewPublisher(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (worker.Publisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, notifications are logged only")
		return broker.NewLogPublisher(logger), nil
	}

	producer, err := broker.NewSyncProducer(cfg.Kafka)
	if err != nil {
		return nil, err
	}
	pub := broker.NewKafkaPublisher(producer, cfg.Kafka.Topic, logger)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return pub.Close()
		},
	})
	return pub, nil
}
