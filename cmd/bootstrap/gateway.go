package bootstrap

import (
	"fmt"
	"log/slog"

	"court-booking/internal/infra/gateway"
	"court-booking/internal/pkg/config"
	"court-booking/internal/usecase/commands"

	"go.uber.org/fx"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		NewPaymentGateway,
	),
)

func NewPaymentGateway(cfg config.Config, logger *slog.Logger) (commands.PaymentGateway, error) {
	gw := cfg.Gateway
	switch gw.Driver {
	case "stripe":
		if gw.SecretKey == "" {
			return nil, fmt.Errorf("GATEWAY_SECRET_KEY is required for the stripe driver")
		}
		return gateway.NewStripeGateway(gw.SecretKey, gw.WebhookSecret, gw.WebhookTolerance), nil
	case "fake":
		logger.Warn("using the in-memory payment gateway")
		return gateway.NewFakeGateway(gw.WebhookSecret, gw.WebhookTolerance), nil
	default:
		return nil, fmt.Errorf("unknown GATEWAY_DRIVER %q", gw.Driver)
	}
}
