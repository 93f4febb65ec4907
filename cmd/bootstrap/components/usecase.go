package components

import (
	"court-booking/internal/domain/reservation"
	"court-booking/internal/pkg/clock"
	"court-booking/internal/pkg/config"
	"court-booking/internal/usecase/commands"
	"court-booking/internal/usecase/queries"

	"go.uber.org/fx"
)

// UseCaseModule holds the reservation lifecycle. Token validation lives in
// bootstrap.JWTModule because only the HTTP surface needs it.
var UseCaseModule = fx.Module("usecase",
	domainOption,
	fx.Provide(
		queries.NewReservationQueries,
		commands.NewReservationCommands,
		commands.NewWebhookCommands,
	),
)

var domainOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		reservation.NewHourlyPriceCalculator,
		fx.As(new(reservation.PriceCalculator)),
	),
	newReservationFactory,
)

func newReservationFactory(clk clock.Clock, calc reservation.PriceCalculator, cfg config.Config) *reservation.Factory {
	return reservation.NewFactory(clk, calc, cfg.Booking.HoldTimeout)
}
