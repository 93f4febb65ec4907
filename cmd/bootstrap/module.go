package bootstrap

import (
	"court-booking/cmd/bootstrap/components"

	"go.uber.org/fx"
)

// CoreModule is everything except the HTTP surface; the reap command runs on it.
var CoreModule = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	MetricsModule,
	CacheModule,
	GatewayModule,
	BrokerModule,
	components.PersistenceModule,
	components.UseCaseModule,
	components.WorkerModule,
)

var Module = fx.Options(
	CoreModule,
	JWTModule,
	components.HandlerModule,
)
