package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, secrets)
// - default: Values common across all environments (timezone, intervals, limits)
// -----------------------------------------------------------------------------

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	CORS      CORSConfig
	Log       LogConfig
	JWT       JWTConfig
	Booking   BookingConfig
	Reaper    ReaperConfig
	Gateway   GatewayConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Notifier  NotifierConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Tokyo"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,Location,Idempotent-Replayed"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Tokyo"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"32400"` // 9*60*60
}

type JWTConfig struct {
	Secret   string        `envconfig:"JWT_SECRET" required:"true"`
	Duration time.Duration `envconfig:"JWT_DURATION" default:"24h"`
}

type BookingConfig struct {
	HoldTimeout time.Duration `envconfig:"BOOKING_HOLD_TIMEOUT" default:"15m"`
	// Slots are wall-clock times in this zone.
	TimeZone string `envconfig:"BOOKING_TIMEZONE" default:"Asia/Tokyo"`
}

type ReaperConfig struct {
	Enabled     bool          `envconfig:"REAPER_ENABLED" default:"true"`
	Interval    time.Duration `envconfig:"REAPER_INTERVAL" default:"30s"`
	BatchSize   int           `envconfig:"REAPER_BATCH_SIZE" default:"100"`
	ResyncEvery int           `envconfig:"REAPER_RESYNC_EVERY" default:"10"`
}

type GatewayConfig struct {
	Driver           string        `envconfig:"GATEWAY_DRIVER" default:"stripe"`
	SecretKey        string        `envconfig:"GATEWAY_SECRET_KEY"`
	WebhookSecret    string        `envconfig:"GATEWAY_WEBHOOK_SECRET" required:"true"`
	WebhookTolerance time.Duration `envconfig:"GATEWAY_WEBHOOK_TOLERANCE" default:"5m"`
}

// Addr empty selects the in-process expiry index and event dedupe.
type RedisConfig struct {
	Addr      string        `envconfig:"REDIS_ADDR"`
	Password  string        `envconfig:"REDIS_PASSWORD"`
	DB        int           `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix string        `envconfig:"REDIS_KEY_PREFIX" default:"court-booking:"`
	DedupeTTL time.Duration `envconfig:"REDIS_DEDUPE_TTL" default:"24h"`
}

// Brokers empty selects the log publisher.
type KafkaConfig struct {
	Brokers  []string `envconfig:"KAFKA_BROKERS"`
	Topic    string   `envconfig:"KAFKA_TOPIC" default:"reservation-notifications"`
	ClientID string   `envconfig:"KAFKA_CLIENT_ID" default:"court-booking"`
	RetryMax int      `envconfig:"KAFKA_RETRY_MAX" default:"3"`
}

type NotifierConfig struct {
	Enabled      bool          `envconfig:"NOTIFIER_ENABLED" default:"true"`
	PollInterval time.Duration `envconfig:"NOTIFIER_POLL_INTERVAL" default:"5s"`
	BatchSize    int           `envconfig:"NOTIFIER_BATCH_SIZE" default:"50"`
	MaxAttempts  int           `envconfig:"NOTIFIER_MAX_ATTEMPTS" default:"5"`
	InitialDelay time.Duration `envconfig:"NOTIFIER_INITIAL_DELAY" default:"10s"`
	MaxDelay     time.Duration `envconfig:"NOTIFIER_MAX_DELAY" default:"10m"`
}

type RateLimitConfig struct {
	RPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"5"`
	Burst int     `envconfig:"RATE_LIMIT_BURST" default:"10"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"METRICS_PATH" default:"/metrics"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func (c BookingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_TIMEZONE %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func LoadConfig() (Config, error) {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Tokyo",
			MaxConns: 20,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
			MaxAge:       time.Hour,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Tokyo",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 32400,
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: time.Hour,
		},
		Booking: BookingConfig{
			HoldTimeout: 15 * time.Minute,
			TimeZone:    "Asia/Tokyo",
		},
		Reaper: ReaperConfig{
			Enabled:     false, // Tests drive sweeps explicitly
			Interval:    time.Second,
			BatchSize:   100,
			ResyncEvery: 1,
		},
		Gateway: GatewayConfig{
			Driver:           "fake",
			WebhookSecret:    "whsec_test",
			WebhookTolerance: 5 * time.Minute,
		},
		Redis: RedisConfig{
			KeyPrefix: "court-booking-test:",
			DedupeTTL: time.Hour,
		},
		Kafka: KafkaConfig{
			Topic:    "reservation-notifications",
			ClientID: "court-booking-test",
		},
		Notifier: NotifierConfig{
			Enabled:      false,
			PollInterval: time.Second,
			BatchSize:    50,
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     time.Minute,
		},
		RateLimit: RateLimitConfig{
			RPS:   1000,
			Burst: 1000,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
