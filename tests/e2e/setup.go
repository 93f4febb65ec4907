//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"court-booking/cmd/bootstrap"
	"court-booking/cmd/bootstrap/components"
	"court-booking/internal/infra/db"
	"court-booking/internal/infra/gateway"
	"court-booking/internal/pkg/config"
	"court-booking/internal/usecase/commands"
	"court-booking/internal/usecase/worker"
	"court-booking/migrations"
	"court-booking/tests/common/authtest"
	"court-booking/tests/common/dbtest"

	"github.com/docker/go-connections/nat"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // driver for wait.ForSQL
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
)

var (
	postgresContainerOnce sync.Once
	postgresTestContainer testcontainers.Container

	testUser     = "test"
	testPassword = "testpass"
)

type containerAddress struct {
	Host string
	Port nat.Port
}

// E2EApp is the wired application under test plus the handles tests drive directly.
type E2EApp struct {
	Router     *gin.Engine
	Config     config.Config
	Gateway    *gateway.FakeGateway
	Reaper     *worker.Reaper
	Dispatcher *worker.Dispatcher
}

// setupE2EEnvironment gives each test process its own database on a shared
// container, migrated and wired to a started fx app.
func setupE2EEnvironment(t *testing.T) (*pgxpool.Pool, *E2EApp) {
	gin.SetMode(gin.TestMode)
	startPostgreSQLContainerOnce(t)

	addr, err := containerAddr(postgresTestContainer, "5432/tcp")
	require.NoError(t, err, "failed to resolve postgres container address")

	dbConfig := createTestDatabase(t, addr)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, closePool, err := db.Connect(ctx, dbConfig)
	require.NoError(t, err, "database connection failed")
	t.Cleanup(closePool)

	applied, err := migrations.Apply(ctx, pool)
	require.NoError(t, err, "migration failed")
	require.NotEmpty(t, applied, "fresh database should receive every migration")

	e2eApp, app := buildE2EApp(pool, dbConfig)
	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		if err := app.Stop(stopCtx); err != nil {
			slog.Warn("failed to stop fx app", "error", err.Error())
		}
	})

	return pool, e2eApp
}

// createTestDatabase creates a uniquely named database and drops it on cleanup.
func createTestDatabase(t *testing.T, addr containerAddress) config.DBConfig {
	t.Helper()

	dbName := "e2e_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	adminDSN := fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
		testUser, testPassword, addr.Host, addr.Port.Port())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, adminDSN)
	require.NoError(t, err, "admin connection failed")
	defer admin.Close()

	// The server can accept connections a moment before it accepts DDL.
	require.Eventually(t, func() bool {
		_, err = admin.Exec(ctx, "CREATE DATABASE "+dbName)
		return err == nil
	}, 10*time.Second, 250*time.Millisecond, "create database %s", dbName)

	t.Cleanup(func() {
		dropCtx, dropCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dropCancel()
		dropper, err := pgxpool.New(dropCtx, adminDSN)
		if err != nil {
			return
		}
		defer dropper.Close()
		if _, err := dropper.Exec(dropCtx, "DROP DATABASE IF EXISTS "+dbName+" WITH (FORCE)"); err != nil {
			slog.Warn("failed to drop test database", "database", dbName, "error", err.Error())
		}
	})

	return config.DBConfig{
		Host:     addr.Host,
		Port:     addr.Port.Port(),
		User:     testUser,
		Password: testPassword,
		DBName:   dbName,
		SSLMode:  "disable",
		TimeZone: "Asia/Tokyo",
		MaxConns: 20,
	}
}

// ------------------------------------------------------------
// Application wiring: production modules with the pool, config
// and payment gateway swapped for test doubles.
// ------------------------------------------------------------
func buildE2EApp(pool *pgxpool.Pool, dbConfig config.DBConfig) (*E2EApp, *fx.App) {
	cfg := config.NewTestConfig()
	cfg.DB = dbConfig
	fake := gateway.NewFakeGateway(cfg.Gateway.WebhookSecret, cfg.Gateway.WebhookTolerance)
	out := &E2EApp{Config: cfg, Gateway: fake}

	app := fx.New(
		fx.Provide(
			func() *pgxpool.Pool { return pool },
			func() config.Config { return cfg },
			func() *gin.Engine { return gin.New() },
			func() commands.PaymentGateway { return fake },
			func() (*time.Location, error) { return cfg.Booking.Location() },
			func() config.ReaperConfig { return cfg.Reaper },
			func() config.NotifierConfig { return cfg.Notifier },
			func() config.RateLimitConfig { return cfg.RateLimit },
		),
		bootstrap.LoggerModule,
		bootstrap.JWTModule,
		bootstrap.MetricsModule,
		bootstrap.CacheModule,
		bootstrap.BrokerModule,
		components.PersistenceModule,
		components.UseCaseModule,
		components.WorkerModule,
		components.HandlerModule,

		fx.Populate(&out.Router, &out.Reaper, &out.Dispatcher),

		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		panic(fmt.Sprintf("Failed to start fx app: %v", err))
	}

	if out.Router == nil {
		panic("fx app started without a router")
	}

	return out, app
}

// startPostgreSQLContainerOnce boots one throwaway server per test process.
// Durability is switched off; the data lives on tmpfs.
func startPostgreSQLContainerOnce(t *testing.T) {
	postgresContainerOnce.Do(func() {
		req := testcontainers.ContainerRequest{
			Image:        "postgres:17",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     testUser,
				"POSTGRES_PASSWORD": testPassword,
				"POSTGRES_DB":       "postgres",
			},
			Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw,size=512m"},
			Cmd: []string{
				"postgres",
				"-c", "fsync=off",
				"-c", "full_page_writes=off",
				"-c", "synchronous_commit=off",
				"-c", "max_connections=200",
			},
			WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
					testUser, testPassword, host, port.Port())
			}).WithStartupTimeout(60 * time.Second),
			Labels: map[string]string{"purpose": "court-booking-e2e"},
		}

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()

		var err error
		postgresTestContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		require.NoError(t, err, "failed to start postgres container")

		// Ryuk reaps the container too; this covers runs with it disabled.
		t.Cleanup(func() {
			termCtx, termCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer termCancel()
			if err := postgresTestContainer.Terminate(termCtx); err != nil {
				slog.Warn("failed to terminate postgres container", "error", err.Error())
			}
		})
	})
}

func containerAddr(c testcontainers.Container, port string) (containerAddress, error) {
	ctx := context.Background()
	mapped, err := c.MappedPort(ctx, nat.Port(port))
	if err != nil {
		return containerAddress{}, err
	}
	host, err := c.Host(ctx)
	if err != nil {
		return containerAddress{}, err
	}
	return containerAddress{Host: host, Port: mapped}, nil
}

// ------------------------------------------------------------
// Shared suite setup
// ------------------------------------------------------------
type SharedSuite struct {
	suite.Suite
	*E2EApp
	DB  *pgxpool.Pool
	JWT *authtest.JWTHelper
}

func (s *SharedSuite) SetupSharedSuite(t *testing.T) {
	db, app := setupE2EEnvironment(t)
	s.DB = db
	s.E2EApp = app
	s.JWT = authtest.NewJWTHelper(app.Config.JWT)
	require.NotNil(t, db, "database setup failed")
	require.NotNil(t, s.Router, "router setup failed")
	require.NotNil(t, s.Reaper, "reaper not wired")
}

func (s *SharedSuite) SetupSuite() {
	s.SetupSharedSuite(s.T())
}

// SetupSubTest gives every s.Run case empty tables; migrations stay recorded.
func (s *SharedSuite) SetupSubTest() {
	require.NoError(s.T(), dbtest.ResetDB(s.DB), "reset database")
}
