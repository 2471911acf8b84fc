// Package testutils builds ready-to-call Fiber apps for handler and end-to-end tests.
package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/atm/infra"
	"github.com/amirasaad/atm/infra/eventbus"
	infrarepo "github.com/amirasaad/atm/infra/repository"
	"github.com/amirasaad/atm/infra/repository/memory"
	"github.com/amirasaad/atm/pkg/app"
	"github.com/amirasaad/atm/pkg/config"
	"github.com/amirasaad/atm/pkg/repository"
	"github.com/amirasaad/atm/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// TestConfig returns a configuration suitable for in-process tests.
func TestConfig() *config.App {
	return &config.App{
		Env:       "test",
		Server:    &config.Server{Port: 0},
		Log:       &config.Log{Format: "text"},
		DB:        &config.DB{Driver: config.DriverMemory, Seed: true},
		RateLimit: &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
		Cors:      &config.Cors{AllowOrigins: "http://localhost:3000,https://localhost:3000"},
		Events:    &config.Events{Driver: config.EventsMemory},
	}
}

// NewApp seeds uow and returns the Fiber app served over it.
func NewApp(t testing.TB, uow repository.UnitOfWork, cfg *config.App) (*fiber.App, *app.App) {
	t.Helper()
	if cfg == nil {
		cfg = TestConfig()
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := repository.Seed(context.Background(), uow, repository.DefaultAccounts, time.Now())
	require.NoError(t, err)

	a := app.New(&app.Deps{
		Uow:      uow,
		EventBus: eventbus.NewWithMemory(logger),
		Logger:   logger,
	}, cfg)
	return webapi.SetupApp(a), a
}

// NewMemoryApp returns a Fiber app backed by a fresh seeded in-memory ledger.
func NewMemoryApp(t testing.TB) *fiber.App {
	t.Helper()
	fiberApp, _ := NewApp(t, memory.NewUoW(), nil)
	return fiberApp
}

// MakeRequest is a helper for making HTTP requests in tests.
func MakeRequest(t testing.TB, fiberApp *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	resp, err := fiberApp.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// DecodeJSON decodes the response body into a T.
func DecodeJSON[T any](t testing.TB, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// E2ETestSuite provides a test suite with a real Postgres database using Testcontainers.
type E2ETestSuite struct {
	suite.Suite
	pgContainer *tcpostgres.PostgresContainer
	DB          *gorm.DB
	App         *fiber.App
}

// SetupSuite starts Postgres, migrates the schema and builds the app over it.
func (s *E2ETestSuite) SetupSuite() {
	ctx := context.Background()

	pg, err := tcpostgres.Run(
		ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("atm"),
		tcpostgres.WithUsername("atm"),
		tcpostgres.WithPassword("atm"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.pgContainer = pg

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	s.Require().NoError(err)
	s.Require().NoError(infra.Migrate(s.DB))

	cfg := TestConfig()
	cfg.DB = &config.DB{Driver: config.DriverPostgres, Url: dsn, Seed: true}
	fiberApp, ledger := NewApp(s.T(), infrarepo.NewUoW(s.DB), cfg)
	s.Require().NotNil(ledger.AccountService)
	s.App = fiberApp
}

// TearDownSuite cleans up the test suite resources.
func (s *E2ETestSuite) TearDownSuite() {
	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(context.Background())
	}
}

// MakeRequest issues a request against the suite's app.
func (s *E2ETestSuite) MakeRequest(method, path, body string) *http.Response {
	return MakeRequest(s.T(), s.App, method, path, body)
}
