// Package testutils holds helpers shared by the HTTP tests: an in-memory
// bank behind a real Fiber app, request helpers and envelope decoding.
package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/acmebank/infra/eventbus"
	"github.com/amirasaad/acmebank/infra/repository/memory"
	"github.com/amirasaad/acmebank/pkg/config"
	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/domain/customer"
	"github.com/amirasaad/acmebank/pkg/money"
	authsvc "github.com/amirasaad/acmebank/pkg/service/auth"
	"github.com/amirasaad/acmebank/pkg/service/bank"
	"github.com/amirasaad/acmebank/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TestSecret signs tokens in tests.
const TestSecret = "test-secret-for-acmebank"

// FixedNow is the clock every test bank runs on.
var FixedNow = time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC)

// TestPassword is the password of every seeded customer.
const TestPassword = "secret"

// SeedCustomer builds a customer with whole-unit balances and the default
// overdraft limit.
func SeedCustomer(id, first, last string, checking, savings int64) *customer.Customer {
	return customer.FromData(id, first, last, TestPassword,
		account.NewChecking(money.Units(checking), account.DefaultOverdraftLimit),
		account.NewSavings(money.Units(savings)),
	)
}

// TestEnv is a running app with the pieces behind it.
type TestEnv struct {
	App    *fiber.App
	Bank   *bank.Service
	Auth   *authsvc.Service
	Store  *memory.Store
	Bus    *eventbus.MemoryEventBus
	Config *config.App
}

// TestConfig returns an App config suitable for tests. The rate limit is
// high enough not to interfere unless a test lowers it.
func TestConfig() *config.App {
	return &config.App{
		Env:       "test",
		Auth:      &config.Auth{Jwt: &config.Jwt{Secret: TestSecret, Expiry: time.Hour}},
		RateLimit: &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
		Bank:      &config.Bank{Currency: "USD"},
	}
}

// SetupTestApp opens a bank over an in-memory store seeded with customers
// and mounts it on a Fiber app built from cfg (TestConfig when nil).
func SetupTestApp(t *testing.T, cfg *config.App, seed ...*customer.Customer) *TestEnv {
	t.Helper()
	if cfg == nil {
		cfg = TestConfig()
	}
	logger := slog.New(slog.DiscardHandler)
	store := memory.New()
	store.Seed(seed, nil)
	bus := eventbus.NewWithMemory(logger)

	bankSvc, err := bank.Open(context.Background(), config.Deps{
		Uow:      memory.NewUoW(store),
		EventBus: bus,
		Logger:   logger,
		Config:   cfg,
	}, bank.WithClock(func() time.Time { return FixedNow }), bank.WithHashCost(bcrypt.MinCost))
	require.NoError(t, err)

	authSvc := authsvc.NewWithJWT(bankSvc, cfg.Auth.Jwt, logger)
	return &TestEnv{
		App:    webapi.SetupApp(bankSvc, authSvc, cfg),
		Bank:   bankSvc,
		Auth:   authSvc,
		Store:  store,
		Bus:    bus,
		Config: cfg,
	}
}

// MakeRequestWithApp is a helper for making HTTP requests with a standalone app (for non-suite tests)
func MakeRequestWithApp(app *fiber.App, method, path, body, token string) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		panic(err) // For standalone tests, panic on error
	}
	return resp
}

// Envelope is the success response shape with a typed payload.
type Envelope[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Problem is the RFC 9457 error shape.
type Problem struct {
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors"`
}

// DecodeJSON reads and closes the response body into a T.
func DecodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close() //nolint:errcheck
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// LoginCustomer logs in through POST /login and returns the bearer token.
func LoginCustomer(t *testing.T, app *fiber.App, accountID, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"account_id":%q,"password":%q}`, accountID, password)
	resp := MakeRequestWithApp(app, fiber.MethodPost, "/login", body, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	env := DecodeJSON[Envelope[map[string]string]](t, resp)
	token := env.Data["token"]
	require.NotEmpty(t, token, "no token in login response")
	return token
}

// PublishedTypes lists the types of the events bus has seen, in order.
func PublishedTypes(bus *eventbus.MemoryEventBus) []string {
	var out []string
	for _, e := range bus.Published() {
		out = append(out, e.Type())
	}
	return out
}
