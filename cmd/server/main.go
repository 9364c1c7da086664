package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/amirasaad/acmebank/infra/initializer"
	"github.com/amirasaad/acmebank/pkg/config"
	authsvc "github.com/amirasaad/acmebank/pkg/service/auth"
	"github.com/amirasaad/acmebank/pkg/service/bank"
	"github.com/amirasaad/acmebank/webapi"
	log "github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
)

// @title ACME Bank API
// @version 1.0.0
// @description Single-branch bank: customers, checking and savings, ledger.
// @host localhost:3000
// @BasePath /
//
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description "Enter your Bearer token in the format: `Bearer {token}`"
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}
	logger := initializer.SetupLogger(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fiberApp, cleanup, err := newServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
	)

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down server")
		if err := fiberApp.Shutdown(); err != nil {
			logger.Error("Shutdown failed", "error", err)
		}
	}()
	return fiberApp.Listen(addr)
}

// newServer wires storage, the bank and auth into a Fiber app.
func newServer(ctx context.Context, cfg *config.App, logger *slog.Logger) (*fiber.App, func(), error) {
	if logger == nil {
		logger = initializer.SetupLogger(cfg.Log, io.Discard)
	}
	deps, cleanup, err := initializer.InitializeDependencies(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	bankSvc, err := bank.Open(ctx, *deps)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to open bank: %w", err)
	}
	var jwtCfg *config.Jwt
	if cfg.Auth != nil {
		jwtCfg = cfg.Auth.Jwt
	}
	if jwtCfg == nil || jwtCfg.Secret == "" {
		logger.Warn("AUTH_JWT_SECRET is not set; protected routes will reject every request")
	}
	authSvc := authsvc.NewWithJWT(bankSvc, jwtCfg, logger)
	return webapi.SetupApp(bankSvc, authSvc, cfg), cleanup, nil
}
