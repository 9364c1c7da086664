// Command cli is the interactive console of ACME Bank.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/amirasaad/acmebank/infra/initializer"
	"github.com/amirasaad/acmebank/pkg/config"
	authsvc "github.com/amirasaad/acmebank/pkg/service/auth"
	"github.com/amirasaad/acmebank/pkg/service/bank"
	log "github.com/charmbracelet/log"
	"golang.org/x/term"
)

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

	deps, cleanup, err := initializer.InitializeDependencies(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bankSvc, err := bank.Open(ctx, *deps)
	if err != nil {
		return fmt.Errorf("failed to open bank: %w", err)
	}

	con := newConsole(bankSvc, authsvc.NewWithBasic(bankSvc, logger), os.Stdin, os.Stdout)
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		con.readPassword = func() (string, error) {
			b, err := term.ReadPassword(fd)
			return string(b), err
		}
	}
	return con.Run(ctx)
}
