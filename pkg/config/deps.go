package config

import (
	"log/slog"

	"github.com/amirasaad/acmebank/pkg/eventbus"
	"github.com/amirasaad/acmebank/pkg/repository"
)

// Deps groups the collaborators shared by the services.
type Deps struct {
	Uow      repository.UnitOfWork
	EventBus eventbus.Bus
	Logger   *slog.Logger
	Config   *App
}
