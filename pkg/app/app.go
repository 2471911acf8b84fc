package app

import (
	"log/slog"

	"github.com/amirasaad/atm/pkg/config"
	"github.com/amirasaad/atm/pkg/eventbus"
	"github.com/amirasaad/atm/pkg/repository"
	"github.com/amirasaad/atm/pkg/service/account"
)

// Deps contains the infrastructure the services are built from.
type Deps struct {
	Uow      repository.UnitOfWork
	EventBus eventbus.Bus
	Logger   *slog.Logger
}

type App struct {
	Deps           *Deps
	Config         *config.App
	AccountService *account.Service
}

func New(deps *Deps, cfg *config.App) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	app := &App{
		Deps:   deps,
		Config: cfg,
	}
	app.setupEventBus()

	app.AccountService = account.NewService(deps.EventBus, deps.Uow, deps.Logger)
	return app
}
