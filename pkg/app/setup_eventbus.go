// Package app assembles the services and registers the event handlers on the configured bus.
package app

import (
	"github.com/amirasaad/atm/pkg/handler/ledger"
)

// setupEventBus registers all event handlers with the configured event Bus.
func (a *App) setupEventBus() {
	bus := a.Deps.EventBus
	if bus == nil {
		a.Deps.Logger.Warn("no event bus configured; ledger events will not be published")
		return
	}
	ledger.Register(bus, ledger.NewAuditor(a.Deps.Logger).Handle)
}
