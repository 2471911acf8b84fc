// Package account provides the ledger's business operations: the balance mutation engine
// (deposit, withdraw, transfer) and the history projector (account list, transaction history).
//
// Every mutation runs its read-check-write sequence inside one repository.UnitOfWork, so a
// failed call never leaves a partial change behind. Ledger events are emitted only after the
// unit of work has committed.
package account

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/atm/pkg/domain/events"
	"github.com/amirasaad/atm/pkg/eventbus"
	"github.com/amirasaad/atm/pkg/repository"
)

// Service implements the ledger operations on top of a unit of work.
type Service struct {
	bus    eventbus.Bus
	uow    repository.UnitOfWork
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a Service. bus may be nil, in which case no events are emitted.
func NewService(bus eventbus.Bus, uow repository.UnitOfWork, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		bus:    bus,
		uow:    uow,
		logger: logger.With("service", "account"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used to stamp transactions.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = func() time.Time { return now().UTC() }
	return s
}

// emit publishes evt after a commit. The committed result stands even when publishing fails.
func (s *Service) emit(ctx context.Context, evt events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Emit(ctx, evt); err != nil {
		s.logger.Warn("failed to publish ledger event", "type", evt.Type(), "error", err)
	}
}
