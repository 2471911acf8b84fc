// Package ledger holds event handlers that react to committed ledger mutations.
package ledger

import (
	"context"
	"log/slog"
	"sync"

	"github.com/amirasaad/atm/pkg/domain/events"
	"github.com/amirasaad/atm/pkg/eventbus"
	"github.com/google/uuid"
)

// DefaultSeenCapacity is how many event ids an Auditor remembers for deduplication.
const DefaultSeenCapacity = 4096

// Auditor writes one structured log line per committed ledger event. Brokers deliver at
// least once, so events already seen are skipped by id. Only the most recent ids are
// remembered; a redelivery older than that is audited again.
type Auditor struct {
	logger *slog.Logger
	seen   *seenSet
}

// NewAuditor creates an Auditor that remembers DefaultSeenCapacity event ids.
func NewAuditor(logger *slog.Logger) *Auditor {
	return NewAuditorWithCapacity(logger, DefaultSeenCapacity)
}

// NewAuditorWithCapacity creates an Auditor that remembers at most capacity event ids.
func NewAuditorWithCapacity(logger *slog.Logger, capacity int) *Auditor {
	if capacity < 1 {
		capacity = 1
	}
	return &Auditor{
		logger: logger.With("handler", "LedgerAudit"),
		seen:   newSeenSet(capacity),
	}
}

// Handle implements eventbus.HandlerFunc.
func (a *Auditor) Handle(_ context.Context, e events.Event) error {
	switch evt := e.(type) {
	case *events.DepositCompleted:
		if a.duplicate(evt.ID) {
			return nil
		}
		a.logger.Info("💰 [AUDIT] deposit committed",
			"event_id", evt.ID,
			"account_id", evt.AccountID,
			"account_type", evt.AccountType,
			"amount", evt.Amount.String(),
			"balance_after", evt.BalanceAfter.String(),
		)
	case *events.WithdrawalCompleted:
		if a.duplicate(evt.ID) {
			return nil
		}
		a.logger.Info("🏧 [AUDIT] withdrawal committed",
			"event_id", evt.ID,
			"account_id", evt.AccountID,
			"account_type", evt.AccountType,
			"amount", evt.Amount.String(),
			"balance_after", evt.BalanceAfter.String(),
		)
	case *events.TransferCompleted:
		if a.duplicate(evt.ID) {
			return nil
		}
		a.logger.Info("🔁 [AUDIT] transfer committed",
			"event_id", evt.ID,
			"from", evt.FromAccountType,
			"to", evt.ToAccountType,
			"amount", evt.Amount.String(),
			"from_balance_after", evt.FromBalanceAfter.String(),
			"to_balance_after", evt.ToBalanceAfter.String(),
		)
	default:
		a.logger.Debug("🚫 [SKIP] unexpected event type", "type", e.Type())
	}
	return nil
}

func (a *Auditor) duplicate(id uuid.UUID) bool {
	if !a.seen.add(id) {
		a.logger.Debug("🔁 [SKIP] event already audited", "event_id", id)
		return true
	}
	return false
}

// seenSet is a fixed-size set of ids. Once full, adding evicts the oldest id.
type seenSet struct {
	mu    sync.Mutex
	ids   map[uuid.UUID]struct{}
	order []uuid.UUID
	next  int
}

func newSeenSet(capacity int) *seenSet {
	return &seenSet{
		ids:   make(map[uuid.UUID]struct{}, capacity),
		order: make([]uuid.UUID, 0, capacity),
	}
}

// add reports whether id was not yet in the set.
func (s *seenSet) add(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	if len(s.order) < cap(s.order) {
		s.order = append(s.order, id)
	} else {
		delete(s.ids, s.order[s.next])
		s.order[s.next] = id
		s.next = (s.next + 1) % len(s.order)
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *seenSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Register subscribes h to every ledger event type.
func Register(bus eventbus.Bus, h eventbus.HandlerFunc) {
	for _, t := range []events.EventType{
		events.EventTypeDepositCompleted,
		events.EventTypeWithdrawalCompleted,
		events.EventTypeTransferCompleted,
	} {
		bus.Register(t, h)
	}
}
