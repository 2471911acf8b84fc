package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirasaad/atm/pkg/domain"
	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/dto"
	"github.com/amirasaad/atm/pkg/repository"
)

// ListAccounts returns every account ordered by id.
func (s *Service) ListAccounts(ctx context.Context) ([]dto.AccountSummary, error) {
	var accounts []*account.Account
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		accounts, err = repo.List(ctx)
		return err
	})
	if err != nil {
		s.logger.Error("failed to list accounts", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return dto.ToAccountSummaries(accounts), nil
}

// GetHistory returns the transactions of accountType, newest first. An unknown account
// type yields an empty history rather than an error.
func (s *Service) GetHistory(ctx context.Context, accountType string) ([]dto.TransactionHistory, error) {
	history := []dto.TransactionHistory{}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accRepo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		txRepo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}

		acc, err := accRepo.FindByType(ctx, accountType)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		txs, err := txRepo.ListByAccount(ctx, acc.ID)
		if err != nil {
			return err
		}

		related, err := accRepo.FindByIDs(ctx, relatedIDs(txs))
		if err != nil {
			return err
		}
		history = make([]dto.TransactionHistory, 0, len(txs))
		for _, tx := range txs {
			history = append(history, dto.ToTransactionHistory(tx, related))
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to load history", "account_type", accountType, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return history, nil
}

func relatedIDs(txs []*account.Transaction) []uint {
	seen := make(map[uint]struct{})
	ids := make([]uint, 0)
	for _, tx := range txs {
		if tx.RelatedAccountID == nil {
			continue
		}
		if _, ok := seen[*tx.RelatedAccountID]; ok {
			continue
		}
		seen[*tx.RelatedAccountID] = struct{}{}
		ids = append(ids, *tx.RelatedAccountID)
	}
	return ids
}
