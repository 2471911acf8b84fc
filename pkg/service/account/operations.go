package account

import (
	"context"
	"fmt"

	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/domain/events"
	"github.com/amirasaad/atm/pkg/dto"
	"github.com/amirasaad/atm/pkg/repository"
	"github.com/shopspring/decimal"
)

// applyFunc mutates acc in memory and returns the ledger row describing the change.
type applyFunc func(acc *account.Account) (*account.Transaction, error)

// mutateOne locks the account of accountType, applies fn and persists the new balance
// together with the resulting transaction in a single unit of work.
func (s *Service) mutateOne(
	ctx context.Context,
	accountType string,
	fn applyFunc,
) (acc *account.Account, tx *account.Transaction, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accRepo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		txRepo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}

		found, err := accRepo.FindByTypesForUpdate(ctx, accountType)
		if err != nil {
			return err
		}
		a, ok := found[account.NormalizeType(accountType)]
		if !ok {
			return account.NewAccountNotFoundError(account.SideNone, accountType)
		}

		t, err := fn(a)
		if err != nil {
			return err
		}
		if err := accRepo.UpdateBalance(ctx, a.ID, a.Balance); err != nil {
			return err
		}
		if err := txRepo.Create(ctx, t); err != nil {
			return err
		}
		acc, tx = a, t
		return nil
	})
	return acc, tx, err
}

// Deposit adds amount to the account identified by accountType.
func (s *Service) Deposit(
	ctx context.Context,
	accountType string,
	amount decimal.Decimal,
) (dto.Result[dto.AccountSummary], error) {
	logger := s.logger.With("operation", "deposit", "account_type", accountType, "amount", amount.String())
	if account.BlankType(accountType) {
		return fail[dto.AccountSummary](logger, depositOp, account.ErrAccountTypeRequired)
	}
	if err := account.ValidateAmount(amount); err != nil {
		return fail[dto.AccountSummary](logger, depositOp, err)
	}

	at := s.now()
	acc, tx, err := s.mutateOne(ctx, accountType, func(a *account.Account) (*account.Transaction, error) {
		return a.Deposit(amount, accountType, at)
	})
	if err != nil {
		return fail[dto.AccountSummary](logger, depositOp, err)
	}

	logger.Info("deposit completed", "account_id", acc.ID, "balance", acc.Balance.String())
	s.emit(ctx, events.NewDepositCompleted(acc.ID, acc.AccountType, tx.Amount, tx.BalanceAfter, at))
	return dto.Ok(depositMessage(amount, accountType), dto.ToAccountSummary(acc)), nil
}

// Withdraw removes amount from the account identified by accountType. The balance is
// checked inside the same unit of work that writes it.
func (s *Service) Withdraw(
	ctx context.Context,
	accountType string,
	amount decimal.Decimal,
) (dto.Result[dto.AccountSummary], error) {
	logger := s.logger.With("operation", "withdraw", "account_type", accountType, "amount", amount.String())
	if account.BlankType(accountType) {
		return fail[dto.AccountSummary](logger, withdrawOp, account.ErrAccountTypeRequired)
	}
	if err := account.ValidateAmount(amount); err != nil {
		return fail[dto.AccountSummary](logger, withdrawOp, err)
	}

	at := s.now()
	acc, tx, err := s.mutateOne(ctx, accountType, func(a *account.Account) (*account.Transaction, error) {
		return a.Withdraw(amount, accountType, at)
	})
	if err != nil {
		return fail[dto.AccountSummary](logger, withdrawOp, err)
	}

	logger.Info("withdrawal completed", "account_id", acc.ID, "balance", acc.Balance.String())
	s.emit(ctx, events.NewWithdrawalCompleted(acc.ID, acc.AccountType, tx.Amount, tx.BalanceAfter, at))
	return dto.Ok(withdrawMessage(amount, accountType), dto.ToAccountSummary(acc)), nil
}

// Transfer moves amount from fromType to toType. Both legs are written in one unit of
// work with a shared timestamp; on failure neither account changes.
func (s *Service) Transfer(
	ctx context.Context,
	fromType, toType string,
	amount decimal.Decimal,
) (dto.Result[string], error) {
	logger := s.logger.With(
		"operation", "transfer",
		"from", fromType,
		"to", toType,
		"amount", amount.String(),
	)
	if account.BlankType(fromType) || account.BlankType(toType) {
		return fail[string](logger, transferOp, account.ErrAccountTypeRequired)
	}
	if account.SameType(fromType, toType) {
		return fail[string](logger, transferOp, account.ErrCannotTransferToSameAccount)
	}
	if err := account.ValidateAmount(amount); err != nil {
		return fail[string](logger, transferOp, err)
	}

	at := s.now()
	var source, dest *account.Account
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accRepo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		txRepo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}

		found, err := accRepo.FindByTypesForUpdate(ctx, fromType, toType)
		if err != nil {
			return err
		}
		from, ok := found[account.NormalizeType(fromType)]
		if !ok {
			return account.NewAccountNotFoundError(account.SideSource, fromType)
		}
		to, ok := found[account.NormalizeType(toType)]
		if !ok {
			return account.NewAccountNotFoundError(account.SideDestination, toType)
		}

		debit, credit, err := from.Transfer(to, amount, fromType, toType, at)
		if err != nil {
			return err
		}
		if err := accRepo.UpdateBalance(ctx, from.ID, from.Balance); err != nil {
			return err
		}
		if err := accRepo.UpdateBalance(ctx, to.ID, to.Balance); err != nil {
			return err
		}
		if err := txRepo.Create(ctx, debit); err != nil {
			return err
		}
		if err := txRepo.Create(ctx, credit); err != nil {
			return err
		}
		source, dest = from, to
		return nil
	})
	if err != nil {
		return fail[string](logger, transferOp, err)
	}

	logger.Info("transfer completed",
		"from_balance", source.Balance.String(),
		"to_balance", dest.Balance.String(),
	)
	s.emit(ctx, events.NewTransferCompleted(
		events.TransferSide{AccountID: source.ID, AccountType: source.AccountType, BalanceAfter: source.Balance},
		events.TransferSide{AccountID: dest.ID, AccountType: dest.AccountType, BalanceAfter: dest.Balance},
		amount,
		at,
	))
	return dto.Ok(
		transferMessage(amount, fromType, toType),
		fmt.Sprintf("Transfer completed at %s UTC", at.Format(transferTimeLayout)),
	), nil
}
