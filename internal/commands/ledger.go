package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/amirasaad/atm/pkg/domain/money"
	"github.com/amirasaad/atm/pkg/dto"
	accountsvc "github.com/amirasaad/atm/pkg/service/account"
	"github.com/spf13/cobra"
)

// errRejected marks a ledger operation that completed with a failed result. The message
// has already been printed.
var errRejected = errors.New("operation rejected")

func newAccountsCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List accounts and balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withService(func(svc *accountsvc.Service) error {
				accounts, err := svc.ListAccounts(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				_, _ = headColor.Fprintln(w, "ID\tACCOUNT\tBALANCE\tOPENED")
				for _, a := range accounts {
					_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
						a.ID, a.AccountType, money.Format(a.Balance), a.CreatedAt.Format("2006-01-02"))
				}
				return w.Flush()
			})
		},
	}
}

func newHistoryCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "history <account-type>",
		Short: "Show the transactions of an account, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withService(func(svc *accountsvc.Service) error {
				history, err := svc.GetHistory(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(history) == 0 {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No transactions for %s.\n", args[0])
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				_, _ = headColor.Fprintln(w, "ID\tWHEN\tTYPE\tAMOUNT\tBALANCE\tCOUNTERPART\tDESCRIPTION")
				for _, h := range history {
					counterpart, description := "-", ""
					if h.RelatedAccountType != nil {
						counterpart = *h.RelatedAccountType
					}
					if h.Description != nil {
						description = *h.Description
					}
					_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
						h.ID,
						h.CreatedAt.Format("2006-01-02 15:04:05"),
						h.Type,
						money.Format(h.Amount),
						money.Format(h.BalanceAfter),
						counterpart,
						description,
					)
				}
				return w.Flush()
			})
		},
	}
}

func newDepositCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <account-type> <amount>",
		Short: "Deposit into an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := money.Parse(args[1])
			if err != nil {
				return err
			}
			return rt.withService(func(svc *accountsvc.Service) error {
				res, err := svc.Deposit(cmd.Context(), args[0], amount)
				return report(cmd, res, err)
			})
		},
	}
}

func newWithdrawCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <account-type> <amount>",
		Short: "Withdraw from an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := money.Parse(args[1])
			if err != nil {
				return err
			}
			return rt.withService(func(svc *accountsvc.Service) error {
				res, err := svc.Withdraw(cmd.Context(), args[0], amount)
				return report(cmd, res, err)
			})
		},
	}
}

func newTransferCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <from> <to> <amount>",
		Short: "Transfer between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := money.Parse(args[2])
			if err != nil {
				return err
			}
			return rt.withService(func(svc *accountsvc.Service) error {
				res, err := svc.Transfer(cmd.Context(), args[0], args[1], amount)
				if err := report(cmd, res, err); err != nil {
					return err
				}
				if res.Data != nil {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), *res.Data)
				}
				return nil
			})
		},
	}
}

func report[T any](cmd *cobra.Command, res dto.Result[T], err error) error {
	printResult(cmd.OutOrStdout(), res.Success, res.Message)
	if err != nil {
		return errRejected
	}
	return nil
}
