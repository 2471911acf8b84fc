package account

import (
	accountsvc "github.com/amirasaad/atm/pkg/service/account"
	"github.com/amirasaad/atm/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Routes registers the ledger endpoints.
//
// Routes:
//   - GET    /api/accounts                            : List all accounts.
//   - GET    /api/accounts/:accountType/transactions  : Transaction history, newest first.
//   - POST   /api/accounts/:accountType/deposit       : Deposit into an account.
//   - POST   /api/accounts/:accountType/withdraw      : Withdraw from an account.
//   - POST   /api/accounts/transfer                   : Transfer between two accounts.
func Routes(app *fiber.App, accountSvc *accountsvc.Service) {
	api := app.Group("/api/accounts")
	api.Get("/", ListAccounts(accountSvc))
	api.Post("/transfer", Transfer(accountSvc))
	api.Get("/:accountType/transactions", GetTransactions(accountSvc))
	api.Post("/:accountType/deposit", Deposit(accountSvc))
	api.Post("/:accountType/withdraw", Withdraw(accountSvc))
}

// ListAccounts returns every account with its current balance.
func ListAccounts(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accounts, err := accountSvc.ListAccounts(c.UserContext())
		if err != nil {
			log.Errorf("Failed to list accounts: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to list accounts", err,
				"An error occurred while loading accounts.")
		}
		return c.JSON(accounts)
	}
}

// GetTransactions returns the history of the account in the path. Unknown account types
// answer an empty list.
func GetTransactions(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountType := c.Params("accountType")
		history, err := accountSvc.GetHistory(c.UserContext(), accountType)
		if err != nil {
			log.Errorf("Failed to load history for %s: %v", accountType, err)
			return common.ProblemDetailsJSON(c, "Failed to load transactions", err,
				"An error occurred while loading transactions.")
		}
		return c.JSON(history)
	}
}

// Deposit adds the body amount to the account in the path and answers the tagged result.
func Deposit(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[AmountRequest](c)
		if input == nil {
			return err
		}
		accountType := c.Params("accountType")
		log.Infof("Deposit handler: %s into %s", input.Amount, accountType)
		res, err := accountSvc.Deposit(c.UserContext(), accountType, input.Amount)
		return c.Status(common.ErrorToStatusCode(err)).JSON(res)
	}
}

// Withdraw removes the body amount from the account in the path.
func Withdraw(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[AmountRequest](c)
		if input == nil {
			return err
		}
		accountType := c.Params("accountType")
		log.Infof("Withdraw handler: %s from %s", input.Amount, accountType)
		res, err := accountSvc.Withdraw(c.UserContext(), accountType, input.Amount)
		return c.Status(common.ErrorToStatusCode(err)).JSON(res)
	}
}

// Transfer moves the body amount between the two named accounts.
func Transfer(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[TransferRequest](c)
		if input == nil {
			return err
		}
		log.Infof("Transfer handler: %s from %s to %s", input.Amount, input.FromAccountType, input.ToAccountType)
		res, err := accountSvc.Transfer(c.UserContext(), input.FromAccountType, input.ToAccountType, input.Amount)
		return c.Status(common.ErrorToStatusCode(err)).JSON(res)
	}
}
