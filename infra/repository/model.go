package repository

import (
	"fmt"
	"time"

	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/domain/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Money is a decimal column. SQLite has no exact numeric storage, a decimal column there
// gets NUMERIC affinity and is rounded through a float, so amounts are kept as TEXT.
type Money struct {
	decimal.Decimal
}

// GormDBDataType picks the column type per dialect.
func (Money) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "sqlite" {
		return "text"
	}
	return fmt.Sprintf("decimal(%d,%d)", money.Precision, money.Scale)
}

// Account represents an account record in the database. TypeKey holds the normalized
// account type and carries the unique index, so uniqueness ignores case on every driver.
type Account struct {
	ID           uint          `gorm:"primaryKey"`
	AccountType  string        `gorm:"size:20;not null"`
	TypeKey      string        `gorm:"size:20;not null;uniqueIndex"`
	Balance      Money         `gorm:"not null"`
	CreatedAt    time.Time     `gorm:"not null"`
	Transactions []Transaction `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}

// Transaction represents a persisted ledger row.
type Transaction struct {
	ID               uint      `gorm:"primaryKey"`
	AccountID        uint      `gorm:"not null;index:idx_transactions_account_created,priority:1"`
	Type             string    `gorm:"size:20;not null"`
	Amount           Money     `gorm:"not null"`
	BalanceAfter     Money     `gorm:"not null"`
	Description      *string   `gorm:"size:200"`
	RelatedAccountID *uint
	CreatedAt        time.Time `gorm:"not null;index:idx_transactions_account_created,priority:2"`
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string {
	return "transactions"
}

// Models lists every table the ledger needs, in migration order.
func Models() []any {
	return []any{&Account{}, &Transaction{}}
}

func accountFromModel(m *Account) *account.Account {
	return &account.Account{
		ID:          m.ID,
		AccountType: m.AccountType,
		Balance:     m.Balance.Decimal,
		CreatedAt:   m.CreatedAt,
	}
}

func accountToModel(a *account.Account) *Account {
	return &Account{
		ID:          a.ID,
		AccountType: a.AccountType,
		TypeKey:     a.TypeKey(),
		Balance:     Money{a.Balance},
		CreatedAt:   a.CreatedAt,
	}
}

func transactionFromModel(m *Transaction) *account.Transaction {
	return account.NewTransactionFromData(
		m.ID,
		m.AccountID,
		account.Type(m.Type),
		m.Amount.Decimal,
		m.BalanceAfter.Decimal,
		m.Description,
		m.RelatedAccountID,
		m.CreatedAt,
	)
}

func transactionToModel(t *account.Transaction) *Transaction {
	return &Transaction{
		ID:               t.ID,
		AccountID:        t.AccountID,
		Type:             string(t.Type),
		Amount:           Money{t.Amount},
		BalanceAfter:     Money{t.BalanceAfter},
		Description:      t.Description,
		RelatedAccountID: t.RelatedAccountID,
		CreatedAt:        t.CreatedAt,
	}
}
