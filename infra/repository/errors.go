package repository

import (
	"errors"
	"fmt"

	"github.com/amirasaad/atm/pkg/domain"
	"gorm.io/gorm"
)

// MapGormErrorToDomain maps the gorm errors the ledger store can produce onto domain
// errors. The driver error stays in the chain for logging; anything unmapped is
// returned untouched.
func MapGormErrorToDomain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		// account types are unique ignoring case
		return fmt.Errorf("%w: %w", domain.ErrAlreadyExists, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		// transaction row pointing at an account that is gone
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	return err
}

// WrapError runs a gorm operation and maps its error.
//
//	err := WrapError(func() error {
//	    return r.db.WithContext(ctx).Create(m).Error
//	})
func WrapError(op func() error) error {
	return MapGormErrorToDomain(op())
}
