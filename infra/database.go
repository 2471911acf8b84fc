package infra

import (
	"errors"
	"fmt"

	infrarepo "github.com/amirasaad/atm/infra/repository"
	"github.com/amirasaad/atm/pkg/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrUnsupportedDriver is returned for a DATABASE_DRIVER the ledger cannot open.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Dialector returns the gorm dialector for the configured driver and DSN.
func Dialector(cnf *config.DB) (gorm.Dialector, error) {
	if cnf.Url == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	switch cnf.Driver {
	case config.DriverSQLite, "":
		return sqlite.Open(cnf.Url), nil
	case config.DriverPostgres:
		return postgres.Open(cnf.Url), nil
	case config.DriverMySQL:
		return mysql.Open(cnf.Url), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cnf.Driver)
}

// NewDBConnection opens the configured database. SQL logging is verbose only in development.
func NewDBConnection(cnf *config.DB, appEnv string) (*gorm.DB, error) {
	dialector, err := Dialector(cnf)
	if err != nil {
		return nil, err
	}

	logMode := logger.Silent
	if appEnv == "development" {
		logMode = logger.Info
	}

	connection, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := connection.DB()
	if err != nil {
		return nil, err
	}
	if cnf.Driver == config.DriverSQLite || cnf.Driver == "" {
		// One writer at a time; also keeps shared in-memory databases alive on one connection.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cnf.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cnf.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cnf.ConnMaxLifetime)

	return connection, nil
}

// Migrate creates or updates the ledger tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(infrarepo.Models()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
