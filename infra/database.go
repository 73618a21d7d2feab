package infra

import (
	"fmt"
	"time"

	"github.com/amirasaad/payoutrouter/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDBConnection opens the ledger database and creates its tables.
func NewDBConnection(
	cnf *config.DB,
	appEnv string,
	models ...any,
) (*gorm.DB, error) {
	dialector, err := dialectorFor(cnf)
	if err != nil {
		return nil, err
	}

	var logMode logger.LogLevel
	if appEnv == "development" {
		logMode = logger.Info
	} else {
		logMode = logger.Silent
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
	if cnf.Driver == config.DriverSQLite {
		// sqlite serializes writers; one connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(1 * time.Hour)
	}

	if len(models) > 0 {
		if err := connection.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}
	return connection, nil
}

func dialectorFor(cnf *config.DB) (gorm.Dialector, error) {
	switch cnf.Driver {
	case config.DriverSQLite:
		if cnf.Url == "" {
			return nil, fmt.Errorf("sqlite database path is not set")
		}
		return sqlite.Open(cnf.Url), nil
	case config.DriverPostgres, "":
		if cnf.Url == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
		return postgres.Open(cnf.Url), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cnf.Driver)
	}
}
