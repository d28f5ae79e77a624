// Package db opens the settings database and runs its migrations.
package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GoSiteSettings/GoSiteSettings/internal/config"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/dsn"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/models"
	"github.com/GoSiteSettings/GoSiteSettings/internal/logger"
	"github.com/GoSiteSettings/GoSiteSettings/internal/logger/adapter/gormlog"
)

// Open connects to the configured database and applies pool settings.
// SQLite is limited to one connection: writes are serialised and
// an in-memory database stays the same database for every query.
func Open(dbCfg *config.DB) (*gorm.DB, error) {
	if dbCfg == nil {
		return nil, ErrNilConfig
	}

	source, err := dsn.Create(dbCfg)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector

	switch dbCfg.Engine {
	case config.DBEngineMySQL:
		dialector = mysql.Open(source)
	case config.DBEnginePostgres:
		dialector = postgres.Open(source)
	default:
		if dbCfg.Path != "" && dbCfg.Path != dsn.MemoryPath {
			if err = os.MkdirAll(filepath.Dir(dbCfg.Path), 0o750); err != nil { //nolint:mnd
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}

		dialector = sqlite.Open(source)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlog.New(logger.Component("gorm"), dbCfg.SlowQueryThreshold, dbCfg.LogQueries),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}

	switch dbCfg.Engine {
	case config.DBEngineMySQL, config.DBEnginePostgres:
		if dbCfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(dbCfg.MaxOpenConns)
		}

		if dbCfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(dbCfg.MaxIdleConns)
		}
	default:
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)

		if err = gdb.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return gdb, nil
}

// Migrate creates or updates every settings table.
func Migrate(gdb *gorm.DB) error {
	if gdb == nil {
		return ErrDBNil
	}

	if err := gdb.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to run database migration: %w", err)
	}

	return nil
}

// OpenAndMigrate is Open followed by Migrate.
func OpenAndMigrate(dbCfg *config.DB) (*gorm.DB, error) {
	gdb, err := Open(dbCfg)
	if err != nil {
		return nil, err
	}

	if err = Migrate(gdb); err != nil {
		return nil, err
	}

	return gdb, nil
}

// Close releases the underlying connection pool.
func Close(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return err //nolint:wrapcheck
	}

	return sqlDB.Close() //nolint:wrapcheck
}

// IsUniqueViolation reports whether err was raised by a unique index.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	errStr := err.Error()

	// SQLite, PostgreSQL or MySQL unique constraint errors
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "duplicate key value violates unique constraint") ||
		strings.Contains(errStr, "Duplicate entry")
}

// IsForeignKeyViolation reports whether err was raised by a foreign key.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	errStr := err.Error()

	return strings.Contains(errStr, "FOREIGN KEY constraint failed") ||
		strings.Contains(errStr, "violates foreign key constraint") ||
		strings.Contains(errStr, "a foreign key constraint fails")
}
