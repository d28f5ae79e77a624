package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/GoSiteSettings/GoSiteSettings/internal/config"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db"
	"github.com/GoSiteSettings/GoSiteSettings/internal/logger"
)

var (
	configPath string // Path to the configuration directory

	cfg config.Config
)

// loadConfig reads the configuration and initialises the logger.
func loadConfig() error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	if err = logger.Init(cfg.Log); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	return nil
}

// openDB loads the configuration and opens the migrated database.
func openDB() (*gorm.DB, error) {
	if err := loadConfig(); err != nil {
		return nil, err
	}

	return db.OpenAndMigrate(&cfg.DB)
}
