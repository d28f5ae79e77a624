// Package daemon wires configuration, database and web service together.
package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoSiteSettings/GoSiteSettings/internal/config"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db"
	"github.com/GoSiteSettings/GoSiteSettings/internal/web"
)

// ErrNilConfig is returned by New without a configuration.
var ErrNilConfig = errors.New("config is nil")

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	webService *web.Service
}

// Start starts the web service and blocks until it is stopped by a signal.
func (d *Daemon) Start() error {
	errs := make(chan error, 1)

	go func() {
		errs <- d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
	}()

	stopped := make(chan struct{})

	go func() {
		d.webService.WaitShutdown()
		close(stopped)
	}()

	select {
	case err := <-errs:
		d.close()
		return err
	case <-stopped:
		err := <-errs
		d.close()

		return err
	}
}

func (d *Daemon) close() {
	if err := db.Close(d.db); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}
}

// New opens and migrates the database, seeds the configured sites and
// prepares the web service.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	gdb, err := db.OpenAndMigrate(&cfg.DB)
	if err != nil {
		return nil, err
	}

	if err = seed(ctx, cfg, gdb); err != nil {
		_ = db.Close(gdb)
		return nil, err
	}

	ws, err := web.New(cfg, gdb)
	if err != nil {
		_ = db.Close(gdb)
		return nil, err
	}

	return &Daemon{
		cfg:        cfg,
		db:         gdb,
		webService: ws,
	}, nil
}
