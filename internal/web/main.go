// Package web serves the settings store as a JSON API with fiber.
package web

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoSiteSettings/GoSiteSettings/internal/config"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/controller/setting"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/controller/site"
	"github.com/GoSiteSettings/GoSiteSettings/internal/i18n"
	fiberlogger "github.com/GoSiteSettings/GoSiteSettings/internal/logger/adapter/fiber"
	"github.com/GoSiteSettings/GoSiteSettings/internal/web/handler"
	keyhandler "github.com/GoSiteSettings/GoSiteSettings/internal/web/handler/key"
	settinghandler "github.com/GoSiteSettings/GoSiteSettings/internal/web/handler/setting"
	sitehandler "github.com/GoSiteSettings/GoSiteSettings/internal/web/handler/site"
	"github.com/GoSiteSettings/GoSiteSettings/internal/web/middleware/auth"
	"github.com/GoSiteSettings/GoSiteSettings/internal/web/middleware/language"
)

const (
	// CheckAlivePath answers 200 while the service accepts traffic and 503 while it shuts down.
	CheckAlivePath = "/checkalive"
	// MetricsPath exposes the Prometheus metrics.
	MetricsPath = "/metrics"
)

var (
	// ErrNilConfig is returned when the configuration is nil.
	ErrNilConfig = errors.New("config cannot be nil")
	// ErrNilDB is returned when the database is nil.
	ErrNilDB = errors.New("db cannot be nil")
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	Repo         *setting.GormRepository
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan error, 1)

	go func() {
		err := s.App.Listen(addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("fiber listen error")
		}

		doneFiber <- err
	}()

	// wait for fiber to stop
	if err := <-doneFiber; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web service on %s: %w", addr, err)
	}

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the http server down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown lets load balancers see a failing check alive for the configured
// time and then stops the http server.
func (s *Service) Shutdown() {
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// Alive reports whether the check alive endpoint answers 200.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) (*Service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if db == nil {
		return nil, ErrNilDB
	}

	langs, err := i18n.New(cfg.I18n.DefaultLanguage, cfg.I18n.Languages)
	if err != nil {
		return nil, fmt.Errorf("failed to set up languages: %w", err)
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize:        8192, //nolint:mnd
			AppName:               cfg.Title,
			CaseSensitive:         true,
			Prefork:               false,
			Immutable:             true,
			DisableStartupMessage: !cfg.DevMode,
			ErrorHandler:          handler.ErrorHandler,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:    cfg.Log,
		SkipPaths: []string{CheckAlivePath, MetricsPath},
	}))

	service := &Service{
		App:          app,
		Repo:         setting.NewRepository(db, site.NewDirectory(db), langs),
		cfg:          cfg,
		db:           db,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	app.Get(CheckAlivePath, service.checkAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group(handler.APIPath, auth.New(cfg.Webserver.APITokenHash), language.New(langs))

	if err := keyhandler.Handler.Init(api, cfg, db); err != nil {
		return nil, err
	}

	if err := sitehandler.Handler.Init(api, cfg, db); err != nil {
		return nil, err
	}

	if err := settinghandler.Handler.Init(api, cfg, db, service.Repo); err != nil {
		return nil, err
	}

	return service, nil
}

func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}
