// Package site serves the site directory under /api/sites.
package site

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/GoSiteSettings/GoSiteSettings/internal/config"
	controller "github.com/GoSiteSettings/GoSiteSettings/internal/db/controller/site"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/models"
	"github.com/GoSiteSettings/GoSiteSettings/internal/web/handler"
)

const (
	// Path is the path of the site routes below the API prefix.
	Path = "sites"
)

// Service is the site handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the site handler.
var Handler = Service{}

// CreateRequest is the body of POST /api/sites.
type CreateRequest struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// Init registers the site routes.
func (s *Service) Init(router fiber.Router, cfg *config.Config, db *gorm.DB) error {
	if router == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg

	router.Route("/"+Path, func(r fiber.Router) {
		r.Get(handler.RouterRootPath, s.List)
		r.Post(handler.RouterRootPath, s.Create)
		r.Get("/:"+handler.IDParam, s.Get)
	})

	return nil
}

// List returns every site ordered by id.
func (s *Service) List(c *fiber.Ctx) error {
	sites, err := controller.List(c.UserContext(), s.db)
	if err != nil {
		return err
	}

	out := make([]controller.Info, 0, len(sites))
	for i := range sites {
		out = append(out, toInfo(&sites[i]))
	}

	return c.JSON(out)
}

// Create adds a site.
func (s *Service) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	created, err := controller.Create(c.UserContext(), s.db, req.Name, req.Domain)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(toInfo(created))
}

// Get returns one site.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	found, err := controller.GetByID(c.UserContext(), s.db, id)
	if err != nil {
		return err
	}

	return c.JSON(toInfo(found))
}

func toInfo(s *models.Site) controller.Info {
	return controller.Info{ID: s.ID, Name: s.Name, Domain: s.Domain}
}
