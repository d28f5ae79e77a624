// Package key serves the key registry under /api/keys.
package key

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/GoSiteSettings/GoSiteSettings/internal/config"
	controller "github.com/GoSiteSettings/GoSiteSettings/internal/db/controller/key"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/models"
	"github.com/GoSiteSettings/GoSiteSettings/internal/web/handler"
)

const (
	// Path is the path of the key routes below the API prefix.
	Path = "keys"
)

// Service is the key handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the key handler.
var Handler = Service{}

// Response is the JSON form of a key.
type Response struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	AllowMultiples bool      `json:"allow_multiples"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateRequest is the body of POST /api/keys. AllowMultiples defaults to true.
type CreateRequest struct {
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	AllowMultiples *bool   `json:"allow_multiples"`
}

// UpdateRequest is the body of PATCH /api/keys/:id. Missing fields are kept.
type UpdateRequest struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	AllowMultiples *bool   `json:"allow_multiples"`
}

// Init registers the key routes.
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
		r.Patch("/:"+handler.IDParam, s.Update)
		r.Delete("/:"+handler.IDParam, s.Delete)
	})

	return nil
}

// List returns every key ordered by name.
func (s *Service) List(c *fiber.Ctx) error {
	keys, err := controller.List(c.UserContext(), s.db)
	if err != nil {
		return err
	}

	out := make([]Response, 0, len(keys))
	for i := range keys {
		out = append(out, toResponse(&keys[i]))
	}

	return c.JSON(out)
}

// Create registers a new key.
func (s *Service) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	allowMultiples := true
	if req.AllowMultiples != nil {
		allowMultiples = *req.AllowMultiples
	}

	k, err := controller.Create(c.UserContext(), s.db, req.Name, req.Description, allowMultiples)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(toResponse(k))
}

// Get returns one key.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	k, err := controller.GetByID(c.UserContext(), s.db, id)
	if err != nil {
		return err
	}

	return c.JSON(toResponse(k))
}

// Update changes name, description or cardinality policy of a key.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	k, err := controller.Update(c.UserContext(), s.db, id, controller.Changes{
		Name:           req.Name,
		Description:    req.Description,
		AllowMultiples: req.AllowMultiples,
	})
	if err != nil {
		return err
	}

	return c.JSON(toResponse(k))
}

// Delete removes a key no setting references.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := controller.Delete(c.UserContext(), s.db, id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := handler.ParseID(c)
	if err != nil {
		return 0, err
	}

	return uint(id), nil
}

func toResponse(k *models.Key) Response {
	return Response{
		ID:             k.ID,
		Name:           k.Name,
		Description:    k.DescriptionOrEmpty(),
		AllowMultiples: k.AllowMultiples,
		CreatedAt:      k.CreatedAt,
		UpdatedAt:      k.UpdatedAt,
	}
}
