// Package setting serves settings, their translations and the list of kinds
// under /api/settings and /api/kinds.
package setting

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/GoSiteSettings/GoSiteSettings/internal/config"
	controller "github.com/GoSiteSettings/GoSiteSettings/internal/db/controller/setting"
	"github.com/GoSiteSettings/GoSiteSettings/internal/validation"
	"github.com/GoSiteSettings/GoSiteSettings/internal/web/handler"
)

const (
	// Path is the path of the setting routes below the API prefix.
	Path = "settings"
	// KindsPath lists the setting kinds.
	KindsPath = "kinds"

	// DefaultLimit is the number of settings returned by a list call without limit.
	DefaultLimit = 100
	// MaxLimit caps the limit query parameter.
	MaxLimit = 1000

	langParam  = "lang"
	valueField = "value"
)

// Service is the setting handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	db   *gorm.DB
	repo controller.Repository
}

// Handler is the setting handler.
var Handler = Service{}

// Response is the JSON form of a setting.
type Response struct {
	ID        uint64            `json:"id"`
	Site      uint64            `json:"site"`
	SiteName  string            `json:"site_name"`
	Key       controller.KeyRef `json:"key"`
	Weight    int               `json:"weight"`
	Kind      string            `json:"kind"`
	KindName  string            `json:"kind_name"`
	Value     any               `json:"value"`
	Language  string            `json:"language,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ListResponse is one page of settings.
type ListResponse struct {
	Settings []Response `json:"settings"`
	HasMore  bool       `json:"has_more"`
}

// ListQuery holds the filters of GET /api/settings.
type ListQuery struct {
	Site       uint64 `query:"site"`
	Key        string `query:"key"`
	KeyID      uint   `query:"key_id"`
	Kind       string `query:"kind"`
	Language   string `query:"language"`
	Translated bool   `query:"translated"`
	Limit      int    `query:"limit"`
	Offset     int    `query:"offset"`
}

// WriteRequest is the body of POST /api/settings and POST /api/settings/validate.
// The key is given by id or by name. ID is only used by validate, for a
// setting that is about to be updated.
type WriteRequest struct {
	ID       uint64          `json:"id"`
	Site     uint64          `json:"site"`
	Key      uint            `json:"key"`
	KeyName  string          `json:"key_name"`
	Kind     string          `json:"kind"`
	Value    json.RawMessage `json:"value"`
	Weight   int             `json:"weight"`
	Language string          `json:"language"`
}

// UpdateRequest is the body of PATCH /api/settings/:id. Missing fields are kept.
type UpdateRequest struct {
	Site     *uint64         `json:"site"`
	Key      *uint           `json:"key"`
	Weight   *int            `json:"weight"`
	Value    json.RawMessage `json:"value"`
	Language string          `json:"language"`
}

// TranslationRequest is the body of PUT /api/settings/:id/translations/:lang.
type TranslationRequest struct {
	Value json.RawMessage `json:"value"`
}

// TranslationResponse is a translated value and the language it is in.
type TranslationResponse struct {
	Language string `json:"language"`
	Value    any    `json:"value"`
}

// KindResponse describes a setting kind.
type KindResponse struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Translated  bool   `json:"translated"`
}

// Init registers the setting and kind routes.
func (s *Service) Init(router fiber.Router, cfg *config.Config, db *gorm.DB, repo controller.Repository) error {
	if router == nil || cfg == nil || db == nil || repo == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.repo = repo

	router.Get("/"+KindsPath, s.Kinds)

	router.Route("/"+Path, func(r fiber.Router) {
		r.Get(handler.RouterRootPath, s.List)
		r.Post(handler.RouterRootPath, s.Create)
		r.Post("/validate", s.Validate)
		r.Get("/:"+handler.IDParam, s.Get)
		r.Patch("/:"+handler.IDParam, s.Update)
		r.Delete("/:"+handler.IDParam, s.Delete)

		r.Get("/:"+handler.IDParam+"/translations", s.Translations)
		r.Get("/:"+handler.IDParam+"/translations/:"+langParam, s.GetTranslation)
		r.Put("/:"+handler.IDParam+"/translations/:"+langParam, s.SetTranslation)
		r.Delete("/:"+handler.IDParam+"/translations/:"+langParam, s.DeleteTranslation)
	})

	return nil
}

// Kinds lists the setting kinds.
func (s *Service) Kinds(c *fiber.Ctx) error {
	kinds := controller.Kinds()

	out := make([]KindResponse, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, KindResponse{Name: string(k), DisplayName: k.DisplayName(), Translated: k.Translated()})
	}

	return c.JSON(out)
}

// List returns the settings matching the query filters.
func (s *Service) List(c *fiber.Ctx) error {
	var q ListQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	limit = min(limit, MaxLimit)

	filter := controller.Filter{
		SiteID:         q.Site,
		KeyID:          q.KeyID,
		KeyName:        q.Key,
		Kind:           controller.Kind(q.Kind),
		Language:       q.Language,
		TranslatedOnly: q.Translated,
	}

	out := ListResponse{Settings: make([]Response, 0)}
	skipped := 0

	for st, err := range s.repo.ListSettings(c.UserContext(), filter) {
		if err != nil {
			return err
		}

		if skipped < q.Offset {
			skipped++
			continue
		}

		if len(out.Settings) == limit {
			out.HasMore = true
			break
		}

		out.Settings = append(out.Settings, toResponse(st))
	}

	return c.JSON(out)
}

// Create stores a new setting.
func (s *Service) Create(c *fiber.Ctx) error {
	var req WriteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	ctx := c.UserContext()

	cand, verr := candidate(req)
	if verr != nil {
		return s.invalidValue(ctx, cand, verr)
	}

	created, err := s.repo.CreateSetting(ctx, controller.CreateInput{
		SiteID:   cand.SiteID,
		KeyID:    cand.KeyID,
		KeyName:  cand.KeyName,
		Kind:     cand.Kind,
		Value:    cand.Value,
		Weight:   req.Weight,
		Language: cand.Language,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(toResponse(created))
}

// Validate checks a setting without storing it.
func (s *Service) Validate(c *fiber.Ctx) error {
	var req WriteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	ctx := c.UserContext()

	cand, verr := candidate(req)
	if verr != nil {
		return s.invalidValue(ctx, cand, verr)
	}

	verr, err := s.repo.Validate(ctx, cand)
	if err != nil {
		return err
	}

	if verr != nil {
		return verr
	}

	return c.JSON(fiber.Map{"valid": true})
}

// Get returns one setting with its value in the request language.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	st, err := s.repo.GetSetting(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(toResponse(st))
}

// Update changes site, key, weight or value of a setting.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	ctx := c.UserContext()
	changes := controller.Changes{
		SiteID:   req.Site,
		KeyID:    req.Key,
		Weight:   req.Weight,
		Language: req.Language,
	}

	if len(req.Value) > 0 {
		v, err := s.parseFor(ctx, id, req.Value)
		if err != nil {
			return err
		}

		changes.Value = v
	}

	updated, err := s.repo.UpdateSetting(ctx, id, changes)
	if err != nil {
		return err
	}

	return c.JSON(toResponse(updated))
}

// Delete removes a setting.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteSetting(c.UserContext(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Translations returns every stored language of a translated setting.
func (s *Service) Translations(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	all, err := s.repo.Translations(c.UserContext(), id)
	if err != nil {
		return err
	}

	out := make(map[string]any, len(all))
	for lang, v := range all {
		out[lang] = controller.JSONValue(v)
	}

	return c.JSON(out)
}

// GetTranslation returns the value in the given language, else in the default language.
func (s *Service) GetTranslation(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	v, lang, err := s.repo.GetTranslation(c.UserContext(), id, c.Params(langParam))
	if err != nil {
		return err
	}

	return c.JSON(TranslationResponse{Language: lang, Value: controller.JSONValue(v)})
}

// SetTranslation stores the value of a translated setting in one language.
func (s *Service) SetTranslation(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	var req TranslationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	ctx := c.UserContext()

	v, err := s.parseFor(ctx, id, req.Value)
	if err != nil {
		return err
	}

	if err := s.repo.SetTranslation(ctx, id, c.Params(langParam), v); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteTranslation removes the value of a translated setting in one language.
func (s *Service) DeleteTranslation(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteTranslation(c.UserContext(), id, c.Params(langParam)); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// parseFor decodes raw as a value of the kind of setting id.
func (s *Service) parseFor(ctx context.Context, id uint64, raw json.RawMessage) (controller.Value, error) {
	current, err := s.repo.GetSetting(ctx, id)
	if err != nil {
		return nil, err
	}

	v, verr := controller.ParseJSONValue(current.Kind, raw)
	if verr != nil {
		return nil, verr
	}

	return v, nil
}

// invalidValue reports a value that could not be decoded together with the
// failures of the other fields.
func (s *Service) invalidValue(ctx context.Context, cand controller.Candidate, verr *validation.Error) error {
	cand.Value = nil

	other, err := s.repo.Validate(ctx, cand)
	if err != nil {
		return err
	}

	if other != nil {
		delete(other.Fields, valueField)
		verr.Merge(other)
	}

	return verr
}

// candidate decodes req. The value is only decoded for a known kind.
func candidate(req WriteRequest) (controller.Candidate, *validation.Error) {
	cand := controller.Candidate{
		ID:       req.ID,
		SiteID:   req.Site,
		KeyID:    req.Key,
		KeyName:  req.KeyName,
		Kind:     controller.Kind(req.Kind),
		Language: req.Language,
	}

	if !cand.Kind.Valid() {
		return cand, nil
	}

	v, verr := controller.ParseJSONValue(cand.Kind, req.Value)
	if verr != nil {
		return cand, verr
	}

	cand.Value = v

	return cand, nil
}

func toResponse(st *controller.Setting) Response {
	return Response{
		ID:        st.ID,
		Site:      st.SiteID,
		SiteName:  st.SiteName,
		Key:       st.Key,
		Weight:    st.Weight,
		Kind:      string(st.Kind),
		KindName:  st.KindName(),
		Value:     controller.JSONValue(st.Value),
		Language:  st.Language,
		CreatedAt: st.CreatedAt,
		UpdatedAt: st.UpdatedAt,
	}
}
