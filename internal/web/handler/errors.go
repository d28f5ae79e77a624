package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoSiteSettings/GoSiteSettings/internal/db/controller/key"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/controller/setting"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/controller/site"
	"github.com/GoSiteSettings/GoSiteSettings/internal/i18n"
	"github.com/GoSiteSettings/GoSiteSettings/internal/validation"
)

// ErrInvalidID is returned when an id route parameter is not a positive number.
var ErrInvalidID = errors.New("invalid id")

// ErrorResponse is the body of every non validation failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

var (
	notFound = []error{
		key.ErrKeyNotFound,
		site.ErrSiteNotFound,
		setting.ErrSettingNotFound,
		setting.ErrTranslationNotFound,
		setting.ErrNoValueAvailable,
	}
	conflict = []error{
		key.ErrDuplicateKeyName,
		key.ErrKeyInUse,
		site.ErrDuplicateDomain,
	}
	badRequest = []error{
		ErrInvalidID,
		setting.ErrNotTranslatable,
		setting.ErrUnknownKind,
		i18n.ErrInvalidLanguage,
		i18n.ErrUnsupportedLanguage,
	}
)

// StatusOf returns the HTTP status reporting err.
func StatusOf(err error) int {
	var (
		verr     *validation.Error
		fiberErr *fiber.Error
	)

	switch {
	case errors.As(err, &verr):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case isOneOf(err, notFound):
		return fiber.StatusNotFound
	case isOneOf(err, conflict):
		return fiber.StatusConflict
	case isOneOf(err, badRequest):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders errors returned by handlers. Validation failures are
// sent as {"errors": {field: [...]}}, everything else as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := StatusOf(err)

	var verr *validation.Error
	if errors.As(err, &verr) {
		return c.Status(status).JSON(verr)
	}

	msg := err.Error()

	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")

		msg = "internal server error"
	}

	return c.Status(status).JSON(ErrorResponse{Error: msg})
}

// ParseID reads the numeric id route parameter.
func ParseID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(IDParam), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}

	return id, nil
}

func isOneOf(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
