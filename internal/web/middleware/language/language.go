// Package language stores the request language in the user context of each request.
package language

import (
	"github.com/gofiber/fiber/v2"

	"github.com/GoSiteSettings/GoSiteSettings/internal/i18n"
)

// QueryParam overrides the Accept-Language header.
const QueryParam = "language"

// New picks the language from ?language= or else from Accept-Language.
// An explicit language that is not accepted fails the request.
func New(langs *i18n.Languages) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var lang string

		if explicit := c.Query(QueryParam); explicit != "" {
			normalized, err := langs.Normalize(explicit)
			if err != nil {
				return err //nolint:wrapcheck
			}

			lang = normalized
		} else {
			lang = langs.Match(c.Get(fiber.HeaderAcceptLanguage))
		}

		c.SetUserContext(i18n.WithLanguage(c.UserContext(), lang))
		c.Set(fiber.HeaderContentLanguage, lang)

		return c.Next()
	}
}
