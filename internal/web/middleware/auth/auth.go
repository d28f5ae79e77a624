// Package auth protects the JSON API with a bearer token checked against the
// argon2id hash from the configuration.
package auth

import (
	"crypto/subtle"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoSiteSettings/GoSiteSettings/internal/token"
)

const bearerPrefix = "bearer "

// New returns a middleware accepting requests whose bearer token matches hash.
// An empty hash disables the check.
func New(hash string) fiber.Handler {
	if hash == "" {
		log.Warn().Msg("API token authentication is disabled, set Webserver.APITokenHash to enable it")

		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	v := &verifier{hash: hash}

	return func(c *fiber.Ctx) error {
		tok, ok := bearer(c.Get(fiber.HeaderAuthorization))
		if !ok {
			c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="api"`)
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		match, err := v.verify(tok)
		if err != nil {
			return err
		}

		if !match {
			log.Warn().Str("ip", c.IP()).Str("path", c.Path()).Msg("rejected API token")
			c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="api", error="invalid_token"`)

			return fiber.NewError(fiber.StatusUnauthorized, "invalid bearer token")
		}

		return c.Next()
	}
}

// verifier remembers the last accepted token so argon2id runs once per token
// and not on every request.
type verifier struct {
	hash string

	mu       sync.RWMutex
	accepted []byte
}

func (v *verifier) verify(tok string) (bool, error) {
	v.mu.RLock()
	known := v.accepted != nil && subtle.ConstantTimeCompare(v.accepted, []byte(tok)) == 1
	v.mu.RUnlock()

	if known {
		return true, nil
	}

	match, err := token.Verify(tok, v.hash)
	if err != nil || !match {
		return false, err //nolint:wrapcheck
	}

	v.mu.Lock()
	v.accepted = []byte(tok)
	v.mu.Unlock()

	return true, nil
}

func bearer(header string) (string, bool) {
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	tok := strings.TrimSpace(header[len(bearerPrefix):])

	return tok, tok != ""
}
