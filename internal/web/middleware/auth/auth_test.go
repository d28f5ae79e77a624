package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSiteSettings/GoSiteSettings/internal/token"
)

func newApp(hash string) *fiber.App {
	app := fiber.New()
	app.Use(New(hash))
	app.Get("/api/keys", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	return app
}

func TestMiddleware(t *testing.T) {
	tok, err := token.Generate(token.DefaultLength)
	require.NoError(t, err)

	hash, err := token.Hash(tok)
	require.NoError(t, err)

	testCases := []struct {
		name           string
		hash           string
		header         string
		expectedStatus int
	}{
		{name: "auth disabled", hash: "", header: "", expectedStatus: http.StatusOK},
		{name: "missing header", hash: hash, header: "", expectedStatus: http.StatusUnauthorized},
		{name: "basic auth", hash: hash, header: "Basic dXNlcjpwYXNz", expectedStatus: http.StatusUnauthorized},
		{name: "empty bearer", hash: hash, header: "Bearer   ", expectedStatus: http.StatusUnauthorized},
		{name: "wrong token", hash: hash, header: "Bearer " + tok + "x", expectedStatus: http.StatusUnauthorized},
		{name: "valid token", hash: hash, header: "Bearer " + tok, expectedStatus: http.StatusOK},
		{name: "scheme is case insensitive", hash: hash, header: "bearer " + tok, expectedStatus: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := newApp(tc.hash)

			req := httptest.NewRequest(http.MethodGet, "/api/keys", nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)

			if tc.expectedStatus == http.StatusUnauthorized {
				assert.Contains(t, resp.Header.Get(fiber.HeaderWWWAuthenticate), "Bearer")
			}
		})
	}
}

func TestVerifierRemembersAcceptedToken(t *testing.T) {
	tok, err := token.Generate(token.DefaultLength)
	require.NoError(t, err)

	hash, err := token.Hash(tok)
	require.NoError(t, err)

	v := &verifier{hash: hash}

	match, err := v.verify(tok)
	require.NoError(t, err)
	assert.True(t, match)
	assert.Equal(t, []byte(tok), v.accepted)

	match, err = v.verify("other")
	require.NoError(t, err)
	assert.False(t, match)
	assert.Equal(t, []byte(tok), v.accepted, "a rejected token does not replace the accepted one")
}
