package fiber_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSiteSettings/GoSiteSettings/internal/logger"
	adapter "github.com/GoSiteSettings/GoSiteSettings/internal/logger/adapter/fiber"
)

// accessLine is the JSON form of one access log line.
type accessLine struct {
	IP             string  `json:"IP"`
	Status         int     `json:"status"`
	XPerformance   float64 `json:"X-Performance"`
	URI            string  `json:"URI"`
	Method         string  `json:"method"`
	Host           string  `json:"host"`
	AcceptLanguage string  `json:"Accept-Language"`
	Language       string  `json:"language"`
	Component      string  `json:"component"`
	Error          string  `json:"error"`
}

var errKeyNotFound = errors.New("key not found")

func newTestApp(cfg adapter.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		Immutable:     true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, errKeyNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
			}

			return fiber.DefaultErrorHandler(c, err)
		},
	})

	app.Use(adapter.New(cfg))

	app.Get("/checkalive", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendString("# metrics")
	})

	app.Get("/api/settings", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentLanguage, "fr")
		return c.JSON(fiber.Map{"settings": []string{}, "has_more": false})
	})

	app.Get("/api/keys/:id", func(_ *fiber.Ctx) error {
		return errKeyNotFound
	})

	return app
}

// request runs one request and returns the logged lines.
func request(t *testing.T, cfg adapter.Config, target string, headers ...string) (*httptest.ResponseRecorder, []accessLine) {
	t.Helper()

	var buf bytes.Buffer

	cfg.Output = &buf

	req := httptest.NewRequest(fiber.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := newTestApp(cfg).Test(req, -1)
	require.NoError(t, err)

	defer resp.Body.Close()

	rec := httptest.NewRecorder()
	rec.Code = resp.StatusCode

	for k, v := range resp.Header {
		rec.Header()[k] = v
	}

	_, err = io.Copy(rec.Body, resp.Body)
	require.NoError(t, err)

	var lines []accessLine

	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}

		var line accessLine
		require.NoError(t, json.Unmarshal([]byte(raw), &line), "line: %s", raw)

		lines = append(lines, line)
	}

	return rec, lines
}

func TestNew(t *testing.T) {
	skipHealth := adapter.Config{
		Config:    logger.Log{DisableCheckAlive: true},
		SkipPaths: []string{"/checkalive", "/metrics"},
	}

	testCases := []struct {
		name           string
		config         adapter.Config
		target         string
		headers        []string
		expectedStatus int
		expected       *accessLine
	}{
		{
			name:           "settings list with filters",
			target:         "/api/settings?site=1&key=site_title",
			headers:        []string{fiber.HeaderAcceptLanguage, "fr-FR,fr;q=0.9"},
			expectedStatus: fiber.StatusOK,
			expected: &accessLine{
				IP:             "0.0.0.0",
				Status:         fiber.StatusOK,
				URI:            "/api/settings?site=1&key=site_title",
				Method:         fiber.MethodGet,
				Host:           "example.com",
				AcceptLanguage: "fr-FR,fr;q=0.9",
				Language:       "fr",
				Component:      "access",
			},
		},
		{
			name:           "handler error is logged with the rendered status",
			target:         "/api/keys/42",
			expectedStatus: fiber.StatusNotFound,
			expected: &accessLine{
				IP:        "0.0.0.0",
				Status:    fiber.StatusNotFound,
				URI:       "/api/keys/42",
				Method:    fiber.MethodGet,
				Host:      "example.com",
				Component: "access",
				Error:     "key not found",
			},
		},
		{
			name:           "unknown route",
			target:         "/api/nothing",
			expectedStatus: fiber.StatusNotFound,
			expected: &accessLine{
				IP:        "0.0.0.0",
				Status:    fiber.StatusNotFound,
				URI:       "/api/nothing",
				Method:    fiber.MethodGet,
				Host:      "example.com",
				Component: "access",
				Error:     "Cannot GET /api/nothing",
			},
		},
		{
			name:           "check alive is skipped",
			config:         skipHealth,
			target:         "/checkalive",
			expectedStatus: fiber.StatusOK,
		},
		{
			name:           "metrics with a query are skipped",
			config:         skipHealth,
			target:         "/metrics?name[]=site_settings_writes_total",
			expectedStatus: fiber.StatusOK,
		},
		{
			name:           "api calls are logged while health checks are skipped",
			config:         skipHealth,
			target:         "/api/settings",
			expectedStatus: fiber.StatusOK,
			expected: &accessLine{
				IP:        "0.0.0.0",
				Status:    fiber.StatusOK,
				URI:       "/api/settings",
				Method:    fiber.MethodGet,
				Host:      "example.com",
				Language:  "fr",
				Component: "access",
			},
		},
		{
			name:           "check alive is logged without DisableCheckAlive",
			config:         adapter.Config{SkipPaths: []string{"/checkalive"}},
			target:         "/checkalive",
			expectedStatus: fiber.StatusOK,
			expected: &accessLine{
				IP:        "0.0.0.0",
				Status:    fiber.StatusOK,
				URI:       "/checkalive",
				Method:    fiber.MethodGet,
				Host:      "example.com",
				Component: "access",
			},
		},
		{
			name:           "next skips the middleware",
			config:         adapter.Config{Next: func(*fiber.Ctx) bool { return true }},
			target:         "/api/settings",
			expectedStatus: fiber.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, lines := request(t, tc.config, tc.target, tc.headers...)
			assert.Equal(t, tc.expectedStatus, rec.Code)

			if tc.expected == nil {
				assert.Empty(t, lines)
				return
			}

			require.Len(t, lines, 1)

			got := lines[0]
			assert.GreaterOrEqual(t, got.XPerformance, float64(0))
			assert.NotEmpty(t, rec.Header().Get("X-Performance"))

			got.XPerformance = 0
			assert.Equal(t, *tc.expected, got)
		})
	}
}

func TestAccessFile(t *testing.T) {
	dir := t.TempDir()

	cfg := adapter.Config{Config: logger.Log{
		File: logger.LogFile{Enabled: true, Path: dir, AccessLog: "access.log", AccessMaxSize: 1},
	}}

	rec, lines := request(t, cfg, "/api/settings")
	require.Equal(t, fiber.StatusOK, rec.Code)
	require.Len(t, lines, 1)

	raw, err := os.ReadFile(filepath.Join(dir, "access.log"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"URI":"/api/settings"`)
	assert.Contains(t, string(raw), `"component":"access"`)
}

func TestAccessFileWithoutName(t *testing.T) {
	cfg := adapter.Config{Config: logger.Log{
		File: logger.LogFile{Enabled: true, Path: t.TempDir()},
	}}

	rec, lines := request(t, cfg, "/api/settings")
	assert.Equal(t, fiber.StatusOK, rec.Code)
	assert.Len(t, lines, 1, "the other outputs keep working")
}
