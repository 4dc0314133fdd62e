package auth_test

import (
	"net/http/httptest"
	"testing"

	"s3-client/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(cfg auth.Config) *fiber.App {
	app := fiber.New()
	app.Use(auth.New(cfg))
	app.Get("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name    string
		cfg     auth.Config
		path    string
		headers map[string]string
		want    int
	}{
		{"Disabled", auth.Config{}, "/buckets", nil, fiber.StatusOK},
		{"MissingKey", auth.Config{ApiKey: "k"}, "/buckets", nil, fiber.StatusUnauthorized},
		{"WrongKey", auth.Config{ApiKey: "k"}, "/buckets", map[string]string{auth.Header: "x"}, fiber.StatusUnauthorized},
		{"HeaderKey", auth.Config{ApiKey: "k"}, "/buckets", map[string]string{auth.Header: "k"}, fiber.StatusOK},
		{"BearerKey", auth.Config{ApiKey: "k"}, "/buckets", map[string]string{"Authorization": "Bearer k"}, fiber.StatusOK},
		{"SkippedPath", auth.Config{ApiKey: "k", Skip: []string{"/metrics"}}, "/metrics", nil, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			resp, err := setupApp(tt.cfg).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
