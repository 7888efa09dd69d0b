package httpapi

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/ravensec/xssentinel/pkg/http_utils"
)

func TestRateLimitReturns429WithRetryAfter(t *testing.T) {
	s := &Server{
		App:         fiber.New(),
		limiter:     http_utils.NewIPRateLimiter(1, 1),
		activeGauge: &activeRequestGauge{},
	}
	s.App.Use(s.rateLimit)
	s.App.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	req := httptest.NewRequest(fiber.MethodGet, "/ping", nil)
	first, err := s.App.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, first.StatusCode)

	req2 := httptest.NewRequest(fiber.MethodGet, "/ping", nil)
	second, err := s.App.Test(req2)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, second.StatusCode)
	require.NotEmpty(t, second.Header.Get("Retry-After"))
}
