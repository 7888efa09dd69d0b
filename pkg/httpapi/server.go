// Package httpapi implements the optional HTTP submission endpoint (§6)
// used by third-party integrators: a single unauthenticated POST route that
// analyzes one already-captured HTTP exchange for reflected/executed XSS,
// plus health and metrics routes.
//
// Grounded on the teacher's api/server.go fiber app wiring (CORS,
// fiberzerolog, swagger docs route, fiber/middleware/monitor's /metrics),
// stripped of JWT auth, TLS, the gorm-backed scan engine and db.InitDb()
// since this endpoint is a single integration surface, not a multi-tenant
// dashboard API — see DESIGN.md.
package httpapi

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/fiberzerolog"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fibermonitor "github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/swagger"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/ravensec/xssentinel/pkg/browser"
	_ "github.com/ravensec/xssentinel/pkg/httpapi/docs"
	"github.com/ravensec/xssentinel/pkg/http_utils"
)

// Version is set at build time via -ldflags; left as a default for
// unreleased builds.
var Version = "dev"

// Server bundles the fiber app with the state its handlers close over.
type Server struct {
	App *fiber.App

	sessions    *browser.Manager
	limiter     *http_utils.IPRateLimiter
	startedAt   time.Time
	activeGauge *activeRequestGauge
}

// New builds the fiber app and registers every route named in §6.
func New(sessions *browser.Manager, logger zerolog.Logger) *Server {
	s := &Server{
		App:         fiber.New(fiber.Config{AppName: "xssentinel API", ServerHeader: "xssentinel"}),
		sessions:    sessions,
		limiter:     http_utils.NewIPRateLimiter(viper.GetFloat64("api.rateLimit.perSecond"), viper.GetFloat64("api.rateLimit.burst")),
		startedAt:   time.Now(),
		activeGauge: &activeRequestGauge{},
	}

	s.App.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(viper.GetStringSlice("api.cors.origins"), ","),
		AllowHeaders:  "Origin, Content-Type, Accept",
		ExposeHeaders: "Content-Disposition",
	}))
	s.App.Use(fiberzerolog.New(fiberzerolog.Config{Logger: &logger}))
	s.App.Use(s.rateLimit)

	if viper.GetBool("api.docs.enabled") {
		s.App.Get(fmt.Sprintf("%v/*", viper.GetString("api.docs.path")), swagger.HandlerDefault)
	}
	if viper.GetBool("api.metrics.enabled") {
		s.App.Get("/metrics", fibermonitor.New(fibermonitor.Config{Title: "xssentinel metrics"}))
	}

	s.App.Post("/", s.handleSubmission)
	s.App.Get("/health", s.handleHealth)

	return s
}

// rateLimit enforces the per-IP 429 + Retry-After contract ahead of every
// route, using the same TokenBucket the teacher built for outbound host
// throttling, reused here for inbound requests.
func (s *Server) rateLimit(c *fiber.Ctx) error {
	allowed, retryAfter := s.limiter.Allow(c.IP())
	if !allowed {
		c.Set("Retry-After", fmt.Sprintf("%.0f", retryAfter.Seconds()))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"value":      0,
			"msg":        "rate limit exceeded",
			"retryAfter": retryAfter.Seconds(),
		})
	}
	return c.Next()
}

// activeRequestGauge tracks the in-flight submission count reported by
// /health, without pulling in a dedicated metrics library beyond what
// fiber/middleware/monitor already provides for /metrics.
type activeRequestGauge struct {
	count atomic.Int64
}

func (g *activeRequestGauge) inc() int64 { return g.count.Add(1) }
func (g *activeRequestGauge) dec()       { g.count.Add(-1) }
func (g *activeRequestGauge) value() int64 { return g.count.Load() }

// Listen blocks serving on api.listen.{host,port}.
func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", viper.GetString("api.listen.host"), viper.GetInt("api.listen.port"))
	return s.App.Listen(addr)
}
