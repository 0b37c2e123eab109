package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"

	"github.com/samirrijal/markermap/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers the map page, REST and GraphQL routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	app.Use(AccessLogMiddleware())

	// Rate limiting: 300 requests per minute per IP. The editor page sends
	// one request per keystroke in the search box.
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	app.Get("/", PageHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/map/config", MapConfigHandler(deps))

	// Static marker paths are registered before /:id.
	v1.Get("/markers", timeout.NewWithContext(ListMarkersHandler(deps), requestTimeout))
	v1.Post("/markers", timeout.NewWithContext(CreateMarkerHandler(deps), requestTimeout))
	v1.Get("/markers/bounds", timeout.NewWithContext(BoundsHandler(deps), requestTimeout))
	v1.Get("/markers/nearby", timeout.NewWithContext(NearbyMarkersHandler(deps), requestTimeout))
	v1.Post("/markers/save", timeout.NewWithContext(SaveMarkersHandler(deps), requestTimeout))
	v1.Get("/markers/:id", timeout.NewWithContext(GetMarkerHandler(deps), requestTimeout))
	v1.Put("/markers/:id", timeout.NewWithContext(UpdateMarkerHandler(deps), requestTimeout))
	v1.Delete("/markers/:id", timeout.NewWithContext(DeleteMarkerHandler(deps), requestTimeout))

	v1.Get("/editor", GetEditorHandler(deps))
	v1.Post("/editor/events", timeout.NewWithContext(EditorEventHandler(deps), requestTimeout))

	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), requestTimeout))

	// API documentation (Swagger UI)
	SetupDocs(app)
}
