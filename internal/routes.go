package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	v1 "linkdeck/api/v1"
	"linkdeck/internal/config"
	"linkdeck/internal/http"
)

// publicCORSConfig is shared by the public profile and redirect endpoints.
// Profiles are meant to be embeddable, so cross-origin reads are open.
var publicCORSConfig = &cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Authorization, Referrer, User-Agent",
}

// SetupSession configures session management on the server.
func SetupSession(srv *cartridge.Server) {
	cfg := config.GetConfig()
	sessionMgr := cartridge.NewSessionManager(cartridge.SessionConfig{
		CookieName: cfg.AppName + "_session",
		Secret:     cfg.GetSessionSecret(),
		TTL:        time.Duration(cfg.GetLoginSessionTimeout()) * time.Second,
		Secure:     cfg.IsProduction(),
		LoginPath:  "/login",
	})
	srv.SetSession(sessionMgr)
}

// MountAppRoutes mounts all application routes using cartridge's route API
func MountAppRoutes(srv *cartridge.Server) {
	SetupSession(srv)

	cfg := config.GetConfig()
	sessionMgr := srv.Session()

	// Rate limiting only bites in production; in development and test it
	// would interfere with rapid iteration.
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	// Public profile reads and click redirects (120 requests per minute per IP)
	publicRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(120),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	// Stricter limit on auth endpoints to slow down brute force attempts
	authRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(10),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	// CORS runs first so rejected requests still carry CORS headers
	publicAPIConfig := &cartridge.RouteConfig{
		EnableCORS:       true,
		WriteConcurrency: false,
		CustomMiddleware: []fiber.Handler{publicRateLimiter},
		CORSConfig:       publicCORSConfig,
	}

	// Redirects record a click, so they take the write path
	redirectConfig := &cartridge.RouteConfig{
		EnableCORS:         true,
		WriteConcurrency:   true,
		CustomMiddleware:   []fiber.Handler{publicRateLimiter},
		CORSConfig:         publicCORSConfig,
		EnableSecFetchSite: cartridge.Bool(false),
	}

	adminAPIConfig := &cartridge.RouteConfig{
		CustomMiddleware: []fiber.Handler{
			sessionMgr.Middleware(),
		},
	}

	loginConfig := &cartridge.RouteConfig{
		CustomMiddleware: []fiber.Handler{authRateLimiter},
	}

	// === ROOT ROUTES ===
	srv.Get("/_health", http.HealthIndexAction)
	srv.Head("/_health", http.HealthIndexAction)

	// === PUBLIC API ROUTES ===
	srv.Get("/x/api/v1/profiles/:username", v1.GetPublicProfileHandler, publicAPIConfig)
	srv.Options("/x/api/v1/profiles/:username", func(ctx *cartridge.Context) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	}, publicAPIConfig)

	// Tracked redirect: records the click, then 302s to the target URL
	srv.Get("/r/:id", v1.RedirectLinkHandler, redirectConfig)

	// === AUTHENTICATION ROUTES ===
	srv.Post("/login", http.ProcessLoginAction, loginConfig)
	srv.Post("/logout", http.LogoutAction)

	// === EDITOR API ROUTES ===
	srv.Get("/admin/api/editor", http.EditorHydrateAction, adminAPIConfig)
	srv.Post("/admin/api/editor/draft", http.EditorUpdateDraftAction, adminAPIConfig)
	srv.Post("/admin/api/editor/save", http.EditorSaveAction, adminAPIConfig)
	srv.Post("/admin/api/editor/discard", http.EditorDiscardAction, adminAPIConfig)
	srv.Post("/admin/api/editor/keep", http.EditorKeepDraftAction, adminAPIConfig)

	// === STATS API ROUTES ===
	srv.Get("/admin/api/stats/profile", http.ProfileStatsAction, adminAPIConfig)
	srv.Get("/admin/api/stats/links/:id", http.LinkStatsAction, adminAPIConfig)
	srv.Get("/admin/api/stats/counts", http.LinksClickCountsAction, adminAPIConfig)

	// === ACCOUNT ROUTES ===
	srv.Post("/admin/api/account/change-password", http.ChangePasswordAction, adminAPIConfig)
}
