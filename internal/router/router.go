package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework
	"github.com/redis/go-redis/v9"

	"github.com/realmeet/checkin-service/internal/config"
	"github.com/realmeet/checkin-service/internal/handler"    // handlers implementing business logic
	"github.com/realmeet/checkin-service/internal/middleware" // auth and rate-limit middleware
	"github.com/realmeet/checkin-service/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring probe this endpoint.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the partner authentication routes.  Login is
// unauthenticated (but rate limited); logout and me require a live partner
// session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, rl config.RateLimits, rdb *redis.Client) {
	g := e.Group("/api/auth")
	// Brute-force protection on login, keyed by client IP.
	g.POST("/login", a.Login, middleware.RateLimit(rl.Login, rl.Enabled, rdb))

	authed := e.Group("/api/auth",
		middleware.PartnerAuth(a.Cfg.PartnerSecret, a.Sessions, a.Profiles),
	)
	authed.POST("/logout", a.Logout)
	authed.GET("/me", a.Me)
}

// RegisterParticipant registers the participant-facing endpoint.  The
// participant authenticates with a platform access token; issuance is rate
// limited per user so a misbehaving client cannot hammer the database.
func RegisterParticipant(e *echo.Echo, h *handler.CheckinHandler, accessSecret string, rl config.RateLimits, rdb *redis.Client) {
	g := e.Group("/api/checkin",
		middleware.ParticipantAuth(accessSecret),
		middleware.RateLimit(rl.Issue, rl.Enabled, rdb),
	)
	g.POST("/generate-token", h.GenerateToken)
}

// RegisterStaff registers the scanner and dashboard endpoints.  Every route
// requires a live partner session; verify/validate are additionally rate
// limited since they face scanned, attacker-controllable input.
func RegisterStaff(e *echo.Echo, sc *handler.StaffCheckinHandler, ss *handler.StaffSlotsHandler,
	partnerSecret string, sessions *repository.SessionRepo, profiles *repository.ProfileRepo,
	rl config.RateLimits, rdb *redis.Client) {

	g := e.Group("/api/checkin",
		middleware.PartnerAuth(partnerSecret, sessions, profiles),
	)

	scan := middleware.RateLimit(rl.Validate, rl.Enabled, rdb)
	g.POST("/verify", sc.Verify, scan)
	g.POST("/validate", sc.Validate, scan)

	g.GET("/slot-status/:slotId", ss.SlotStatus)
	g.GET("/today-slots", ss.TodaySlots)
}
