// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/mihaja/univ-housing/internal/config"
	"github.com/mihaja/univ-housing/internal/handler"
	"github.com/mihaja/univ-housing/internal/middleware"
	"github.com/mihaja/univ-housing/internal/model"
)

// RegisterRoutes registers routes that require no authentication.
// Currently only the health check used by probes and load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the signup, login and token exchange routes
// under /v1/auth, plus the authenticated /v1/me identity echo. Signup
// is matricule-gated; logins are split per role so a student token can
// never reach the back office.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	g.POST("/admin-login", a.AdminLogin)
	// Refresh rotates the refresh token; refresh-access only reissues
	// the short-lived access token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout takes the refresh token in the body, no JWT required.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleStudent))
	auth.GET("/me", a.Me)
}

// RegisterStudent registers the student-facing surface: own profile,
// browsable rooms, reservations and payments. The room listing is the
// hottest read so it additionally goes through the Redis response cache
// and the token bucket rate limiter; rdb may be nil, both middlewares
// then pass requests straight through.
func RegisterStudent(e *echo.Echo, jwtSecret string, rdb *redis.Client,
	pr *handler.ProfileHandler, rb *handler.RoomBrowseHandler,
	rs *handler.ReservationHandler, pay *handler.PaymentHandler) {

	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleStudent))

	g.GET("/profile", pr.GetProfile)
	g.PUT("/profile", pr.UpdateProfile)

	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	rateMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	g.GET("/rooms", rb.ListAvailable, rateMW, cacheMW)

	g.GET("/reservations", rs.List)
	g.POST("/reservations", rs.Create)

	g.GET("/payments", pay.List)
	g.POST("/payments", pay.Create)
}

// RegisterAdmin registers the back office: matricule registry CRUD,
// room catalog CRUD and reservation cancellation, all behind the ADMIN
// role.
func RegisterAdmin(e *echo.Echo, jwtSecret string,
	m *handler.AdminMatriculeHandler, rm *handler.AdminRoomHandler,
	res *handler.AdminReservationHandler) {

	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	g.GET("/matricules", m.List)
	g.POST("/matricules", m.Create)
	g.GET("/matricules/:id", m.Get)
	g.PUT("/matricules/:id", m.Update)
	g.DELETE("/matricules/:id", m.Delete)
	g.POST("/matricules/unmark", m.Unmark)

	g.GET("/rooms", rm.List)
	g.POST("/rooms", rm.Create)
	g.GET("/rooms/:id", rm.Get)
	g.PUT("/rooms/:id", rm.Update)
	g.DELETE("/rooms/:id", rm.Delete)
	g.POST("/rooms/mark-available", rm.MarkAvailable)

	g.POST("/reservations/:id/cancel", res.Cancel)
}
