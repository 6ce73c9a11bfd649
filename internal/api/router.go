package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sportsfed/console-gateway/internal/api/handler"
	"github.com/sportsfed/console-gateway/internal/api/middleware"
	"github.com/sportsfed/console-gateway/internal/core/domain"
	"github.com/sportsfed/console-gateway/internal/core/ports"
	"github.com/sportsfed/console-gateway/internal/upstream"
)

// protectedRoute binds a console path to its upstream resource and the access
// rule the guard evaluates. Rules are declarative data, never stored state.
type protectedRoute struct {
	path     string
	upstream string
	rule     domain.AccessRule
}

// adminOnly gates user/role management; everything else is open to any
// authenticated operator. The full five-tier taxonomy is used even though the
// login gate currently admits only super_admin, so the table keeps working if
// the gate is ever widened.
var protectedRoutes = []protectedRoute{
	{path: "/api/dashboard", upstream: "/dashboard", rule: domain.AccessRule{}},
	{path: "/api/tournaments", upstream: "/tournaments", rule: domain.AccessRule{}},
	{path: "/api/matches", upstream: "/matches", rule: domain.AccessRule{}},
	{path: "/api/academies", upstream: "/academies", rule: domain.AccessRule{}},
	{path: "/api/camps", upstream: "/camps", rule: domain.AccessRule{}},
	{path: "/api/users", upstream: "/users",
		rule: domain.AccessRule{Roles: []domain.AccessType{domain.AccessAdmin, domain.AccessSuperAdmin}}},
	{path: "/api/roles", upstream: "/roles",
		rule: domain.AccessRule{Roles: []domain.AccessType{domain.AccessSuperAdmin}, Permission: "roles.manage"}},
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(sessions ports.SessionManager, client *upstream.Client, rdb *redis.Client, db *mongo.Database, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("console"))

	// --- Session routes (unguarded: they manage the session itself) ---
	authHandler := handler.NewAuthHandler(sessions)
	e.POST("/login", authHandler.Login)
	e.POST("/register", authHandler.Register)
	e.POST("/logout", authHandler.Logout)
	e.GET("/session", authHandler.Session)

	// --- Protected resource views ---
	resources := handler.NewResourceHandler(client)
	for _, r := range protectedRoutes {
		guard := middleware.Guard(sessions, r.rule)
		e.GET(r.path, resources.List(r.upstream), guard)
		e.GET(r.path+"/:id", resources.Get(r.upstream), guard)
	}

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(rdb, db)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness)  // readiness – are backends up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
