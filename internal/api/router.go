package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/authhub/identity-service/internal/api/handler"
	"github.com/authhub/identity-service/internal/api/middleware"
	"github.com/authhub/identity-service/internal/core/ports"
	"github.com/authhub/identity-service/internal/core/token"
)

// RouterDeps carries the constructed collaborators the router wires into
// handlers and middleware. Lifecycle (connections, mail workers) is owned
// by the caller.
type RouterDeps struct {
	AuthService ports.AuthService
	Users       ports.UserRepository
	Codec       *token.Codec
	CookieName  string
	Mongo       *mongo.Database
	Redis       *redis.Client
	Log         zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("identity"))

	authenticated := middleware.CurrentUser(deps.Codec, deps.Users, deps.CookieName)
	adminOnly := middleware.RequireAdmin()

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.AuthService, deps.CookieName)
	e.POST("/auth/register", authHandler.Register)
	e.GET("/auth/confirm", authHandler.Confirm)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.GET("/auth/logout", authHandler.Logout, authenticated)

	// --- User routes ---
	userHandler := handler.NewUserHandler(deps.AuthService)
	e.GET("/users/me", userHandler.Me, authenticated)
	e.PATCH("/users/me", userHandler.UpdateMe, authenticated)
	e.GET("/users/all_users", userHandler.AllUsers, authenticated, adminOnly)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
