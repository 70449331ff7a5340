// Package auth provides the auth bounded context module.
package auth

import (
	"carmarket_backend/internal/auth/handler"
	"carmarket_backend/internal/auth/repository"
	"carmarket_backend/internal/auth/service"
	"carmarket_backend/internal/events"
	apphttp "carmarket_backend/internal/http"
	"carmarket_backend/platform/config"
	"carmarket_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, bus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, bus, log)
	h := handler.New(svc)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Credential endpoints get the stricter per-IP limiter.
	authGroup := ctx.V1.Group("/auth")
	authGroup.POST("/register", ctx.AuthRateLimiter, m.handler.Register)
	authGroup.POST("/login", ctx.AuthRateLimiter, m.handler.Login)
	authGroup.POST("/refresh", ctx.AuthRateLimiter, m.handler.Refresh)
	authGroup.POST("/logout", m.handler.Logout)

	ctx.Protected.GET("/auth/me", m.handler.Me)

	ctx.Admin.GET("/users", m.handler.AdminListUsers)
	ctx.Admin.DELETE("/users/:id", m.handler.AdminDeleteUser)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
