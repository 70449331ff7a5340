// Package listings provides the car listings bounded context module.
package listings

import (
	"carmarket_backend/internal/events"
	apphttp "carmarket_backend/internal/http"
	"carmarket_backend/internal/listings/handler"
	"carmarket_backend/internal/listings/repository"
	"carmarket_backend/internal/listings/service"
	"carmarket_backend/internal/storage"
	"carmarket_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the listings bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the listings module.
func NewModule(pool *pgxpool.Pool, storageSvc storage.Service, bucket string, bus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, storageSvc, bucket, bus, log)
	h := handler.New(svc)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "listings"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts listings routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public read endpoints, throttled per client IP and endpoint bucket.
	ctx.V1.GET("/cars", ctx.RateLimit("search"), m.handler.SearchCars)
	ctx.V1.GET("/cars/:id", ctx.RateLimit("detail"), m.handler.GetCar)

	// Seller endpoints.
	ctx.Protected.POST("/cars", m.handler.CreateCar)
	ctx.Protected.PUT("/cars/:id", m.handler.UpdateCar)
	ctx.Protected.DELETE("/cars/:id", m.handler.DeleteCar)
	ctx.Protected.POST("/cars/:id/images/presign", m.handler.PresignImageUpload)
	ctx.Protected.POST("/cars/:id/images", m.handler.AttachImage)

	// Dashboard endpoints.
	ctx.Admin.POST("/cars/list", m.handler.AdminListCars)
	ctx.Admin.DELETE("/cars/:id", m.handler.AdminDeleteCar)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
