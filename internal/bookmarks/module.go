package bookmarks

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "carmarket_backend/internal/http"
	"carmarket_backend/internal/listings/query"
	"carmarket_backend/platform/apperr"
	"carmarket_backend/platform/httpkit"
)

// BookmarkSummary is the wire form of a saved listing.
type BookmarkSummary struct {
	CarID        string `json:"carId"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Price        int64  `json:"price"`
	Image        string `json:"image,omitempty"`
	BookmarkedAt string `json:"bookmarkedAt"`
}

// ListResponse is the paginated bookmark envelope.
type ListResponse struct {
	Bookmarks  []BookmarkSummary `json:"bookmarks"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
}

// Module is the bookmarks bounded context module implementing http.Module.
type Module struct {
	repo Repository
}

// NewModule creates and initializes the bookmarks module.
func NewModule(pool *pgxpool.Pool) *Module {
	return &Module{repo: NewRepo(pool)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "bookmarks"
}

// RegisterRoutes mounts bookmark routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/bookmarks/:carId", m.toggle)
	ctx.Protected.GET("/bookmarks", m.list)
}

// toggle saves or removes a bookmark for the authenticated user.
// POST /api/v1/bookmarks/:carId
func (m *Module) toggle(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	carID, err := uuid.Parse(c.Param("carId"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid car id"))
		return
	}

	bookmarked, err := m.repo.Toggle(c.Request.Context(), identity.UserID(), carID)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "Error toggling bookmark", nil)
		return
	}
	httpkit.OK(c, gin.H{"bookmarked": bookmarked})
}

// list pages through the user's saved listings.
// GET /api/v1/bookmarks
func (m *Module) list(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	items, total, err := m.repo.List(c.Request.Context(), identity.UserID(), limit, (page-1)*limit)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "Error listing bookmarks", nil)
		return
	}

	summaries := make([]BookmarkSummary, 0, len(items))
	for _, item := range items {
		summary := BookmarkSummary{
			CarID:        item.CarID.String(),
			Make:         item.Make,
			Model:        item.Model,
			Year:         item.Year,
			Price:        item.Price,
			BookmarkedAt: item.BookmarkedAt.Format(time.RFC3339),
		}
		if item.FirstImage != nil {
			summary.Image = *item.FirstImage
		}
		summaries = append(summaries, summary)
	}

	httpkit.OK(c, ListResponse{
		Bookmarks:  summaries,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: query.TotalPages(total, limit),
	})
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
