package messages

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"carmarket_backend/internal/events"
	apphttp "carmarket_backend/internal/http"
	"carmarket_backend/internal/listings/query"
	"carmarket_backend/platform/apperr"
	"carmarket_backend/platform/httpkit"
)

// ContactRequest is the payload for messaging a seller.
type ContactRequest struct {
	Body string `json:"body" binding:"required,min=1,max=4000"`
}

// MessageView is the wire form of a message.
type MessageView struct {
	ID          string `json:"id"`
	CarID       string `json:"carId"`
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId"`
	Body        string `json:"body"`
	CreatedAt   string `json:"createdAt"`
}

// ListResponse is the paginated message envelope.
type ListResponse struct {
	Messages   []MessageView `json:"messages"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"totalPages"`
}

// Module is the messages bounded context module implementing http.Module.
type Module struct {
	repo    Repository
	service *Service
}

// NewModule creates and initializes the messages module.
func NewModule(pool *pgxpool.Pool, bus events.Bus) *Module {
	repo := NewRepo(pool)
	return &Module{repo: repo, service: NewService(repo, bus)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "messages"
}

// RegisterRoutes mounts message routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/cars/:id/contact", m.contactSeller)
	ctx.Protected.GET("/messages", m.listMine)

	ctx.Admin.GET("/messages", m.adminList)
	ctx.Admin.DELETE("/messages/:id", m.adminDelete)
}

// contactSeller sends a message about a listing to its seller.
// POST /api/v1/cars/:id/contact
func (m *Module) contactSeller(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	msg, err := m.service.ContactSeller(c.Request.Context(), identity.UserID(), c.Param("id"), req.Body)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toView(msg))
}

// listMine pages through the user's sent and received messages.
// GET /api/v1/messages
func (m *Module) listMine(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	page, limit := pageParams(c)

	items, total, err := m.repo.ListForUser(c.Request.Context(), identity.UserID(), limit, (page-1)*limit)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "Error listing messages", nil)
		return
	}
	httpkit.OK(c, toListResponse(items, total, page, limit))
}

// adminList pages through all messages for the dashboard.
// GET /api/v1/admin/messages
func (m *Module) adminList(c *gin.Context) {
	page, limit := pageParams(c)

	items, total, err := m.repo.AdminList(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "Error listing messages", nil)
		return
	}
	httpkit.OK(c, toListResponse(items, total, page, limit))
}

// adminDelete removes a message.
// DELETE /api/v1/admin/messages/:id
func (m *Module) adminDelete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid message id"))
		return
	}

	if httpkit.HandleError(c, m.repo.Delete(c.Request.Context(), id)) {
		return
	}
	httpkit.OK(c, gin.H{"success": true})
}

func pageParams(c *gin.Context) (int, int) {
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
	return page, limit
}

func toView(msg Message) MessageView {
	return MessageView{
		ID:          msg.ID.String(),
		CarID:       msg.CarID.String(),
		SenderID:    msg.SenderID.String(),
		RecipientID: msg.RecipientID.String(),
		Body:        msg.Body,
		CreatedAt:   msg.CreatedAt.Format(time.RFC3339),
	}
}

func toListResponse(items []Message, total int64, page, limit int) ListResponse {
	views := make([]MessageView, 0, len(items))
	for _, msg := range items {
		views = append(views, toView(msg))
	}
	return ListResponse{
		Messages:   views,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: query.TotalPages(total, limit),
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
