// Package handler exposes the listings HTTP endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carmarket_backend/internal/listings/query"
	"carmarket_backend/internal/listings/service"
	"carmarket_backend/internal/listings/transport"
	"carmarket_backend/platform/httpkit"
)

const msgInvalidRequest = "invalid request"

// Handler handles HTTP requests for listings.
type Handler struct {
	svc *service.Service
}

// New creates a new listings handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// SearchCars runs a filtered, paginated search over listings.
// GET /api/v1/cars
func (h *Handler) SearchCars(c *gin.Context) {
	params := query.Params{
		Text:         c.Query("q"),
		FuelType:     c.Query("fuel"),
		Transmission: c.Query("transmission"),
		CarClass:     c.Query("class"),
		MinPrice:     c.Query("minPrice"),
		MaxPrice:     c.Query("maxPrice"),
		MinYear:      c.Query("minYear"),
		MaxYear:      c.Query("maxYear"),
		Page:         c.Query("page"),
		Limit:        c.Query("limit"),
		Sort:         c.Query("sort"),
		Order:        c.Query("order"),
	}

	result, err := h.svc.Search(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetCar returns the full detail record for one listing.
// GET /api/v1/cars/:id
func (h *Handler) GetCar(c *gin.Context) {
	result, err := h.svc.GetCar(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateCar posts a new listing for the authenticated seller.
// POST /api/v1/cars
func (h *Handler) CreateCar(c *gin.Context) {
	var req transport.CreateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.CreateCar(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// UpdateCar applies a partial update to the seller's own listing.
// PUT /api/v1/cars/:id
func (h *Handler) UpdateCar(c *gin.Context) {
	var req transport.UpdateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.UpdateCar(c.Request.Context(), identity.UserID(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteCar removes the seller's own listing.
// DELETE /api/v1/cars/:id
func (h *Handler) DeleteCar(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	err := h.svc.DeleteCar(c.Request.Context(), identity.UserID(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"success": true})
}

// PresignImageUpload returns a direct-to-storage upload URL for a gallery image.
// POST /api/v1/cars/:id/images/presign
func (h *Handler) PresignImageUpload(c *gin.Context) {
	var req transport.PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.PresignImageUpload(c.Request.Context(), identity.UserID(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AttachImage registers an uploaded object on the seller's listing.
// POST /api/v1/cars/:id/images
func (h *Handler) AttachImage(c *gin.Context) {
	var req transport.AttachImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	err := h.svc.AttachImage(c.Request.Context(), identity.UserID(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, gin.H{"success": true})
}

// AdminListCars returns the dashboard listing page with counters.
// POST /api/v1/admin/cars/list
func (h *Handler) AdminListCars(c *gin.Context) {
	var req transport.AdminListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.AdminList(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AdminDeleteCar removes any listing regardless of ownership.
// DELETE /api/v1/admin/cars/:id
func (h *Handler) AdminDeleteCar(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	err := h.svc.AdminDeleteCar(c.Request.Context(), identity.UserID(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"success": true})
}
