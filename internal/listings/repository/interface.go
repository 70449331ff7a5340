package repository

import (
	"context"
	"time"

	"carmarket_backend/internal/listings/query"

	"github.com/google/uuid"
)

// Car is a listing record as stored.
type Car struct {
	ID           uuid.UUID
	SellerID     uuid.UUID
	Make         string
	Model        string
	Year         int
	Price        int64
	Mileage      int
	FuelType     string
	Transmission string
	CarClass     string
	Description  string
	Images       []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateCarParams holds the fields for a new listing.
type CreateCarParams struct {
	SellerID     uuid.UUID
	Make         string
	Model        string
	Year         int
	Price        int64
	Mileage      int
	FuelType     string
	Transmission string
	CarClass     string
	Description  string
}

// UpdateCarParams holds a partial update. Nil fields are left unchanged.
type UpdateCarParams struct {
	ID          uuid.UUID
	SellerID    uuid.UUID
	Price       *int64
	Mileage     *int
	Description *string
}

// AdminListParams drives the dashboard listing page.
type AdminListParams struct {
	Page   int
	Limit  int
	Sort   string
	Offset int
}

// AdminListResult carries the dashboard page plus its headline counters.
type AdminListResult struct {
	Cars           []Car
	TotalPosts     int64
	LastMonthPosts int64
}

// Repository defines persistence operations for car listings.
type Repository interface {
	// Search runs the count and page queries for a built filter and
	// returns the page plus the full match count.
	Search(ctx context.Context, spec query.SQL) ([]Car, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Car, error)
	Create(ctx context.Context, params CreateCarParams) (Car, error)
	Update(ctx context.Context, params UpdateCarParams) (Car, error)
	// Delete removes a listing. A nil sellerID skips the ownership check
	// (administrative delete).
	Delete(ctx context.Context, id uuid.UUID, sellerID *uuid.UUID) error
	AdminList(ctx context.Context, params AdminListParams) (AdminListResult, error)
	AttachImage(ctx context.Context, carID, sellerID uuid.UUID, objectKey string) error
}
