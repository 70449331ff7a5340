// Package service implements the listings business logic.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"carmarket_backend/internal/events"
	"carmarket_backend/internal/listings/query"
	"carmarket_backend/internal/listings/repository"
	"carmarket_backend/internal/listings/transport"
	"carmarket_backend/internal/storage"
	"carmarket_backend/platform/apperr"
	"carmarket_backend/platform/logger"
)

const searchFailedMessage = "Error searching cars"

// Service provides listings operations.
type Service struct {
	repo    repository.Repository
	storage storage.Service
	bucket  string
	bus     events.Bus
	log     *logger.Logger
}

// New creates the listings service. The storage service may be nil when
// object storage is not configured; image endpoints then reject requests.
func New(repo repository.Repository, storageSvc storage.Service, bucket string, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		storage: storageSvc,
		bucket:  bucket,
		bus:     bus,
		log:     log,
	}
}

// Search validates raw search parameters, runs the query and shapes the
// paginated envelope. Validation failures short-circuit before any store
// access; a page beyond range yields an empty slice with accurate totals.
func (s *Service) Search(ctx context.Context, params query.Params) (*transport.SearchResponse, error) {
	q, fieldErrs := query.Parse(params, time.Now())
	if len(fieldErrs) > 0 {
		return nil, apperr.Validation("Invalid parameters").WithDetails(fieldErrs)
	}

	start := time.Now()
	cars, total, err := s.repo.Search(ctx, q.Build())
	if err != nil {
		s.log.DatabaseError("search cars", err)
		return nil, apperr.Internal(searchFailedMessage)
	}
	s.log.SearchExecuted(q.Text, int(total), float64(time.Since(start).Microseconds())/1000.0)

	summaries := make([]transport.CarSummary, 0, len(cars))
	for _, car := range cars {
		summaries = append(summaries, toSummary(car))
	}

	return &transport.SearchResponse{
		Cars:       summaries,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: query.TotalPages(total, q.Limit),
		Filters:    q.Filters(),
	}, nil
}

// GetCar returns the full listing with presigned gallery URLs.
func (s *Service) GetCar(ctx context.Context, id string) (*transport.CarDetail, error) {
	carID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.BadRequest("invalid car id")
	}

	car, err := s.repo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}

	detail := toDetail(car)
	detail.Images = s.resolveImageURLs(ctx, car.Images)
	return &detail, nil
}

// CreateCar posts a new listing for the seller and announces it on the bus.
func (s *Service) CreateCar(ctx context.Context, sellerID uuid.UUID, req transport.CreateCarRequest) (*transport.CarDetail, error) {
	fuel, ok := query.NormalizeFuelType(req.FuelType)
	if !ok {
		return nil, apperr.Validation("Invalid fuel type")
	}
	transmission, ok := query.NormalizeTransmission(req.Transmission)
	if !ok {
		return nil, apperr.Validation("Invalid transmission")
	}
	class, ok := query.NormalizeCarClass(req.CarClass)
	if !ok {
		return nil, apperr.Validation("Invalid car class")
	}
	if req.Year < query.MinYear || req.Year > time.Now().Year()+1 {
		return nil, apperr.Validation("Invalid year")
	}

	car, err := s.repo.Create(ctx, repository.CreateCarParams{
		SellerID:     sellerID,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		Price:        req.Price,
		Mileage:      req.Mileage,
		FuelType:     fuel,
		Transmission: transmission,
		CarClass:     class,
		Description:  req.Description,
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.CarCreated{
		BaseEvent: events.NewBaseEvent(),
		CarID:     car.ID,
		SellerID:  sellerID,
		Make:      car.Make,
		Model:     car.Model,
	})

	detail := toDetail(car)
	return &detail, nil
}

// UpdateCar applies a partial update, scoped to the owning seller.
func (s *Service) UpdateCar(ctx context.Context, sellerID uuid.UUID, id string, req transport.UpdateCarRequest) (*transport.CarDetail, error) {
	carID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.BadRequest("invalid car id")
	}

	car, err := s.repo.Update(ctx, repository.UpdateCarParams{
		ID:          carID,
		SellerID:    sellerID,
		Price:       req.Price,
		Mileage:     req.Mileage,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	detail := toDetail(car)
	detail.Images = s.resolveImageURLs(ctx, car.Images)
	return &detail, nil
}

// DeleteCar removes a seller's own listing along with its stored images.
func (s *Service) DeleteCar(ctx context.Context, sellerID uuid.UUID, id string) error {
	return s.deleteCar(ctx, id, &sellerID, sellerID)
}

// AdminDeleteCar removes any listing regardless of ownership.
func (s *Service) AdminDeleteCar(ctx context.Context, adminID uuid.UUID, id string) error {
	return s.deleteCar(ctx, id, nil, adminID)
}

func (s *Service) deleteCar(ctx context.Context, id string, sellerID *uuid.UUID, actor uuid.UUID) error {
	carID, err := uuid.Parse(id)
	if err != nil {
		return apperr.BadRequest("invalid car id")
	}

	// Collect gallery keys before the row (and its image rows) cascade away.
	car, err := s.repo.GetByID(ctx, carID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, carID, sellerID); err != nil {
		return err
	}

	if s.storage != nil {
		for _, key := range car.Images {
			if err := s.storage.DeleteObject(ctx, s.bucket, key); err != nil {
				s.log.Error("orphaned car image left in storage", "key", key, "error", err)
			}
		}
	}

	s.bus.Publish(ctx, events.CarDeleted{
		BaseEvent: events.NewBaseEvent(),
		CarID:     carID,
		DeletedBy: actor,
	})
	return nil
}

// AdminList returns the dashboard page with headline counters.
func (s *Service) AdminList(ctx context.Context, req transport.AdminListRequest) (*transport.AdminListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	result, err := s.repo.AdminList(ctx, repository.AdminListParams{
		Page:   page,
		Limit:  limit,
		Sort:   req.Sort,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		s.log.DatabaseError("admin list cars", err)
		return nil, apperr.Internal("Error listing cars")
	}

	items := make([]transport.CarSummary, 0, len(result.Cars))
	for _, car := range result.Cars {
		items = append(items, toSummary(car))
	}

	return &transport.AdminListResponse{
		Success:        true,
		Items:          items,
		TotalPosts:     result.TotalPosts,
		LastMonthPosts: result.LastMonthPosts,
		Pagination: transport.AdminPagination{
			Page:  page,
			Pages: query.TotalPages(result.TotalPosts, limit),
		},
	}, nil
}

// PresignImageUpload returns a direct-to-storage upload URL for a listing
// the seller owns.
func (s *Service) PresignImageUpload(ctx context.Context, sellerID uuid.UUID, id string, req transport.PresignUploadRequest) (*transport.PresignUploadResponse, error) {
	if s.storage == nil {
		return nil, apperr.Internal("image storage is not configured")
	}

	carID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.BadRequest("invalid car id")
	}
	car, err := s.repo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car.SellerID != sellerID {
		return nil, apperr.Forbidden("only the seller can manage images")
	}

	presigned, err := s.storage.GenerateUploadURL(ctx, s.bucket, carID.String(), req.FileName, req.ContentType, req.Size)
	if err != nil {
		return nil, err
	}

	return &transport.PresignUploadResponse{
		UploadURL: presigned.URL,
		ObjectKey: presigned.ObjectKey,
	}, nil
}

// AttachImage registers an uploaded object on the seller's listing.
func (s *Service) AttachImage(ctx context.Context, sellerID uuid.UUID, id string, req transport.AttachImageRequest) error {
	carID, err := uuid.Parse(id)
	if err != nil {
		return apperr.BadRequest("invalid car id")
	}
	return s.repo.AttachImage(ctx, carID, sellerID, req.ObjectKey)
}

// resolveImageURLs swaps object keys for presigned download URLs when
// storage is configured. A presign failure drops the image from the
// response rather than failing the whole request.
func (s *Service) resolveImageURLs(ctx context.Context, keys []string) []string {
	if s.storage == nil || len(keys) == 0 {
		return keys
	}
	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		presigned, err := s.storage.GenerateDownloadURL(ctx, s.bucket, key)
		if err != nil {
			s.log.Error("presign image download failed", "key", key, "error", err)
			continue
		}
		urls = append(urls, presigned.URL)
	}
	return urls
}

func toSummary(car repository.Car) transport.CarSummary {
	summary := transport.CarSummary{
		ID:           car.ID.String(),
		Make:         car.Make,
		Model:        car.Model,
		Year:         car.Year,
		Price:        car.Price,
		Mileage:      car.Mileage,
		FuelType:     car.FuelType,
		Transmission: car.Transmission,
		CarClass:     car.CarClass,
		Description:  car.Description,
		CreatedAt:    car.CreatedAt.Format(time.RFC3339),
	}
	if len(car.Images) > 0 {
		summary.Image = car.Images[0]
	}
	return summary
}

func toDetail(car repository.Car) transport.CarDetail {
	images := car.Images
	if images == nil {
		images = []string{}
	}
	return transport.CarDetail{
		ID:           car.ID.String(),
		SellerID:     car.SellerID.String(),
		Make:         car.Make,
		Model:        car.Model,
		Year:         car.Year,
		Price:        car.Price,
		Mileage:      car.Mileage,
		FuelType:     car.FuelType,
		Transmission: car.Transmission,
		CarClass:     car.CarClass,
		Images:       images,
		Description:  car.Description,
		CreatedAt:    car.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    car.UpdatedAt.Format(time.RFC3339),
	}
}
