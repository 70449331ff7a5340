// Package repository provides Postgres persistence for car listings.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"carmarket_backend/internal/listings/query"
	"carmarket_backend/platform/apperr"
)

const carNotFoundMessage = "car not found"

const carColumns = `c.id, c.seller_id, c.make, c.model, c.year, c.price, c.mileage,
	c.fuel_type, c.transmission, c.car_class, c.description, c.created_at, c.updated_at`

// Repo implements the listings repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new listings repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Search executes the count and page queries concurrently. The two calls
// need not be transactionally consistent with each other; a marginally
// stale total under concurrent writes is acceptable.
func (r *Repo) Search(ctx context.Context, spec query.SQL) ([]Car, int64, error) {
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM cars c WHERE %s", spec.Where)

	pageQuery := fmt.Sprintf(`
		SELECT %s,
			(SELECT ci.object_key FROM car_images ci
			 WHERE ci.car_id = c.id ORDER BY ci.position ASC LIMIT 1)
		FROM cars c
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		carColumns, spec.Where, spec.OrderBy, spec.NextArg(), spec.NextArg()+1)

	pageArgs := make([]interface{}, 0, len(spec.Args)+len(spec.SortArgs)+2)
	pageArgs = append(pageArgs, spec.Args...)
	pageArgs = append(pageArgs, spec.SortArgs...)
	pageArgs = append(pageArgs, spec.Limit, spec.Offset)

	var (
		total int64
		cars  []Car
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := r.pool.QueryRow(gctx, countQuery, spec.Args...).Scan(&total); err != nil {
			return fmt.Errorf("count cars: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		rows, err := r.pool.Query(gctx, pageQuery, pageArgs...)
		if err != nil {
			return fmt.Errorf("search cars: %w", err)
		}
		defer rows.Close()

		cars = make([]Car, 0, spec.Limit)
		for rows.Next() {
			var car Car
			var firstImage *string
			if err := rows.Scan(
				&car.ID, &car.SellerID, &car.Make, &car.Model, &car.Year,
				&car.Price, &car.Mileage, &car.FuelType, &car.Transmission,
				&car.CarClass, &car.Description, &car.CreatedAt, &car.UpdatedAt,
				&firstImage,
			); err != nil {
				return fmt.Errorf("scan car: %w", err)
			}
			if firstImage != nil {
				car.Images = []string{*firstImage}
			}
			cars = append(cars, car)
		}
		if rows.Err() != nil {
			return fmt.Errorf("iterate cars: %w", rows.Err())
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return cars, total, nil
}

// GetByID retrieves a full listing with all its images.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Car, error) {
	q := fmt.Sprintf(`
		SELECT %s,
			COALESCE(array_agg(ci.object_key ORDER BY ci.position)
				FILTER (WHERE ci.object_key IS NOT NULL), '{}')
		FROM cars c
		LEFT JOIN car_images ci ON ci.car_id = c.id
		WHERE c.id = $1
		GROUP BY c.id`, carColumns)

	var car Car
	if err := r.pool.QueryRow(ctx, q, id).Scan(
		&car.ID, &car.SellerID, &car.Make, &car.Model, &car.Year,
		&car.Price, &car.Mileage, &car.FuelType, &car.Transmission,
		&car.CarClass, &car.Description, &car.CreatedAt, &car.UpdatedAt,
		&car.Images,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Car{}, apperr.NotFound(carNotFoundMessage)
		}
		return Car{}, fmt.Errorf("get car by id: %w", err)
	}
	return car, nil
}

// Create inserts a new listing.
func (r *Repo) Create(ctx context.Context, params CreateCarParams) (Car, error) {
	q := `
		INSERT INTO cars (seller_id, make, model, year, price, mileage,
			fuel_type, transmission, car_class, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	car := Car{
		SellerID:     params.SellerID,
		Make:         params.Make,
		Model:        params.Model,
		Year:         params.Year,
		Price:        params.Price,
		Mileage:      params.Mileage,
		FuelType:     params.FuelType,
		Transmission: params.Transmission,
		CarClass:     params.CarClass,
		Description:  params.Description,
	}
	if err := r.pool.QueryRow(ctx, q,
		params.SellerID, params.Make, params.Model, params.Year, params.Price,
		params.Mileage, params.FuelType, params.Transmission, params.CarClass,
		params.Description,
	).Scan(&car.ID, &car.CreatedAt, &car.UpdatedAt); err != nil {
		return Car{}, fmt.Errorf("create car: %w", err)
	}
	return car, nil
}

// Update applies a partial update, scoped to the owning seller.
func (r *Repo) Update(ctx context.Context, params UpdateCarParams) (Car, error) {
	q := `
		UPDATE cars
		SET price = COALESCE($3, price),
			mileage = COALESCE($4, mileage),
			description = COALESCE($5, description),
			updated_at = now()
		WHERE id = $1 AND seller_id = $2
		RETURNING id, seller_id, make, model, year, price, mileage,
			fuel_type, transmission, car_class, description, created_at, updated_at`

	var car Car
	if err := r.pool.QueryRow(ctx, q,
		params.ID, params.SellerID, params.Price, params.Mileage, params.Description,
	).Scan(
		&car.ID, &car.SellerID, &car.Make, &car.Model, &car.Year,
		&car.Price, &car.Mileage, &car.FuelType, &car.Transmission,
		&car.CarClass, &car.Description, &car.CreatedAt, &car.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Car{}, apperr.NotFound(carNotFoundMessage)
		}
		return Car{}, fmt.Errorf("update car: %w", err)
	}
	return car, nil
}

// Delete removes a listing. When sellerID is non-nil the delete only
// succeeds if that seller owns the listing.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID, sellerID *uuid.UUID) error {
	q := "DELETE FROM cars WHERE id = $1"
	args := []interface{}{id}
	if sellerID != nil {
		q += " AND seller_id = $2"
		args = append(args, *sellerID)
	}

	result, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("delete car: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(carNotFoundMessage)
	}
	return nil
}

// AdminList returns a dashboard page with total and last-30-day counters.
func (r *Repo) AdminList(ctx context.Context, params AdminListParams) (AdminListResult, error) {
	var result AdminListResult

	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM cars").Scan(&result.TotalPosts); err != nil {
		return AdminListResult{}, fmt.Errorf("count cars: %w", err)
	}
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM cars WHERE created_at > now() - interval '30 days'",
	).Scan(&result.LastMonthPosts); err != nil {
		return AdminListResult{}, fmt.Errorf("count recent cars: %w", err)
	}

	sortColumn := "created_at"
	switch params.Sort {
	case "price":
		sortColumn = "price"
	case "year":
		sortColumn = "year"
	case "make":
		sortColumn = "make"
	}

	q := fmt.Sprintf(`
		SELECT %s,
			(SELECT ci.object_key FROM car_images ci
			 WHERE ci.car_id = c.id ORDER BY ci.position ASC LIMIT 1)
		FROM cars c
		ORDER BY %s DESC
		LIMIT $1 OFFSET $2`, carColumns, sortColumn)

	rows, err := r.pool.Query(ctx, q, params.Limit, params.Offset)
	if err != nil {
		return AdminListResult{}, fmt.Errorf("admin list cars: %w", err)
	}
	defer rows.Close()

	result.Cars = make([]Car, 0, params.Limit)
	for rows.Next() {
		var car Car
		var firstImage *string
		if err := rows.Scan(
			&car.ID, &car.SellerID, &car.Make, &car.Model, &car.Year,
			&car.Price, &car.Mileage, &car.FuelType, &car.Transmission,
			&car.CarClass, &car.Description, &car.CreatedAt, &car.UpdatedAt,
			&firstImage,
		); err != nil {
			return AdminListResult{}, fmt.Errorf("scan car: %w", err)
		}
		if firstImage != nil {
			car.Images = []string{*firstImage}
		}
		result.Cars = append(result.Cars, car)
	}
	if rows.Err() != nil {
		return AdminListResult{}, fmt.Errorf("iterate cars: %w", rows.Err())
	}

	return result, nil
}

// AttachImage appends an uploaded object to a listing's gallery, scoped
// to the owning seller.
func (r *Repo) AttachImage(ctx context.Context, carID, sellerID uuid.UUID, objectKey string) error {
	q := `
		INSERT INTO car_images (car_id, object_key, position)
		SELECT c.id, $3, COALESCE(MAX(ci.position), -1) + 1
		FROM cars c
		LEFT JOIN car_images ci ON ci.car_id = c.id
		WHERE c.id = $1 AND c.seller_id = $2
		GROUP BY c.id`

	result, err := r.pool.Exec(ctx, q, carID, sellerID, objectKey)
	if err != nil {
		return fmt.Errorf("attach car image: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(carNotFoundMessage)
	}
	return nil
}
