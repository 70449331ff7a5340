// Package bookmarks lets buyers save car listings.
package bookmarks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookmarkedCar is a saved listing summary.
type BookmarkedCar struct {
	CarID        uuid.UUID
	Make         string
	Model        string
	Year         int
	Price        int64
	FirstImage   *string
	BookmarkedAt time.Time
}

// Repository defines bookmark persistence.
type Repository interface {
	// Toggle saves the listing if not bookmarked, removes the bookmark
	// otherwise. Returns true when the bookmark now exists.
	Toggle(ctx context.Context, userID, carID uuid.UUID) (bool, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]BookmarkedCar, int64, error)
}

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo creates the bookmarks repository.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Toggle inserts the bookmark, or deletes it when the unique
// (user_id, car_id) pair already exists.
func (r *Repo) Toggle(ctx context.Context, userID, carID uuid.UUID) (bool, error) {
	insert := `
		INSERT INTO bookmarks (user_id, car_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, car_id) DO NOTHING`

	result, err := r.pool.Exec(ctx, insert, userID, carID)
	if err != nil {
		return false, fmt.Errorf("toggle bookmark: %w", err)
	}
	if result.RowsAffected() > 0 {
		return true, nil
	}

	if _, err := r.pool.Exec(ctx,
		"DELETE FROM bookmarks WHERE user_id = $1 AND car_id = $2", userID, carID,
	); err != nil {
		return false, fmt.Errorf("remove bookmark: %w", err)
	}
	return false, nil
}

// List pages through a user's saved listings, newest bookmark first.
func (r *Repo) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]BookmarkedCar, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM bookmarks WHERE user_id = $1", userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bookmarks: %w", err)
	}

	query := `
		SELECT c.id, c.make, c.model, c.year, c.price,
			(SELECT ci.object_key FROM car_images ci
			 WHERE ci.car_id = c.id ORDER BY ci.position ASC LIMIT 1),
			b.created_at
		FROM bookmarks b
		JOIN cars c ON c.id = b.car_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	items := make([]BookmarkedCar, 0, limit)
	for rows.Next() {
		var item BookmarkedCar
		if err := rows.Scan(
			&item.CarID, &item.Make, &item.Model, &item.Year, &item.Price,
			&item.FirstImage, &item.BookmarkedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan bookmark: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate bookmarks: %w", rows.Err())
	}
	return items, total, nil
}
