// Package messages lets buyers contact sellers about listings.
package messages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carmarket_backend/platform/apperr"
)

// Message is a buyer-to-seller message about one listing.
type Message struct {
	ID          uuid.UUID
	CarID       uuid.UUID
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	Body        string
	CreatedAt   time.Time
}

// CarContact carries the listing fields needed to address a message.
type CarContact struct {
	CarID       uuid.UUID
	SellerID    uuid.UUID
	SellerEmail string
	Title       string
}

// Repository defines message persistence.
type Repository interface {
	GetCarContact(ctx context.Context, carID uuid.UUID) (CarContact, error)
	GetUsername(ctx context.Context, userID uuid.UUID) (string, error)
	Create(ctx context.Context, carID, senderID, recipientID uuid.UUID, body string) (Message, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Message, int64, error)
	AdminList(ctx context.Context, limit, offset int) ([]Message, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo creates the messages repository.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetCarContact resolves the seller and display title for a listing.
func (r *Repo) GetCarContact(ctx context.Context, carID uuid.UUID) (CarContact, error) {
	query := `
		SELECT c.id, c.seller_id, u.email, c.make || ' ' || c.model
		FROM cars c
		JOIN users u ON u.id = c.seller_id
		WHERE c.id = $1`

	var contact CarContact
	if err := r.pool.QueryRow(ctx, query, carID).Scan(
		&contact.CarID, &contact.SellerID, &contact.SellerEmail, &contact.Title,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CarContact{}, apperr.NotFound("car not found")
		}
		return CarContact{}, fmt.Errorf("get car contact: %w", err)
	}
	return contact, nil
}

// GetUsername resolves a user's display name.
func (r *Repo) GetUsername(ctx context.Context, userID uuid.UUID) (string, error) {
	var username string
	if err := r.pool.QueryRow(ctx,
		"SELECT username FROM users WHERE id = $1", userID,
	).Scan(&username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("user not found")
		}
		return "", fmt.Errorf("get username: %w", err)
	}
	return username, nil
}

// Create inserts a message.
func (r *Repo) Create(ctx context.Context, carID, senderID, recipientID uuid.UUID, body string) (Message, error) {
	query := `
		INSERT INTO messages (car_id, sender_id, recipient_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	msg := Message{
		CarID:       carID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        body,
	}
	if err := r.pool.QueryRow(ctx, query, carID, senderID, recipientID, body).Scan(
		&msg.ID, &msg.CreatedAt,
	); err != nil {
		return Message{}, fmt.Errorf("create message: %w", err)
	}
	return msg, nil
}

// ListForUser pages through messages sent or received by a user.
func (r *Repo) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Message, int64, error) {
	return r.list(ctx,
		"WHERE sender_id = $1 OR recipient_id = $1",
		[]interface{}{userID}, limit, offset)
}

// AdminList pages through all messages for the dashboard.
func (r *Repo) AdminList(ctx context.Context, limit, offset int) ([]Message, int64, error) {
	return r.list(ctx, "", nil, limit, offset)
}

func (r *Repo) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]Message, int64, error) {
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM messages %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	argIdx := len(args) + 1
	query := fmt.Sprintf(`
		SELECT id, car_id, sender_id, recipient_id, body, created_at
		FROM messages %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	items := make([]Message, 0, limit)
	for rows.Next() {
		var msg Message
		if err := rows.Scan(
			&msg.ID, &msg.CarID, &msg.SenderID, &msg.RecipientID,
			&msg.Body, &msg.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, msg)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate messages: %w", rows.Err())
	}
	return items, total, nil
}

// Delete removes a message.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM messages WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("message not found")
	}
	return nil
}
