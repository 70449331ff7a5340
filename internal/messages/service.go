package messages

import (
	"context"

	"github.com/google/uuid"

	"carmarket_backend/internal/events"
	"carmarket_backend/platform/apperr"
)

const previewLength = 140

// Service provides messaging operations.
type Service struct {
	repo Repository
	bus  events.Bus
}

// NewService creates the messages service.
func NewService(repo Repository, bus events.Bus) *Service {
	return &Service{repo: repo, bus: bus}
}

// ContactSeller stores a message to the listing's seller and announces it
// on the bus so the seller can be notified. Sellers cannot message
// themselves about their own listings.
func (s *Service) ContactSeller(ctx context.Context, senderID uuid.UUID, carID, body string) (Message, error) {
	id, err := uuid.Parse(carID)
	if err != nil {
		return Message{}, apperr.BadRequest("invalid car id")
	}

	contact, err := s.repo.GetCarContact(ctx, id)
	if err != nil {
		return Message{}, err
	}
	if contact.SellerID == senderID {
		return Message{}, apperr.Validation("cannot message yourself about your own listing")
	}

	senderName, err := s.repo.GetUsername(ctx, senderID)
	if err != nil {
		return Message{}, err
	}

	msg, err := s.repo.Create(ctx, contact.CarID, senderID, contact.SellerID, body)
	if err != nil {
		return Message{}, err
	}

	preview := body
	if len(preview) > previewLength {
		preview = preview[:previewLength]
	}
	s.bus.Publish(ctx, events.MessageSent{
		BaseEvent:   events.NewBaseEvent(),
		MessageID:   msg.ID,
		CarID:       contact.CarID,
		SenderID:    senderID,
		SellerID:    contact.SellerID,
		SellerEmail: contact.SellerEmail,
		SenderName:  senderName,
		CarTitle:    contact.Title,
		BodyPreview: preview,
	})

	return msg, nil
}
