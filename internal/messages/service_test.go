package messages

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"carmarket_backend/internal/events"
	"carmarket_backend/platform/apperr"
	"carmarket_backend/platform/logger"
)

type fakeRepo struct {
	Repository

	contact CarContact
	created *Message
}

func (f *fakeRepo) GetCarContact(ctx context.Context, carID uuid.UUID) (CarContact, error) {
	return f.contact, nil
}

func (f *fakeRepo) GetUsername(ctx context.Context, userID uuid.UUID) (string, error) {
	return "bob", nil
}

func (f *fakeRepo) Create(ctx context.Context, carID, senderID, recipientID uuid.UUID, body string) (Message, error) {
	msg := Message{
		ID:          uuid.New(),
		CarID:       carID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        body,
	}
	f.created = &msg
	return msg, nil
}

type captureHandler struct {
	mu     sync.Mutex
	events []events.Event
	done   chan struct{}
}

func (h *captureHandler) Handle(ctx context.Context, e events.Event) error {
	h.mu.Lock()
	h.events = append(h.events, e)
	h.mu.Unlock()
	close(h.done)
	return nil
}

func TestContactSellerPublishesNotification(t *testing.T) {
	sellerID := uuid.New()
	carID := uuid.New()
	repo := &fakeRepo{contact: CarContact{
		CarID:       carID,
		SellerID:    sellerID,
		SellerEmail: "seller@example.com",
		Title:       "Toyota Corolla",
	}}

	bus := events.NewInMemoryBus(logger.New("test"))
	capture := &captureHandler{done: make(chan struct{})}
	bus.Subscribe(events.MessageSent{}.EventName(), capture)

	svc := NewService(repo, bus)
	senderID := uuid.New()

	msg, err := svc.ContactSeller(context.Background(), senderID, carID.String(), "is it available?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.RecipientID != sellerID {
		t.Fatal("message not addressed to the seller")
	}

	<-capture.done
	sent := capture.events[0].(events.MessageSent)
	if sent.SellerEmail != "seller@example.com" || sent.SenderName != "bob" {
		t.Fatalf("event = %+v", sent)
	}
	if sent.CarTitle != "Toyota Corolla" {
		t.Fatalf("car title = %q", sent.CarTitle)
	}
}

func TestContactSellerRejectsSelfContact(t *testing.T) {
	sellerID := uuid.New()
	carID := uuid.New()
	repo := &fakeRepo{contact: CarContact{CarID: carID, SellerID: sellerID}}
	svc := NewService(repo, events.NewInMemoryBus(logger.New("test")))

	_, err := svc.ContactSeller(context.Background(), sellerID, carID.String(), "hi me")
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("self contact must not be stored")
	}
}

func TestContactSellerTruncatesPreview(t *testing.T) {
	sellerID := uuid.New()
	carID := uuid.New()
	repo := &fakeRepo{contact: CarContact{CarID: carID, SellerID: sellerID}}

	bus := events.NewInMemoryBus(logger.New("test"))
	capture := &captureHandler{done: make(chan struct{})}
	bus.Subscribe(events.MessageSent{}.EventName(), capture)
	svc := NewService(repo, bus)

	long := strings.Repeat("x", 500)
	if _, err := svc.ContactSeller(context.Background(), uuid.New(), carID.String(), long); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	<-capture.done
	sent := capture.events[0].(events.MessageSent)
	if len(sent.BodyPreview) != previewLength {
		t.Fatalf("preview length = %d, want %d", len(sent.BodyPreview), previewLength)
	}
}
