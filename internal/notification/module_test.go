package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"carmarket_backend/internal/events"
	"carmarket_backend/internal/scheduler"
	"carmarket_backend/platform/logger"
)

type fakeQueue struct {
	welcome  []scheduler.WelcomeEmailPayload
	received []scheduler.MessageReceivedEmailPayload
	err      error
}

func (f *fakeQueue) EnqueueWelcomeEmail(ctx context.Context, p scheduler.WelcomeEmailPayload) error {
	if f.err != nil {
		return f.err
	}
	f.welcome = append(f.welcome, p)
	return nil
}

func (f *fakeQueue) EnqueueMessageReceivedEmail(ctx context.Context, p scheduler.MessageReceivedEmailPayload) error {
	if f.err != nil {
		return f.err
	}
	f.received = append(f.received, p)
	return nil
}

type fakeSender struct {
	welcome  int
	received int
}

func (f *fakeSender) SendWelcomeEmail(ctx context.Context, toEmail, username string) error {
	f.welcome++
	return nil
}

func (f *fakeSender) SendMessageReceivedEmail(ctx context.Context, toEmail, senderName, carTitle, preview string) error {
	f.received++
	return nil
}

func TestMessageSentIsQueued(t *testing.T) {
	queue := &fakeQueue{}
	sender := &fakeSender{}
	m := NewModule(queue, sender, logger.New("test"))

	err := m.Handle(context.Background(), events.MessageSent{
		BaseEvent:   events.NewBaseEvent(),
		MessageID:   uuid.New(),
		SellerEmail: "seller@example.com",
		SenderName:  "bob",
		CarTitle:    "Toyota Corolla",
		BodyPreview: "still for sale?",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(queue.received) != 1 {
		t.Fatalf("queued = %d, want 1", len(queue.received))
	}
	if queue.received[0].SellerEmail != "seller@example.com" {
		t.Fatalf("payload = %+v", queue.received[0])
	}
	if sender.received != 0 {
		t.Fatal("mail must not be sent inline when the queue accepts it")
	}
}

func TestQueueFailureFallsBackToInlineSend(t *testing.T) {
	queue := &fakeQueue{err: errors.New("redis down")}
	sender := &fakeSender{}
	m := NewModule(queue, sender, logger.New("test"))

	err := m.Handle(context.Background(), events.UserSignedUp{
		BaseEvent: events.NewBaseEvent(),
		UserID:    uuid.New(),
		Email:     "alice@example.com",
		Username:  "alice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sender.welcome != 1 {
		t.Fatal("expected inline fallback send")
	}
}

func TestNilQueueSendsInline(t *testing.T) {
	sender := &fakeSender{}
	m := NewModule(nil, sender, logger.New("test"))

	err := m.Handle(context.Background(), events.UserSignedUp{
		BaseEvent: events.NewBaseEvent(),
		Email:     "alice@example.com",
		Username:  "alice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sender.welcome != 1 {
		t.Fatal("expected inline send without a queue")
	}
}
