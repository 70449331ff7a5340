// Package notification turns domain events into outgoing email, queued
// on Redis when available and delivered inline otherwise.
package notification

import (
	"context"

	"carmarket_backend/internal/email"
	"carmarket_backend/internal/events"
	"carmarket_backend/internal/scheduler"
	"carmarket_backend/platform/logger"
)

// Queue is the subset of the scheduler client used here.
type Queue interface {
	EnqueueWelcomeEmail(ctx context.Context, payload scheduler.WelcomeEmailPayload) error
	EnqueueMessageReceivedEmail(ctx context.Context, payload scheduler.MessageReceivedEmailPayload) error
}

// Module subscribes to domain events and dispatches email notifications.
type Module struct {
	queue Queue
	mail  email.Sender
	log   *logger.Logger
}

// NewModule creates the notification module. When queue is nil the mail
// is sent inline on the event goroutine.
func NewModule(queue Queue, mail email.Sender, log *logger.Logger) *Module {
	return &Module{queue: queue, mail: mail, log: log}
}

// RegisterHandlers subscribes to the domain events this module reacts to.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.UserSignedUp{}.EventName(), m)
	bus.Subscribe(events.MessageSent{}.EventName(), m)
}

// Handle routes events to the appropriate dispatch method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.UserSignedUp:
		return m.dispatchWelcome(ctx, e)
	case events.MessageSent:
		return m.dispatchMessageReceived(ctx, e)
	default:
		return nil
	}
}

func (m *Module) dispatchWelcome(ctx context.Context, e events.UserSignedUp) error {
	if m.queue != nil {
		err := m.queue.EnqueueWelcomeEmail(ctx, scheduler.WelcomeEmailPayload{
			Email:    e.Email,
			Username: e.Username,
		})
		if err == nil {
			return nil
		}
		m.log.Error("welcome email enqueue failed, sending inline", "error", err)
	}
	return m.mail.SendWelcomeEmail(ctx, e.Email, e.Username)
}

func (m *Module) dispatchMessageReceived(ctx context.Context, e events.MessageSent) error {
	if m.queue != nil {
		err := m.queue.EnqueueMessageReceivedEmail(ctx, scheduler.MessageReceivedEmailPayload{
			SellerEmail: e.SellerEmail,
			SenderName:  e.SenderName,
			CarTitle:    e.CarTitle,
			Preview:     e.BodyPreview,
		})
		if err == nil {
			return nil
		}
		m.log.Error("message notification enqueue failed, sending inline", "error", err)
	}
	return m.mail.SendMessageReceivedEmail(ctx, e.SellerEmail, e.SenderName, e.CarTitle, e.BodyPreview)
}
