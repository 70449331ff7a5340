// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"carmarket_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserSignedUp is published when a new user successfully registers.
type UserSignedUp struct {
	BaseEvent
	UserID   uuid.UUID `json:"userId"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
}

func (e UserSignedUp) EventName() string { return "auth.user.signed_up" }

// =============================================================================
// Listings Domain Events
// =============================================================================

// CarCreated is published when a seller posts a new car listing.
type CarCreated struct {
	BaseEvent
	CarID    uuid.UUID `json:"carId"`
	SellerID uuid.UUID `json:"sellerId"`
	Make     string    `json:"make"`
	Model    string    `json:"model"`
}

func (e CarCreated) EventName() string { return "listings.car.created" }

// CarDeleted is published when a listing is removed, either by its
// seller or by an administrator.
type CarDeleted struct {
	BaseEvent
	CarID     uuid.UUID `json:"carId"`
	DeletedBy uuid.UUID `json:"deletedBy"`
}

func (e CarDeleted) EventName() string { return "listings.car.deleted" }

// =============================================================================
// Messaging Domain Events
// =============================================================================

// MessageSent is published when a buyer contacts a seller about a listing.
// Subscribers use it to notify the seller by email.
type MessageSent struct {
	BaseEvent
	MessageID   uuid.UUID `json:"messageId"`
	CarID       uuid.UUID `json:"carId"`
	SenderID    uuid.UUID `json:"senderId"`
	SellerID    uuid.UUID `json:"sellerId"`
	SellerEmail string    `json:"sellerEmail"`
	SenderName  string    `json:"senderName"`
	CarTitle    string    `json:"carTitle"`
	BodyPreview string    `json:"bodyPreview"`
}

func (e MessageSent) EventName() string { return "messages.message.sent" }
