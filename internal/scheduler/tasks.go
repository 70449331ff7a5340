package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// TaskWelcomeEmail greets a newly registered user.
	TaskWelcomeEmail = "email.welcome"
	// TaskMessageReceivedEmail notifies a seller of a new buyer message.
	TaskMessageReceivedEmail = "email.message_received"
)

// WelcomeEmailPayload carries the welcome mail fields.
type WelcomeEmailPayload struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// MessageReceivedEmailPayload carries the seller notification fields.
type MessageReceivedEmailPayload struct {
	SellerEmail string `json:"sellerEmail"`
	SenderName  string `json:"senderName"`
	CarTitle    string `json:"carTitle"`
	Preview     string `json:"preview"`
}

// NewWelcomeEmailTask builds the asynq task for a welcome mail.
func NewWelcomeEmailTask(payload WelcomeEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWelcomeEmail, data), nil
}

// ParseWelcomeEmailPayload decodes a welcome mail task.
func ParseWelcomeEmailPayload(task *asynq.Task) (WelcomeEmailPayload, error) {
	var payload WelcomeEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return WelcomeEmailPayload{}, err
	}
	return payload, nil
}

// NewMessageReceivedEmailTask builds the asynq task for a seller notification.
func NewMessageReceivedEmailTask(payload MessageReceivedEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMessageReceivedEmail, data), nil
}

// ParseMessageReceivedEmailPayload decodes a seller notification task.
func ParseMessageReceivedEmailPayload(task *asynq.Task) (MessageReceivedEmailPayload, error) {
	var payload MessageReceivedEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return MessageReceivedEmailPayload{}, err
	}
	return payload, nil
}
