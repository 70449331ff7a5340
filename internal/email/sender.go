// Package email delivers transactional mail to marketplace users.
package email

import "context"

// Sender delivers transactional email.
type Sender interface {
	// SendWelcomeEmail greets a newly registered user.
	SendWelcomeEmail(ctx context.Context, toEmail, username string) error
	// SendMessageReceivedEmail notifies a seller that a buyer wrote
	// about one of their listings.
	SendMessageReceivedEmail(ctx context.Context, toEmail, senderName, carTitle, preview string) error
}

// NoopSender is used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendWelcomeEmail(ctx context.Context, toEmail, username string) error {
	return nil
}

func (NoopSender) SendMessageReceivedEmail(ctx context.Context, toEmail, senderName, carTitle, preview string) error {
	return nil
}
