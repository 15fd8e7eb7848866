package email

import (
	"context"
	"time"
)

// SendRequest contains the data needed to send an email via an external provider.
type SendRequest struct {
	To      []string // Recipient addresses
	From    string   // Optional; the sender's default is used when empty
	Subject string
	HTML    string
	Text    string // Plain-text alternative
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers a single email.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
