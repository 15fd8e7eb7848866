package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// ErrNoRecipients is returned when a request has an empty To list.
var ErrNoRecipients = errors.New("email has no recipients")

// noticeTag marks lifecycle notices in the Resend dashboard.
var noticeTag = resend.Tag{Name: "category", Value: "record_lifecycle"}

// ResendSender delivers lifecycle notices through the Resend API.
// One notice goes to the whole recipient list in a single message.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a sender for apiKey that mails from the given address.
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Send delivers one notice.
// PRE: req has at least one recipient
// POST: Notice accepted by Resend; MessageID is Resend's id
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	params, err := s.noticeParams(req)
	if err != nil {
		return SendResult{}, err
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		slog.Error("notice_email_failed", "error", err, "recipients", len(req.To))
		return SendResult{}, fmt.Errorf("resend: %w", err)
	}

	slog.Info("notice_email_sent", "message_id", sent.Id, "recipients", len(req.To))
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}

// noticeParams maps req onto a Resend request. req.From overrides the
// configured sender address.
func (s *ResendSender) noticeParams(req SendRequest) (*resend.SendEmailRequest, error) {
	if len(req.To) == 0 {
		return nil, ErrNoRecipients
	}
	from := req.From
	if from == "" {
		from = s.from
	}
	return &resend.SendEmailRequest{
		From:    from,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
		Text:    req.Text,
		Tags:    []resend.Tag{noticeTag},
	}, nil
}
