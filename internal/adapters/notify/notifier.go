// Package notify delivers lifecycle outcome messages to the people who
// should see them.
package notify

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/yuin/goldmark"

	"deleteop/internal/adapters/email"
	"deleteop/internal/adapters/http/middleware"
)

// Notifier shows or sends a single status message.
// Delivery is best effort: implementations log failures and never return them.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, message string)

func (f Func) Notify(ctx context.Context, message string) { f(ctx, message) }

// Multi fans a message out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, message)
		}
	}
}

// FlashNotifier queues the message on the caller's browser session, to be
// shown on the next page render.
type FlashNotifier struct{}

// Notify adds message to the session in ctx. Requests without a session
// (API clients) are skipped.
func (FlashNotifier) Notify(ctx context.Context, message string) {
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok {
		slog.Debug("flash_skipped", "reason", "no_session")
		return
	}
	if err := sess.AddFlash(message); err != nil {
		slog.Error("flash_failed", "error", err)
	}
}

// LogNotifier writes the message as a structured log line.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, message string) {
	slog.Info("lifecycle_notice", "message", message)
}

// EmailNotifier mails each message to a fixed list of recipients.
type EmailNotifier struct {
	sender  email.Sender
	to      []string
	subject string
	md      goldmark.Markdown
}

// NewEmailNotifier creates an EmailNotifier.
// PRE: sender is non-nil
// POST: Returns a notifier; with no recipients Notify is a no-op
func NewEmailNotifier(sender email.Sender, to []string, subject string) *EmailNotifier {
	if subject == "" {
		subject = "Record lifecycle notice"
	}
	return &EmailNotifier{
		sender:  sender,
		to:      to,
		subject: subject,
		md:      goldmark.New(),
	}
}

// Notify renders message as Markdown and sends it. Send errors are logged.
func (n *EmailNotifier) Notify(ctx context.Context, message string) {
	if len(n.to) == 0 {
		return
	}
	var buf bytes.Buffer
	if err := n.md.Convert([]byte(message), &buf); err != nil {
		slog.Error("email_notice_render_failed", "error", err)
		return
	}
	_, err := n.sender.Send(ctx, email.SendRequest{
		To:      n.to,
		Subject: n.subject,
		HTML:    buf.String(),
		Text:    message,
	})
	if err != nil {
		slog.Error("email_notice_failed", "error", err, "to", n.to)
	}
}
