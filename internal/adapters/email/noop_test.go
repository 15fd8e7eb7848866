package email

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNoopSender_Send(t *testing.T) {
	s := NewNoopSender()
	res, err := s.Send(context.Background(), SendRequest{To: []string{"ops@example.com"}, Subject: "hi"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.HasPrefix(res.MessageID, "noop-") {
		t.Errorf("MessageID = %q, want noop- prefix", res.MessageID)
	}
	if res.SentAt.IsZero() {
		t.Error("SentAt not set")
	}
}

func TestNoopSender_NoRecipients(t *testing.T) {
	_, err := NewNoopSender().Send(context.Background(), SendRequest{Subject: "hi"})
	if !errors.Is(err, ErrNoRecipients) {
		t.Errorf("err = %v, want ErrNoRecipients", err)
	}
}

func TestResendSender_NoRecipients(t *testing.T) {
	s := NewResendSender("re_test", "ops@example.com")
	_, err := s.Send(context.Background(), SendRequest{Subject: "hi"})
	if !errors.Is(err, ErrNoRecipients) {
		t.Errorf("err = %v, want ErrNoRecipients", err)
	}
}

func TestResendSender_NoticeParams(t *testing.T) {
	s := NewResendSender("re_test", "ops@example.com")

	params, err := s.noticeParams(SendRequest{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Record lifecycle notice",
		HTML:    "<p>done</p>",
		Text:    "done",
	})
	if err != nil {
		t.Fatalf("noticeParams: %v", err)
	}
	if params.From != "ops@example.com" {
		t.Errorf("From = %q, want configured sender", params.From)
	}
	if len(params.To) != 2 || params.Text != "done" || params.Html != "<p>done</p>" {
		t.Errorf("params = %+v", params)
	}
	if len(params.Tags) != 1 || params.Tags[0].Value != "record_lifecycle" {
		t.Errorf("Tags = %+v", params.Tags)
	}

	params, _ = s.noticeParams(SendRequest{To: []string{"a@example.com"}, From: "alt@example.com"})
	if params.From != "alt@example.com" {
		t.Errorf("From = %q, want override", params.From)
	}
}
