package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"deleteop/internal/adapters/email"
	"deleteop/internal/adapters/http/middleware"
)

type mockSender struct {
	reqs []email.SendRequest
	err  error
}

func (m *mockSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	m.reqs = append(m.reqs, req)
	if m.err != nil {
		return email.SendResult{}, m.err
	}
	return email.SendResult{MessageID: "m1", SentAt: time.Now()}, nil
}

func TestEmailNotifier_RendersMarkdown(t *testing.T) {
	s := &mockSender{}
	n := NewEmailNotifier(s, []string{"ops@example.com"}, "")

	n.Notify(context.Background(), `The entity "Hello" has been *purged*.`)

	if len(s.reqs) != 1 {
		t.Fatalf("sends = %d, want 1", len(s.reqs))
	}
	req := s.reqs[0]
	if !strings.Contains(req.HTML, "<em>purged</em>") {
		t.Errorf("HTML = %q, want rendered emphasis", req.HTML)
	}
	if req.Subject != "Record lifecycle notice" {
		t.Errorf("Subject = %q", req.Subject)
	}
	if req.Text == "" {
		t.Error("plain-text body missing")
	}
}

func TestEmailNotifier_NoRecipientsIsNoop(t *testing.T) {
	s := &mockSender{}
	NewEmailNotifier(s, nil, "x").Notify(context.Background(), "hi")
	if len(s.reqs) != 0 {
		t.Errorf("sends = %d, want 0", len(s.reqs))
	}
}

func TestEmailNotifier_SendFailureSwallowed(t *testing.T) {
	s := &mockSender{err: errors.New("provider down")}
	// Must not panic or block; failure is only logged.
	NewEmailNotifier(s, []string{"ops@example.com"}, "x").Notify(context.Background(), "hi")
	if len(s.reqs) != 1 {
		t.Errorf("sends = %d, want 1 attempt", len(s.reqs))
	}
}

func TestFlashNotifier_QueuesOnSession(t *testing.T) {
	store := middleware.NewSessionStore(time.Hour, false)
	var sess *middleware.Session

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/records/article/1/delete", nil)
	middleware.Sessions(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ = middleware.SessionFromContext(r.Context())
		FlashNotifier{}.Notify(r.Context(), `The entity "Hello" has been deleted.`)
	})).ServeHTTP(rr, req)

	if sess == nil {
		t.Fatal("no session in context")
	}
	got := sess.PopFlashes()
	if len(got) != 1 || got[0] != `The entity "Hello" has been deleted.` {
		t.Errorf("flashes = %v", got)
	}
	if len(rr.Result().Cookies()) != 1 {
		t.Error("session cookie should be issued on first flash")
	}
}

func TestFlashNotifier_NoSession(t *testing.T) {
	// Must not panic.
	FlashNotifier{}.Notify(context.Background(), "hi")
}

func TestMulti_FansOut(t *testing.T) {
	var got []string
	rec := func(tag string) Notifier {
		return Func(func(_ context.Context, m string) { got = append(got, tag+":"+m) })
	}
	Multi{rec("a"), nil, rec("b")}.Notify(context.Background(), "x")

	if len(got) != 2 || got[0] != "a:x" || got[1] != "b:x" {
		t.Errorf("got = %v", got)
	}
}
