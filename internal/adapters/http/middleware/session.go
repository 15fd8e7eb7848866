package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

const sessionCookieName = "deleteop_session"

// DefaultSessionTTL is how long an idle session keeps its flash messages.
const DefaultSessionTTL = 24 * time.Hour

// sessionData is the server-side state behind one cookie.
type sessionData struct {
	flashes  []string
	lastSeen time.Time
}

// SessionStore is an in-memory store of flash-message sessions.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionData
	ttl      time.Duration
	secure   bool
}

// NewSessionStore creates a new in-memory session store.
// A non-positive ttl falls back to DefaultSessionTTL.
func NewSessionStore(ttl time.Duration, secureCookie bool) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]*sessionData),
		ttl:      ttl,
		secure:   secureCookie,
	}
}

// Len reports the number of live sessions.
func (ss *SessionStore) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.sessions)
}

// lookup returns the session for token, dropping it if expired.
// Caller holds ss.mu.
func (ss *SessionStore) lookup(token string, now time.Time) (*sessionData, bool) {
	d, ok := ss.sessions[token]
	if !ok {
		return nil, false
	}
	if now.Sub(d.lastSeen) > ss.ttl {
		delete(ss.sessions, token)
		return nil, false
	}
	return d, true
}

// create registers a fresh session and sweeps expired ones.
// Caller holds ss.mu.
func (ss *SessionStore) create(now time.Time) (string, *sessionData, error) {
	token, err := generateToken()
	if err != nil {
		return "", nil, err
	}
	for t, d := range ss.sessions {
		if now.Sub(d.lastSeen) > ss.ttl {
			delete(ss.sessions, t)
		}
	}
	d := &sessionData{lastSeen: now}
	ss.sessions[token] = d
	return token, d, nil
}

// Session is the per-request handle placed in the context by Sessions.
// The server-side session is created lazily on the first AddFlash, so
// cookie-less API callers never allocate one.
type Session struct {
	store *SessionStore
	w     http.ResponseWriter
	token string
}

// AddFlash queues msg for the next page render.
// PRE: called before the response headers are written
// POST: msg is stored; a session cookie is set if none existed
func (s *Session) AddFlash(msg string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	now := time.Now()
	d, ok := s.store.lookup(s.token, now)
	if !ok {
		token, fresh, err := s.store.create(now)
		if err != nil {
			return err
		}
		s.token, d = token, fresh
		setSessionCookie(s.w, token, s.store.secure, s.store.ttl)
	}
	d.flashes = append(d.flashes, msg)
	d.lastSeen = now
	return nil
}

// PopFlashes returns and clears queued messages, oldest first.
func (s *Session) PopFlashes() []string {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	d, ok := s.store.lookup(s.token, time.Now())
	if !ok {
		return nil
	}
	out := d.flashes
	d.flashes = nil
	d.lastSeen = time.Now()
	return out
}

// Sessions returns middleware that attaches a Session handle to the request context.
func Sessions(store *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := &Session{store: store, w: w}
			if cookie, err := r.Cookie(sessionCookieName); err == nil {
				sess.token = cookie.Value
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), sess)))
		})
	}
}

// SessionFromContext extracts the session handle from the request context.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(*Session)
	return sess, ok && sess != nil
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

func setSessionCookie(w http.ResponseWriter, token string, secure bool, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
	})
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
