package web

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"deleteop/internal/adapters/http/middleware"
	"deleteop/internal/adapters/notify"
	auditStore "deleteop/internal/adapters/storage/audit"
	kindStore "deleteop/internal/adapters/storage/kind"
	recordStore "deleteop/internal/adapters/storage/record"
	settingsStore "deleteop/internal/adapters/storage/settings"
	"deleteop/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	Records  recordStore.Store
	Kinds    kindStore.Store
	Settings settingsStore.Store
	Audit    auditStore.Store
}

// Options configures NewMux.
type Options struct {
	// CSRFKey must be 32 bytes.
	CSRFKey        []byte
	SecureCookies  bool
	TrustedOrigins []string

	// RateLimit is requests per second per IP; 0 disables limiting.
	RateLimit     int
	SlowRequestMs int
	SessionTTL    time.Duration

	// Notifier receives lifecycle outcome messages. Nil means flash + log.
	Notifier notify.Notifier
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global notifier instance (set by NewMux)
var notifier notify.Notifier

// NewMux wires HTTP handlers for the app.
// PRE: s has every store set; len(opts.CSRFKey) == 32
// POST: Returns the fully wrapped handler
func NewMux(s *Stores, opts Options) http.Handler {
	stores = s
	sessions = middleware.NewSessionStore(opts.SessionTTL, opts.SecureCookies)
	notifier = opts.Notifier
	if notifier == nil {
		notifier = notify.Multi{notify.FlashNotifier{}, notify.LogNotifier{}}
	}

	mux := http.NewServeMux()
	registerRoutes(mux)

	var limiter *middleware.RateLimiter
	if opts.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(opts.RateLimit, time.Second)
	}

	// Timing wraps the mux directly so it sees the matched route pattern.
	// Request order: SecurityHeaders -> RateLimit -> CSRF -> Sessions -> Timing -> Mux
	return middleware.Chain(mux,
		middleware.Timing(opts.SlowRequestMs),
		middleware.Sessions(sessions),
		middleware.CSRF(opts.CSRFKey, middleware.CSRFOptions{
			Secure:         opts.SecureCookies,
			TrustedOrigins: opts.TrustedOrigins,
		}),
		middleware.RateLimit(limiter),
		middleware.SecurityHeaders,
	)
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleFrontPage)
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Confirmation forms
	mux.HandleFunc("GET /records/{kind}/{id}/delete", handleConfirmPage(orchestrators.OperationDelete))
	mux.HandleFunc("POST /records/{kind}/{id}/delete", handleConfirmSubmit(orchestrators.OperationDelete))
	mux.HandleFunc("GET /records/{kind}/{id}/purge", handleConfirmPage(orchestrators.OperationPurge))
	mux.HandleFunc("POST /records/{kind}/{id}/purge", handleConfirmSubmit(orchestrators.OperationPurge))

	// Settings
	mux.HandleFunc("GET /admin/settings", handleSettingsPage)
	mux.HandleFunc("POST /admin/settings", handleSettingsSubmit)

	// JSON API
	mux.HandleFunc("POST /api/records", handleCreateRecord)
	mux.HandleFunc("GET /api/records/{kind}/{id}", handleGetRecord)
	mux.HandleFunc("POST /api/records/{kind}/{id}/delete", handleLifecycleAPI(orchestrators.OperationDelete))
	mux.HandleFunc("POST /api/records/{kind}/{id}/purge", handleLifecycleAPI(orchestrators.OperationPurge))
	mux.HandleFunc("GET /api/kinds", handleListKinds)
	mux.HandleFunc("GET /api/audit", handleListAudit)
}
