package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"deleteop/internal/adapters/http/middleware"
	"deleteop/internal/domain/record"
)

//go:embed templates/*.html
var templateFS embed.FS

// recentRecordLimit bounds the front page list.
const recentRecordLimit = 50

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json_encode_failed", "error", err)
	}
}

// writeJSONError writes {"error": msg}.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	renderTemplateStatus(w, r, http.StatusOK, templateName, data)
}

func renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	funcMap := template.FuncMap{
		"csrfField":      func() template.HTML { return csrf.TemplateField(r) },
		"renderMarkdown": renderMarkdown,
		"recordPath":     recordPath,
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// handleFrontPage renders GET /: pending flash messages and recent records.
func handleFrontPage(w http.ResponseWriter, r *http.Request) {
	var flashes []string
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		flashes = sess.PopFlashes()
	}

	records, err := stores.Records.ListRecent(r.Context(), recentRecordLimit)
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "front.html", map[string]any{
		"Flashes": flashes,
		"Records": records,
	})
}

// handleHealthz reports liveness and database reachability.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if _, err := stores.Records.ListRecent(r.Context(), 1); err != nil {
		slog.Error("healthz_failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// recordJSON is the API view of a record.
type recordJSON struct {
	Kind      string  `json:"kind"`
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	Deleted   bool    `json:"deleted"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	DeletedAt *string `json:"deleted_at,omitempty"`
}

func toRecordJSON(r record.Record) recordJSON {
	out := recordJSON{
		Kind:      r.Kind,
		ID:        r.ID,
		Label:     r.Label,
		Deleted:   r.Deleted,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if r.DeletedAt != nil {
		s := r.DeletedAt.UTC().Format(time.RFC3339)
		out.DeletedAt = &s
	}
	return out
}

// recordPath builds the confirm page URL for op on a record. Kind and id are
// escaped so ids holding '?', '#' or '/' still route.
func recordPath(kind, id, op string) string {
	return "/records/" + url.PathEscape(kind) + "/" + url.PathEscape(id) + "/" + op
}
