package web

import (
	"context"
	"errors"
	"io"
	"net/http"

	"deleteop/internal/adapters/http/middleware"
	"deleteop/internal/application/orchestrators"
	"deleteop/internal/domain/record"
)

type lifecycleFunc func(ctx context.Context, input orchestrators.LifecycleInput, deps orchestrators.LifecycleDeps) (orchestrators.LifecycleResult, error)

func lifecycleFor(op orchestrators.Operation) lifecycleFunc {
	if op == orchestrators.OperationPurge {
		return orchestrators.ExecuteRequestPurge
	}
	return orchestrators.ExecuteRequestDelete
}

func lifecycleDeps() orchestrators.LifecycleDeps {
	return orchestrators.LifecycleDeps{
		Records:  stores.Records,
		Kinds:    stores.Kinds,
		Settings: stores.Settings,
		Notifier: notifier,
		Audit:    stores.Audit,
	}
}

func lifecycleInput(r *http.Request, confirmed bool) orchestrators.LifecycleInput {
	return orchestrators.LifecycleInput{
		KindID:    r.PathValue("kind"),
		RecordID:  r.PathValue("id"),
		Confirmed: confirmed,
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// lifecycleStatus maps a lifecycle error to an HTTP status.
// Persistence failures are server errors even when the row vanished mid-way.
func lifecycleStatus(err error) int {
	var perr *record.PersistenceError
	switch {
	case errors.As(err, &perr):
		return http.StatusInternalServerError
	case errors.Is(err, record.ErrNotFound), errors.Is(err, record.ErrUnsupportedKind):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// handleConfirmPage renders GET /records/{kind}/{id}/delete|purge.
// PRE: none
// POST: Renders the confirmation form; nothing is mutated
func handleConfirmPage(op orchestrators.Operation) http.HandlerFunc {
	execute := lifecycleFor(op)
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := execute(r.Context(), lifecycleInput(r, false), lifecycleDeps())
		if err != nil {
			if lifecycleStatus(err) == http.StatusNotFound {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			internalError(w, err)
			return
		}

		renderTemplate(w, r, "confirm.html", map[string]any{
			"Result":    result,
			"Action":    r.URL.EscapedPath(),
			"CancelURL": orchestrators.DefaultRedirect,
		})
	}
}

// handleConfirmSubmit handles the confirmed form POST.
// PRE: valid CSRF token
// POST: Transition performed, outcome flashed, 303 to the redirect target
func handleConfirmSubmit(op orchestrators.Operation) http.HandlerFunc {
	execute := lifecycleFor(op)
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := execute(r.Context(), lifecycleInput(r, true), lifecycleDeps())
		if err != nil {
			if lifecycleStatus(err) == http.StatusNotFound {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			internalError(w, err)
			return
		}
		http.Redirect(w, r, result.Redirect, http.StatusSeeOther)
	}
}

type lifecycleRequest struct {
	Confirmed bool `json:"confirmed"`
}

type lifecycleResponse struct {
	Question    string `json:"question,omitempty"`
	Description string `json:"description,omitempty"`
	ConfirmText string `json:"confirm_text,omitempty"`
	Message     string `json:"message,omitempty"`
	Redirect    string `json:"redirect,omitempty"`
}

// handleLifecycleAPI handles POST /api/records/{kind}/{id}/delete|purge.
// An empty body is treated as {"confirmed": false}.
// PRE: Content-Type is application/json
// POST: 200 with the prompt or the outcome; 404 not found/unsupported; 500 persistence failure
func handleLifecycleAPI(op orchestrators.Operation) http.HandlerFunc {
	execute := lifecycleFor(op)
	return func(w http.ResponseWriter, r *http.Request) {
		var req lifecycleRequest
		if err := strictDecode(r, &req); err != nil && !errors.Is(err, io.EOF) {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		// API callers get the message in the response; no flash session.
		ctx := middleware.ContextWithSession(r.Context(), nil)
		result, err := execute(ctx, lifecycleInput(r, req.Confirmed), lifecycleDeps())
		if err != nil {
			writeJSONError(w, lifecycleStatus(err), err.Error())
			return
		}

		if !result.Done {
			writeJSON(w, http.StatusOK, lifecycleResponse{
				Question:    result.Question,
				Description: result.Description,
				ConfirmText: result.ConfirmText,
			})
			return
		}
		writeJSON(w, http.StatusOK, lifecycleResponse{
			Message:  result.Message,
			Redirect: result.Redirect,
		})
	}
}
