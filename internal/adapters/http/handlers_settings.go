package web

import (
	"errors"
	"log/slog"
	"net/http"

	"deleteop/internal/adapters/http/middleware"
	"deleteop/internal/application/orchestrators"
	settingsDomain "deleteop/internal/domain/settings"
)

const settingsSavedMessage = "The configuration options have been saved."

type settingField struct {
	Key     string
	Value   string
	Default string
}

// handleSettingsPage renders GET /admin/settings.
func handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	renderSettings(w, r, http.StatusOK, nil, "")
}

// handleSettingsSubmit handles POST /admin/settings.
// PRE: valid CSRF token; one form field per settings key
// POST: All values saved and 303 back to the form, or 400 with nothing saved
func handleSettingsSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	values := make(map[string]string)
	for _, key := range settingsDomain.Keys() {
		if _, ok := r.PostForm[key]; ok {
			values[key] = r.PostForm.Get(key)
		}
	}

	err := orchestrators.ExecuteUpdateSettings(r.Context(), orchestrators.UpdateSettingsInput{
		Values:    values,
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}, orchestrators.UpdateSettingsDeps{
		Settings: stores.Settings,
		Audit:    stores.Audit,
	})
	if err != nil {
		if errors.Is(err, settingsDomain.ErrTooLong) || errors.Is(err, settingsDomain.ErrUnknownKey) {
			renderSettings(w, r, http.StatusBadRequest, values, err.Error())
			return
		}
		internalError(w, err)
		return
	}

	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		if err := sess.AddFlash(settingsSavedMessage); err != nil {
			slog.Error("flash_failed", "error", err)
		}
	}
	http.Redirect(w, r, "/admin/settings", http.StatusSeeOther)
}

// renderSettings shows the form. submitted, when non-nil, replaces the
// stored values so a rejected submission is not lost.
func renderSettings(w http.ResponseWriter, r *http.Request, status int, submitted map[string]string, formErr string) {
	current, err := stores.Settings.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	fields := make([]settingField, 0, len(current))
	for _, s := range current {
		def, _ := settingsDomain.Default(s.Key)
		value := s.Value
		if v, ok := submitted[s.Key]; ok {
			value = v
		}
		fields = append(fields, settingField{Key: s.Key, Value: value, Default: def})
	}

	var flashes []string
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		flashes = sess.PopFlashes()
	}

	renderTemplateStatus(w, r, status, "settings.html", map[string]any{
		"Fields":  fields,
		"Error":   formErr,
		"Flashes": flashes,
	})
}
