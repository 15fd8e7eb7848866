package orchestrators

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"deleteop/internal/domain/audit"
	"deleteop/internal/domain/settings"
)

// SettingsStoreForUpdate defines the store interface needed by UpdateSettings.
type SettingsStoreForUpdate interface {
	Save(ctx context.Context, s settings.Setting) error
}

// UpdateSettingsInput carries the label values to write, keyed by setting key.
type UpdateSettingsInput struct {
	Values    map[string]string
	IPAddress string
	UserAgent string
}

// UpdateSettingsDeps holds dependencies for UpdateSettings.
type UpdateSettingsDeps struct {
	Settings SettingsStoreForUpdate
	Audit    AuditRecorder
	Now      func() time.Time
}

// ExecuteUpdateSettings validates every value, then writes them.
// PRE: Values keys are known settings keys
// POST: Nothing is written if any value is invalid
func ExecuteUpdateSettings(ctx context.Context, input UpdateSettingsInput, deps UpdateSettingsDeps) error {
	keys := make([]string, 0, len(input.Values))
	for k := range input.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	batch := make([]settings.Setting, 0, len(keys))
	for _, k := range keys {
		s := settings.Setting{Key: k, Value: strings.TrimSpace(input.Values[k])}
		if err := s.Validate(); err != nil {
			return err
		}
		batch = append(batch, s)
	}

	for _, s := range batch {
		if err := deps.Settings.Save(ctx, s); err != nil {
			return err
		}
	}

	if deps.Audit != nil && len(batch) > 0 {
		now := time.Now
		if deps.Now != nil {
			now = deps.Now
		}
		ev := audit.NewEvent(audit.CategorySettings, audit.ActionUpdate, now()).
			WithResource("setting", strings.Join(keys, ",")).
			WithDescription("Updated action labels").
			WithRequest(input.IPAddress, input.UserAgent)
		if err := deps.Audit.Save(ctx, ev); err != nil {
			slog.Error("audit_save_failed", "error", err, "action", audit.ActionUpdate)
		}
	}

	slog.Info("settings_event", "event", "settings_updated", "keys", keys)
	return nil
}
