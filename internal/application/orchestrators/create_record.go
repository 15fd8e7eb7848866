package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"deleteop/internal/domain/audit"
	"deleteop/internal/domain/kind"
	"deleteop/internal/domain/record"
)

// ErrUnknownKind is returned when a record is created for a kind that has
// never been registered.
var ErrUnknownKind = errors.New("unknown record kind")

// ErrInvalidRecord wraps field validation failures on create.
var ErrInvalidRecord = errors.New("invalid record")

// RecordStoreForCreate defines the store interface needed by CreateRecord.
type RecordStoreForCreate interface {
	Create(ctx context.Context, r record.Record) error
}

// KindListerForCreate defines the kind lookup needed by CreateRecord.
type KindListerForCreate interface {
	List(ctx context.Context) ([]kind.Kind, error)
}

// CreateRecordInput carries input for the create orchestrator.
// ID is generated when empty.
type CreateRecordInput struct {
	Kind      string
	ID        string
	Label     string
	IPAddress string
	UserAgent string
}

// CreateRecordDeps holds dependencies for CreateRecord.
type CreateRecordDeps struct {
	Records    RecordStoreForCreate
	Kinds      KindListerForCreate
	Audit      AuditRecorder
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteCreateRecord registers a new active record.
// PRE: Kind is a registered kind; Label is non-blank
// POST: Record persisted with Deleted=false
func ExecuteCreateRecord(ctx context.Context, input CreateRecordInput, deps CreateRecordDeps) (record.Record, error) {
	genID := deps.GenerateID
	if genID == nil {
		genID = uuid.NewString
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	r := record.Record{
		Kind:  strings.TrimSpace(input.Kind),
		ID:    strings.TrimSpace(input.ID),
		Label: strings.TrimSpace(input.Label),
	}
	if r.ID == "" {
		r.ID = genID()
	}
	if err := r.Validate(); err != nil {
		return record.Record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	kinds, err := deps.Kinds.List(ctx)
	if err != nil {
		return record.Record{}, err
	}
	if !containsKind(kinds, r.Kind) {
		return record.Record{}, fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
	}

	r.CreatedAt = now().UTC()
	r.UpdatedAt = r.CreatedAt
	if err := deps.Records.Create(ctx, r); err != nil {
		return record.Record{}, err
	}

	if deps.Audit != nil {
		ev := audit.NewEvent(audit.CategoryRecord, audit.ActionCreate, r.CreatedAt).
			WithResource(r.Kind, r.ID).
			WithDescription(r.Label).
			WithRequest(input.IPAddress, input.UserAgent)
		if err := deps.Audit.Save(ctx, ev); err != nil {
			slog.Error("audit_save_failed", "error", err, "action", audit.ActionCreate, "resource", r.Key().String())
		}
	}

	slog.Info("record_event", "event", "record_created", "kind", r.Kind, "record_id", r.ID)
	return r, nil
}

func containsKind(kinds []kind.Kind, id string) bool {
	for _, k := range kinds {
		if k.ID == id {
			return true
		}
	}
	return false
}
