package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"deleteop/internal/domain/audit"
	"deleteop/internal/domain/record"
	"deleteop/internal/domain/settings"
)

// Operation names one of the two lifecycle transitions.
type Operation string

const (
	OperationDelete Operation = "delete"
	OperationPurge  Operation = "purge"
)

// DefaultRedirect is where callers go once a transition completes.
const DefaultRedirect = "/"

const deleteDescription = "This action does not completely remove this entity from the database but rather marks it for future purging as needed."

// Outcome labels for deleteop_lifecycle_operations_total.
const (
	outcomeConfirm     = "confirm"
	outcomeDone        = "done"
	outcomeNotFound    = "not_found"
	outcomeUnsupported = "unsupported"
	outcomeError       = "error"
)

var lifecycleOps = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "deleteop_lifecycle_operations_total",
		Help: "Delete and purge requests, by operation, kind and outcome.",
	},
	[]string{"operation", "kind", "outcome"},
)

// RecordResolver loads a record as a lifecycle participant.
type RecordResolver interface {
	Resolve(ctx context.Context, kind, id string) (record.Deletable, error)
}

// KindPolicy answers the per-kind opt-in question.
type KindPolicy interface {
	SupportsLifecycle(ctx context.Context, kind string) (bool, error)
}

// SettingsReader returns configured labels, defaults applied.
type SettingsReader = settings.Getter

// Notifier reports an outcome message to the initiating user.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// AuditRecorder persists audit events.
type AuditRecorder interface {
	Save(ctx context.Context, event audit.Event) error
}

// LifecycleInput identifies the record and whether the caller has confirmed.
type LifecycleInput struct {
	KindID    string
	RecordID  string
	Confirmed bool
	IPAddress string
	UserAgent string
}

// LifecycleDeps holds the collaborators for both lifecycle operations.
// Audit and Now are optional.
type LifecycleDeps struct {
	Records  RecordResolver
	Kinds    KindPolicy
	Settings SettingsReader
	Notifier Notifier
	Audit    AuditRecorder
	Now      func() time.Time
}

// LifecycleResult is either a confirmation prompt (Done=false) or the
// outcome of a completed transition (Done=true).
type LifecycleResult struct {
	Operation   Operation
	Label       string
	Question    string
	Description string
	ConfirmText string
	Message     string
	Redirect    string
	Done        bool
}

// ExecuteRequestDelete soft-deletes a record.
// PRE: deps.Records, deps.Kinds, deps.Settings and deps.Notifier are non-nil
// POST: Confirmed=false returns the prompt and mutates nothing
// POST: Confirmed=true persists IsDeleted()==true and notifies the outcome
// INVARIANT: kinds that have not opted in are refused whether or not the record exists
func ExecuteRequestDelete(ctx context.Context, input LifecycleInput, deps LifecycleDeps) (LifecycleResult, error) {
	return executeLifecycle(ctx, OperationDelete, input, deps)
}

// ExecuteRequestPurge permanently removes a record. A prior soft delete is
// not required.
// PRE: deps.Records, deps.Kinds, deps.Settings and deps.Notifier are non-nil
// POST: Confirmed=false returns the prompt and mutates nothing
// POST: Confirmed=true removes the record so that it no longer resolves
func ExecuteRequestPurge(ctx context.Context, input LifecycleInput, deps LifecycleDeps) (LifecycleResult, error) {
	return executeLifecycle(ctx, OperationPurge, input, deps)
}

func executeLifecycle(ctx context.Context, op Operation, input LifecycleInput, deps LifecycleDeps) (LifecycleResult, error) {
	key := record.Key{Kind: input.KindID, ID: input.RecordID}

	supported, err := deps.Kinds.SupportsLifecycle(ctx, input.KindID)
	if err != nil {
		lifecycleOps.WithLabelValues(string(op), "other", outcomeError).Inc()
		return LifecycleResult{}, fmt.Errorf("check kind %q: %w", input.KindID, err)
	}
	if !supported {
		lifecycleOps.WithLabelValues(string(op), "other", outcomeUnsupported).Inc()
		return LifecycleResult{}, record.UnsupportedKind(key)
	}

	rec, err := deps.Records.Resolve(ctx, input.KindID, input.RecordID)
	if err != nil {
		outcome := outcomeError
		if errors.Is(err, record.ErrNotFound) {
			outcome = outcomeNotFound
		}
		lifecycleOps.WithLabelValues(string(op), input.KindID, outcome).Inc()
		return LifecycleResult{}, err
	}

	labels, err := settings.LoadLabels(ctx, deps.Settings)
	if err != nil {
		lifecycleOps.WithLabelValues(string(op), input.KindID, outcomeError).Inc()
		return LifecycleResult{}, err
	}

	result := LifecycleResult{Operation: op, Label: rec.Label()}
	if !input.Confirmed {
		result.Question, result.Description, result.ConfirmText = confirmation(op, labels, rec.Label())
		lifecycleOps.WithLabelValues(string(op), input.KindID, outcomeConfirm).Inc()
		return result, nil
	}

	var past string
	switch op {
	case OperationDelete:
		err = rec.SetIsDeleted(true).Save(ctx)
		past = labels.DeletePast
	case OperationPurge:
		err = rec.Delete(ctx)
		past = labels.PurgePast
	default:
		err = fmt.Errorf("unknown lifecycle operation %q", op)
	}
	if err != nil {
		lifecycleOps.WithLabelValues(string(op), input.KindID, outcomeError).Inc()
		slog.Error("record_event", "event", "record_"+string(op)+"_failed", "kind", key.Kind, "record_id", key.ID, "error", err)
		return LifecycleResult{}, err
	}

	result.Message = fmt.Sprintf(`The entity "%s" has been %s.`, rec.Label(), past)
	result.Redirect = DefaultRedirect
	result.Done = true

	deps.Notifier.Notify(ctx, result.Message)
	recordLifecycleAudit(ctx, op, key, result.Message, input, deps)
	lifecycleOps.WithLabelValues(string(op), input.KindID, outcomeDone).Inc()
	slog.Info("record_event", "event", pastEvent(op), "kind", key.Kind, "record_id", key.ID)

	return result, nil
}

// confirmation builds the question, description and button text for op.
func confirmation(op Operation, labels settings.Labels, recordLabel string) (question, description, confirmText string) {
	switch op {
	case OperationPurge:
		question = fmt.Sprintf(`Are you sure you want to %s "%s"?`, labels.Purge, recordLabel)
		description = fmt.Sprintf("This action cannot be undone and %s the entity from the database.", labels.PurgeFuture)
		confirmText = "Purge"
	default:
		question = fmt.Sprintf(`Are you sure you want to %s "%s"?`, labels.Delete, recordLabel)
		description = deleteDescription
		confirmText = "Delete"
	}
	return question, description, confirmText
}

// recordLifecycleAudit is best effort; the transition has already happened.
func recordLifecycleAudit(ctx context.Context, op Operation, key record.Key, message string, input LifecycleInput, deps LifecycleDeps) {
	if deps.Audit == nil {
		return
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	action, severity := audit.ActionDelete, audit.SeverityInfo
	if op == OperationPurge {
		action, severity = audit.ActionPurge, audit.SeverityWarning
	}
	ev := audit.NewEvent(audit.CategoryRecord, action, now()).
		WithSeverity(severity).
		WithResource(key.Kind, key.ID).
		WithDescription(message).
		WithRequest(input.IPAddress, input.UserAgent)
	if err := deps.Audit.Save(ctx, ev); err != nil {
		slog.Error("audit_save_failed", "error", err, "action", action, "resource", key.String())
	}
}

func pastEvent(op Operation) string {
	if op == OperationPurge {
		return "record_purged"
	}
	return "record_deleted"
}
