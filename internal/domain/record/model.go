package record

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxLabelLength = 255
	MaxKindLength  = 64
)

// Domain errors
var (
	ErrNotFound        = errors.New("record not found")
	ErrUnsupportedKind = errors.New("record kind does not support the delete lifecycle")
	ErrEmptyKind       = errors.New("record kind is required")
	ErrEmptyID         = errors.New("record id is required")
)

// Key identifies a persisted record by kind and id.
type Key struct {
	Kind string
	ID   string
}

// String renders the key as kind/id.
func (k Key) String() string {
	return k.Kind + "/" + k.ID
}

// Validate checks that both parts of the key are present.
// PRE: none
// POST: Returns nil if Kind and ID are non-empty
func (k Key) Validate() error {
	if strings.TrimSpace(k.Kind) == "" {
		return ErrEmptyKind
	}
	if strings.TrimSpace(k.ID) == "" {
		return ErrEmptyID
	}
	return nil
}

// Record holds the persisted state of a record taking part in the lifecycle.
type Record struct {
	Kind      string
	ID        string
	Label     string
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Key returns the composite identity of the record.
func (r *Record) Key() Key {
	return Key{Kind: r.Kind, ID: r.ID}
}

// Validate checks if the Record has valid data.
// PRE: Record struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Kind and ID must be non-empty, Label must fit MaxLabelLength
func (r *Record) Validate() error {
	if err := r.Key().Validate(); err != nil {
		return err
	}
	if len(r.Kind) > MaxKindLength {
		return fmt.Errorf("record kind cannot exceed %d characters", MaxKindLength)
	}
	if strings.TrimSpace(r.Label) == "" {
		return errors.New("record label cannot be empty")
	}
	if len(r.Label) > MaxLabelLength {
		return fmt.Errorf("record label cannot exceed %d characters", MaxLabelLength)
	}
	return nil
}

// MarkDeleted sets the soft-delete flag and keeps DeletedAt in step with it.
// POST: Deleted == value; DeletedAt set on the first transition to true, cleared on false
func (r *Record) MarkDeleted(value bool, now time.Time) {
	if value && !r.Deleted {
		r.DeletedAt = &now
	}
	if !value {
		r.DeletedAt = nil
	}
	r.Deleted = value
}

// Deletable is the capability a record exposes to the delete/purge lifecycle.
// Lifecycle handlers depend on this interface only, never on a concrete kind.
type Deletable interface {
	Key() Key
	Label() string

	// IsDeleted reports the soft-delete flag without side effects.
	IsDeleted() bool

	// SetIsDeleted changes the in-memory flag and returns the same record.
	// Nothing is persisted until Save.
	SetIsDeleted(value bool) Deletable

	// Save persists the current fields, the flag included.
	// Failures are returned as *PersistenceError.
	Save(ctx context.Context) error

	// Delete permanently removes the record. Irreversible.
	// Failures are returned as *PersistenceError.
	Delete(ctx context.Context) error
}

// PersistenceError reports that the underlying store rejected a write.
type PersistenceError struct {
	Op  string // "save" or "delete"
	Key Key
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NotFound wraps ErrNotFound with the identity that failed to resolve.
func NotFound(k Key) error {
	return fmt.Errorf("the entity with ID %s was not found: %w", k.ID, ErrNotFound)
}

// UnsupportedKind wraps ErrUnsupportedKind with the offending identity.
func UnsupportedKind(k Key) error {
	return fmt.Errorf("the entity with ID %s is not supported: %w", k.ID, ErrUnsupportedKind)
}
