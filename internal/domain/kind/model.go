package kind

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Kind describes a category of record and whether it opts into the
// delete/purge lifecycle.
//
// ID is stable and referenced by routes (/records/{kind}/...).
//
// NOTE: Lifecycle lives on the kind, not on individual records, so toggling
// it changes eligibility for every record of that kind at once.
type Kind struct {
	ID        string
	Label     string
	Lifecycle bool
}

var (
	ErrMissingID = errors.New("kind id is required")
	ErrInvalidID = errors.New("kind id must be lowercase letters, digits or underscores")
)

var idPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Validate checks required fields for a Kind.
// PRE: Kind struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (k *Kind) Validate() error {
	if k.ID == "" {
		return ErrMissingID
	}
	if !idPattern.MatchString(k.ID) {
		return ErrInvalidID
	}
	return nil
}

// DisplayLabel returns Label, falling back to ID.
// INVARIANT: k is not mutated
func (k Kind) DisplayLabel() string {
	if strings.TrimSpace(k.Label) != "" {
		return k.Label
	}
	return k.ID
}

// ParseLifecycleKinds turns a comma-separated list of kind ids into an
// explicit opt-in mapping. Blank entries are skipped and ids are lowercased.
//
// PRE: csv may be empty
// POST: Returns a map containing only opted-in kinds (value true); invalid ids are an error
func ParseLifecycleKinds(csv string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, part := range strings.Split(csv, ",") {
		id := strings.ToLower(strings.TrimSpace(part))
		if id == "" {
			continue
		}
		if !idPattern.MatchString(id) {
			return nil, fmt.Errorf("invalid kind id %q: %w", id, ErrInvalidID)
		}
		out[id] = true
	}
	return out, nil
}
