package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Label keys understood by the lifecycle forms.
const (
	KeyDeleteLabel      = "delete_label"
	KeyDeleteLabelPast  = "delete_label_past"
	KeyPurgeLabel       = "purge_label"
	KeyPurgeLabelFuture = "purge_label_future"
	KeyPurgeLabelPast   = "purge_label_past"
)

// MaxValueLength bounds a single label.
const MaxValueLength = 64

var (
	ErrUnknownKey = errors.New("unknown setting key")
	ErrTooLong    = fmt.Errorf("setting value cannot exceed %d characters", MaxValueLength)
)

var defaults = map[string]string{
	KeyDeleteLabel:      "delete",
	KeyDeleteLabelPast:  "deleted",
	KeyPurgeLabel:       "purge",
	KeyPurgeLabelFuture: "purges",
	KeyPurgeLabelPast:   "purged",
}

// Keys returns every known key in form order.
func Keys() []string {
	return []string{
		KeyDeleteLabel,
		KeyDeleteLabelPast,
		KeyPurgeLabel,
		KeyPurgeLabelFuture,
		KeyPurgeLabelPast,
	}
}

// Default returns the documented default for key.
func Default(key string) (string, bool) {
	v, ok := defaults[key]
	return v, ok
}

// Setting is one stored configuration value.
type Setting struct {
	Key   string
	Value string
}

// Validate checks the key is known and the value fits.
// PRE: none
// POST: Returns nil if Key is known and Value is within MaxValueLength
func (s *Setting) Validate() error {
	if _, ok := defaults[s.Key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, s.Key)
	}
	if len(s.Value) > MaxValueLength {
		return ErrTooLong
	}
	return nil
}

// Resolve picks the effective value for key: the stored value when it is
// non-blank, otherwise the default.
// PRE: key is a known key
// POST: Returns a non-empty label
func Resolve(key, stored string) (string, error) {
	def, ok := defaults[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if v := strings.TrimSpace(stored); v != "" {
		return v, nil
	}
	return def, nil
}

// Labels is the resolved set of action labels used in one request.
type Labels struct {
	Delete      string
	DeletePast  string
	Purge       string
	PurgeFuture string
	PurgePast   string
}

// DefaultLabels returns the labels with nothing stored.
func DefaultLabels() Labels {
	return Labels{
		Delete:      defaults[KeyDeleteLabel],
		DeletePast:  defaults[KeyDeleteLabelPast],
		Purge:       defaults[KeyPurgeLabel],
		PurgeFuture: defaults[KeyPurgeLabelFuture],
		PurgePast:   defaults[KeyPurgeLabelPast],
	}
}

// Getter reads one effective setting value.
type Getter interface {
	Get(ctx context.Context, key string) (string, error)
}

// LoadLabels resolves all five action labels through g.
// PRE: g is non-nil
// POST: Every field holds g's answer for the matching key
func LoadLabels(ctx context.Context, g Getter) (Labels, error) {
	var l Labels
	for _, f := range []struct {
		key string
		dst *string
	}{
		{KeyDeleteLabel, &l.Delete},
		{KeyDeleteLabelPast, &l.DeletePast},
		{KeyPurgeLabel, &l.Purge},
		{KeyPurgeLabelFuture, &l.PurgeFuture},
		{KeyPurgeLabelPast, &l.PurgePast},
	} {
		v, err := g.Get(ctx, f.key)
		if err != nil {
			return Labels{}, fmt.Errorf("read setting %s: %w", f.key, err)
		}
		*f.dst = v
	}
	return l, nil
}
