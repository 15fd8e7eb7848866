package audit

import (
	"time"

	"github.com/google/uuid"
)

// Category represents the area an audit event belongs to.
type Category string

const (
	CategoryRecord   Category = "record"
	CategorySettings Category = "settings"
	CategorySystem   Category = "system"
)

// Action represents the action that occurred.
type Action string

const (
	ActionCreate Action = "create"
	ActionDelete Action = "delete"
	ActionPurge  Action = "purge"
	ActionUpdate Action = "update"
)

// Severity represents the severity level of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Event represents a single audit log entry.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	Severity     Severity  `json:"severity"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	Description  string    `json:"description"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
}

// NewEvent creates a new audit event stamped with now.
// PRE: category and action are non-empty
// POST: Returns an Event with a fresh UUID and SeverityInfo
func NewEvent(category Category, action Action, now time.Time) Event {
	return Event{
		ID:        uuid.New().String(),
		Timestamp: now,
		Category:  category,
		Action:    action,
		Severity:  SeverityInfo,
	}
}

// WithSeverity sets the severity level.
func (e Event) WithSeverity(s Severity) Event {
	e.Severity = s
	return e
}

// WithResource sets resource information.
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets the event description.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}

// WithRequest sets IP address and user agent of the initiating request.
func (e Event) WithRequest(ipAddress, userAgent string) Event {
	e.IPAddress = ipAddress
	e.UserAgent = userAgent
	return e
}
