package audit

import (
	"context"
	"time"

	"deleteop/internal/adapters/storage"
	domain "deleteop/internal/domain/audit"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

const selectColumns = `SELECT id, timestamp, category, action, severity, resource_type, resource_id, description, ip_address, user_agent FROM audit_event`

// SQLiteStore implements the audit Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new audit event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an audit event.
// PRE: event has a non-empty ID
// POST: Event is persisted
func (s *SQLiteStore) Save(ctx context.Context, event domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_event (id, timestamp, category, action, severity, resource_type, resource_id, description, ip_address, user_agent)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Timestamp.UTC().Format(dateLayout), string(event.Category), string(event.Action),
		string(event.Severity), event.ResourceType, event.ResourceID, event.Description,
		event.IPAddress, event.UserAgent)
	return err
}

// List returns audit events with optional filtering.
// PRE: limit > 0
// POST: Returns events ordered by timestamp desc
func (s *SQLiteStore) List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error) {
	query := selectColumns + ` WHERE 1=1`
	args := []any{}

	if filter.Category != nil {
		query += " AND category = ?"
		args = append(args, string(*filter.Category))
	}
	if filter.Action != nil {
		query += " AND action = ?"
		args = append(args, string(*filter.Action))
	}
	if filter.ResourceType != nil {
		query += " AND resource_type = ?"
		args = append(args, *filter.ResourceType)
	}
	if filter.ResourceID != nil {
		query += " AND resource_id = ?"
		args = append(args, *filter.ResourceID)
	}
	if filter.Since != nil {
		query += " AND timestamp >= ?"
		args = append(args, *filter.Since)
	}

	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetByID retrieves a specific audit event.
// PRE: id is non-empty
// POST: Returns the event or sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Event, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	return scanEvent(row.Scan)
}

func scanEvent(scan func(dest ...any) error) (domain.Event, error) {
	var e domain.Event
	var timestamp string
	err := scan(&e.ID, &timestamp, &e.Category, &e.Action, &e.Severity,
		&e.ResourceType, &e.ResourceID, &e.Description, &e.IPAddress, &e.UserAgent)
	if err != nil {
		return domain.Event{}, err
	}
	e.Timestamp, _ = time.Parse(dateLayout, timestamp)
	return e, nil
}
