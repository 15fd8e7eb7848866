package web

import (
	"errors"
	"net/http"
	"strconv"

	"deleteop/internal/adapters/http/middleware"
	auditStore "deleteop/internal/adapters/storage/audit"
	recordStore "deleteop/internal/adapters/storage/record"
	"deleteop/internal/application/orchestrators"
	auditDomain "deleteop/internal/domain/audit"
	"deleteop/internal/domain/record"
)

type createRecordRequest struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	Label string `json:"label"`
}

// handleCreateRecord handles POST /api/records.
// PRE: JSON body with kind and label; id optional
// POST: 201 with the record; 400 invalid or unknown kind; 409 duplicate key
func handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := strictDecode(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := orchestrators.ExecuteCreateRecord(r.Context(), orchestrators.CreateRecordInput{
		Kind:      req.Kind,
		ID:        req.ID,
		Label:     req.Label,
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}, orchestrators.CreateRecordDeps{
		Records: stores.Records,
		Kinds:   stores.Kinds,
		Audit:   stores.Audit,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, toRecordJSON(rec))
	case errors.Is(err, orchestrators.ErrInvalidRecord), errors.Is(err, orchestrators.ErrUnknownKind):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, recordStore.ErrConflict):
		writeJSONError(w, http.StatusConflict, err.Error())
	default:
		internalError(w, err)
	}
}

// handleGetRecord handles GET /api/records/{kind}/{id}.
func handleGetRecord(w http.ResponseWriter, r *http.Request) {
	key := record.Key{Kind: r.PathValue("kind"), ID: r.PathValue("id")}
	rec, err := stores.Records.GetByKey(r.Context(), key)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordJSON(rec))
}

type kindJSON struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Lifecycle bool   `json:"lifecycle"`
}

// handleListKinds handles GET /api/kinds.
func handleListKinds(w http.ResponseWriter, r *http.Request) {
	kinds, err := stores.Kinds.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]kindJSON, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, kindJSON{ID: k.ID, Label: k.DisplayLabel(), Lifecycle: k.Lifecycle})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleListAudit handles GET /api/audit.
// Query: category, action, resource_type, resource_id, since, limit (default 100, max 1000).
func handleListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := auditStore.Filter{}

	if category := q.Get("category"); category != "" {
		cat := auditDomain.Category(category)
		filter.Category = &cat
	}
	if action := q.Get("action"); action != "" {
		act := auditDomain.Action(action)
		filter.Action = &act
	}
	if resourceType := q.Get("resource_type"); resourceType != "" {
		filter.ResourceType = &resourceType
	}
	if resourceID := q.Get("resource_id"); resourceID != "" {
		filter.ResourceID = &resourceID
	}
	if since := q.Get("since"); since != "" {
		filter.Since = &since
	}

	limit := 100
	if limitStr := q.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	events, err := stores.Audit.List(r.Context(), filter, limit)
	if err != nil {
		internalError(w, err)
		return
	}
	if events == nil {
		events = []auditDomain.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
