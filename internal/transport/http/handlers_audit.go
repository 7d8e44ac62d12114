package httptransport

import (
	"net/http"
	"strconv"

	jsonutil "hrcore/internal/transport/http/json"
	"hrcore/internal/transport/http/shared"
)

// handleAuditEvents serves the audit trail, most recent first.
func (h *Handler) handleAuditEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.reader.List(r.Context(), queryLimit(r))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

// handleSecurityIncidents serves detected incidents, most recent first.
func (h *Handler) handleSecurityIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.incidents.List(r.Context(), queryLimit(r))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{
		"incidents": incidents,
		"count":     len(incidents),
	})
}

// queryLimit parses the optional limit query parameter. Zero means "server
// default"; the services cap it anyway.
func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
