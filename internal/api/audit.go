package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/ventsim-core/internal/audit"
)

// handleListWrites returns journalled write batches, newest first.
//
// Query parameters:
//   - source: http or mqtt
//   - request_id: exact request ID
//   - since: RFC 3339 timestamp; only batches at or after it
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListWrites(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeNotEnabled(w, "write journal not enabled")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Source:    q.Get("source"),
		RequestID: q.Get("request_id"),
	}

	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeBadRequest(w, "since must be an RFC 3339 timestamp")
			return
		}
		filter.Since = since
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list write batches", "error", err)
		writeInternalError(w, "failed to list write batches")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
