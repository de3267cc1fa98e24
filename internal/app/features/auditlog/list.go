// internal/app/features/auditlog/list.go
package auditlog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/hsms/internal/app/store/audit"
	"github.com/dalemusser/hsms/internal/app/system/authz"
	"github.com/dalemusser/hsms/internal/app/system/jsonutil"
	"github.com/dalemusser/hsms/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

type eventRow struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"event_type"`
	Actor         string            `json:"actor,omitempty"`
	TargetID      string            `json:"target_id,omitempty"`
	IP            string            `json:"ip,omitempty"`
	RequestID     string            `json:"request_id,omitempty"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

type listResponse struct {
	Events []eventRow `json:"events"`
	Total  int64      `json:"total"`
}

// ServeList handles GET /audit?username=. Filters: category, event_type,
// actor, target_id, start_date and end_date (YYYY-MM-DD, UTC, inclusive)
// and limit. Newest events first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if _, err := h.Guard.Check(r.Context(), q.Get("username"), OpView); err != nil {
		if errors.Is(err, authz.ErrUnauthorized) {
			jsonutil.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		h.Log.Error("audit log authorization failed", zap.Error(err), zap.String("path", r.URL.Path))
		jsonutil.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	filter, err := parseFilter(q.Get)
	if err != nil {
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err), zap.String("path", r.URL.Path))
		jsonutil.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.Log.Error("failed to count audit events", zap.Error(err), zap.String("path", r.URL.Path))
		jsonutil.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	rows := make([]eventRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, eventRow{
			ID:            e.ID.Hex(),
			Timestamp:     e.Timestamp.UTC(),
			Category:      e.Category,
			EventType:     e.EventType,
			Actor:         e.Actor,
			TargetID:      e.TargetID,
			IP:            e.IP,
			RequestID:     e.RequestID,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		})
	}
	jsonutil.Write(w, http.StatusOK, listResponse{Events: rows, Total: total})
}

func parseFilter(get func(string) string) (audit.QueryFilter, error) {
	filter := audit.QueryFilter{
		Category:  strings.TrimSpace(get("category")),
		EventType: strings.TrimSpace(get("event_type")),
		Actor:     strings.TrimSpace(get("actor")),
		TargetID:  strings.TrimSpace(get("target_id")),
		Limit:     defaultLimit,
	}

	if s := strings.TrimSpace(get("limit")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return filter, errors.New("limit must be a positive integer")
		}
		filter.Limit = int64(min(n, maxLimit))
	}
	if s := strings.TrimSpace(get("start_date")); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return filter, errors.New("start_date must be YYYY-MM-DD")
		}
		filter.StartTime = &t
	}
	if s := strings.TrimSpace(get("end_date")); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return filter, errors.New("end_date must be YYYY-MM-DD")
		}
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &endOfDay
	}
	return filter, nil
}
