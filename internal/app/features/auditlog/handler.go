// internal/app/features/auditlog/handler.go
package auditlog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jmassawe/edupath/internal/app/features/apierr"
	auditstore "github.com/jmassawe/edupath/internal/app/store/audit"
	"github.com/jmassawe/edupath/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves read-only views over the audit trail.
type Handler struct {
	Audit *auditstore.Store
	Log   *zap.Logger
}

// NewHandler constructs an auditlog Handler.
func NewHandler(audit *auditstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Audit: audit, Log: logger}
}

const defaultLimit = 100

// ServeQuery handles GET /audit with optional filters:
// entity_type, entity_id, actor_id, action, override, start, end,
// limit, offset. Timestamps are RFC 3339.
func (h *Handler) ServeQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := auditstore.QueryFilter{
		EntityType: q.Get("entity_type"),
		Action:     q.Get("action"),
		Limit:      defaultLimit,
	}

	if hex := q.Get("entity_id"); hex != "" {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entity_id"})
			return
		}
		filter.EntityID = &id
	}
	if hex := q.Get("actor_id"); hex != "" {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid actor_id"})
			return
		}
		filter.ActorID = &id
	}
	if s := q.Get("override"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid override"})
			return
		}
		filter.Override = &b
	}
	if s := q.Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start time"})
			return
		}
		filter.StartTime = &t
	}
	if s := q.Get("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end time"})
			return
		}
		filter.EndTime = &t
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 1 || n > 1000 {
			apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be 1-1000"})
			return
		}
		filter.Limit = n
	}
	if s := q.Get("offset"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 0 {
			apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offset"})
			return
		}
		filter.Offset = n
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "query audit log")
	defer cancel()

	entries, err := h.Audit.Query(ctx, filter)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, entries)
}
