// internal/app/features/commissions/handler.go
package commissions

import (
	"net/http"

	"github.com/jmassawe/edupath/internal/app/features/apierr"
	commissionstore "github.com/jmassawe/edupath/internal/app/store/commissions"
	"github.com/jmassawe/edupath/internal/app/system/authz"
	"github.com/jmassawe/edupath/internal/app/system/timeouts"
	"github.com/jmassawe/edupath/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves commission earnings views.
type Handler struct {
	Commissions *commissionstore.Store
	Log         *zap.Logger
}

// NewHandler constructs a commissions Handler.
func NewHandler(commissions *commissionstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Commissions: commissions, Log: logger}
}

// ServeListByStaff handles GET /commissions?staff_id=...
// Staff see their own records; admins may query any staff member.
func (h *Handler) ServeListByStaff(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)

	staffID := actor.ID
	if hex := r.URL.Query().Get("staff_id"); hex != "" {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff_id"})
			return
		}
		if id != actor.ID && actor.Role != models.RoleAdmin {
			apierr.JSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
			return
		}
		staffID = id
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list commissions")
	defer cancel()

	records, err := h.Commissions.ListByStaff(ctx, staffID)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	var total int64
	for _, rec := range records {
		total += rec.Amount
	}
	apierr.JSON(w, http.StatusOK, map[string]any{
		"commissions": records,
		"total":       total,
	})
}
