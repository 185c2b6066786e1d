// internal/app/features/unlocks/handler.go
package unlocks

import (
	"net/http"

	"github.com/jmassawe/edupath/internal/app/features/apierr"
	unlockstore "github.com/jmassawe/edupath/internal/app/store/unlocks"
	"github.com/jmassawe/edupath/internal/app/system/authz"
	"github.com/jmassawe/edupath/internal/app/system/inputval"
	"github.com/jmassawe/edupath/internal/app/system/timeouts"
	"github.com/jmassawe/edupath/internal/app/workflow/unlock"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the field-unlock request queue.
type Handler struct {
	Unlocks  *unlock.Manager
	Requests *unlockstore.Store
	Log      *zap.Logger
}

// NewHandler constructs an unlocks Handler.
func NewHandler(mgr *unlock.Manager, requests *unlockstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Unlocks: mgr, Requests: requests, Log: logger}
}

type requestUnlock struct {
	StudentID string   `json:"student_id"`
	Fields    []string `json:"fields"`
	Reason    string   `json:"reason"`
}

// ServeRequest handles POST /unlocks (staff).
func (h *Handler) ServeRequest(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	var req requestUnlock
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	studentID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid student_id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "request unlock")
	defer cancel()

	ur, err := h.Unlocks.RequestUnlock(ctx, actor, studentID, inputval.CleanAll(req.Fields), inputval.Clean(req.Reason))
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusCreated, ur)
}

// ServeListPending handles GET /unlocks/pending (admin).
func (h *Handler) ServeListPending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list pending unlocks")
	defer cancel()

	list, err := h.Requests.ListPending(ctx)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, list)
}

// ServeListByStudent handles GET /unlocks?student_id=...
func (h *Handler) ServeListByStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("student_id"))
	if err != nil {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid student_id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list unlocks by student")
	defer cancel()

	list, err := h.Requests.ListByStudent(ctx, studentID)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, list)
}

type resolveRequest struct {
	Approve bool `json:"approve"`
}

// ServeResolve handles POST /unlocks/{id}/resolve (admin).
func (h *Handler) ServeResolve(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request id"})
		return
	}
	var req resolveRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "resolve unlock")
	defer cancel()

	if err := h.Unlocks.ResolveUnlock(ctx, actor, id, req.Approve); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
