// internal/app/features/contracts/handler.go
package contracts

import (
	"net/http"
	"time"

	"github.com/jmassawe/edupath/internal/app/features/apierr"
	contractstore "github.com/jmassawe/edupath/internal/app/store/contracts"
	"github.com/jmassawe/edupath/internal/app/system/authz"
	"github.com/jmassawe/edupath/internal/app/system/inputval"
	"github.com/jmassawe/edupath/internal/app/system/timeouts"
	"github.com/jmassawe/edupath/internal/app/workflow/lifecycle"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the service-contract endpoints.
type Handler struct {
	Lifecycle *lifecycle.Service
	Contracts *contractstore.Store
	Log       *zap.Logger
}

// NewHandler constructs a contracts Handler.
func NewHandler(svc *lifecycle.Service, contracts *contractstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Lifecycle: svc, Contracts: contracts, Log: logger}
}

func pathID(r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	return id, err == nil
}

type createRequest struct {
	StudentID string     `json:"student_id"`
	Amount    int64      `json:"amount"`
	Currency  string     `json:"currency"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// ServeCreate handles POST /contracts.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	var req createRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	studentID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid student_id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create contract")
	defer cancel()

	c, err := h.Lifecycle.CreateContract(ctx, actor, lifecycle.CreateContractInput{
		StudentID: studentID,
		Amount:    req.Amount,
		Currency:  inputval.Clean(req.Currency),
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusCreated, c)
}

// ServeGet handles GET /contracts/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid contract id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get contract")
	defer cancel()

	c, err := h.Contracts.GetByID(ctx, id)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, c)
}

// ServeListByStudent handles GET /contracts?student_id=...
func (h *Handler) ServeListByStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("student_id"))
	if err != nil {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid student_id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list contracts")
	defer cancel()

	list, err := h.Contracts.ListByStudent(ctx, studentID)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, list)
}

type statusRequest struct {
	Status string `json:"status"`
}

// ServeAdvance handles PATCH /contracts/{id}/status.
func (h *Handler) ServeAdvance(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid contract id"})
		return
	}
	var req statusRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "advance contract")
	defer cancel()

	if err := h.Lifecycle.AdvanceContract(ctx, actor, id, req.Status); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ServeSign handles POST /contracts/{id}/sign. Signing books the staff
// commission in the same unit of work.
func (h *Handler) ServeSign(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid contract id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "sign contract")
	defer cancel()

	if err := h.Lifecycle.SignContract(ctx, actor, id); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// ServeCancel handles POST /contracts/{id}/cancel (admin override).
func (h *Handler) ServeCancel(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid contract id"})
		return
	}
	var req cancelRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "cancel contract")
	defer cancel()

	if err := h.Lifecycle.CancelContract(ctx, actor, id, inputval.Clean(req.Reason)); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
