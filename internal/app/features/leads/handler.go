// internal/app/features/leads/handler.go
package leads

import (
	"net/http"

	"github.com/jmassawe/edupath/internal/app/features/apierr"
	leadstore "github.com/jmassawe/edupath/internal/app/store/leads"
	"github.com/jmassawe/edupath/internal/app/system/authz"
	"github.com/jmassawe/edupath/internal/app/system/inputval"
	"github.com/jmassawe/edupath/internal/app/system/timeouts"
	"github.com/jmassawe/edupath/internal/app/workflow/lifecycle"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the lead intake and conversion endpoints.
type Handler struct {
	Lifecycle *lifecycle.Service
	Leads     *leadstore.Store
	Log       *zap.Logger
}

// NewHandler constructs a leads Handler.
func NewHandler(svc *lifecycle.Service, leads *leadstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Lifecycle: svc, Leads: leads, Log: logger}
}

type createRequest struct {
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Source           string `json:"source"`
	StudyGoal        string `json:"study_goal"`
	PreferredCountry string `json:"preferred_country"`
	Message          string `json:"message"`
	AssignedStaffID  string `json:"assigned_staff_id"`
}

// ServeCreate handles POST /leads.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Actor(r)
	if !ok {
		apierr.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	var req createRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	in := lifecycle.CreateLeadInput{
		FullName:         inputval.Clean(req.FullName),
		Email:            inputval.Clean(req.Email),
		Phone:            inputval.Clean(req.Phone),
		Source:           inputval.Clean(req.Source),
		StudyGoal:        inputval.Clean(req.StudyGoal),
		PreferredCountry: inputval.Clean(req.PreferredCountry),
		Message:          inputval.Clean(req.Message),
	}
	if req.AssignedStaffID != "" {
		id, err := primitive.ObjectIDFromHex(req.AssignedStaffID)
		if err != nil {
			apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid assigned_staff_id"})
			return
		}
		in.AssignedStaffID = &id
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create lead")
	defer cancel()

	lead, err := h.Lifecycle.CreateLead(ctx, actor, in)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusCreated, lead)
}

// ServeGet handles GET /leads/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lead id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get lead")
	defer cancel()

	lead, err := h.Leads.GetByID(ctx, id)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, lead)
}

// ServeList handles GET /leads?status=...&staff_id=...
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list leads")
	defer cancel()

	if staffHex := r.URL.Query().Get("staff_id"); staffHex != "" {
		staffID, err := primitive.ObjectIDFromHex(staffHex)
		if err != nil {
			apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff_id"})
			return
		}
		leads, err := h.Leads.ListByStaff(ctx, staffID)
		if err != nil {
			apierr.Write(w, err, h.Log)
			return
		}
		apierr.JSON(w, http.StatusOK, leads)
		return
	}

	leads, err := h.Leads.ListByStatus(ctx, r.URL.Query().Get("status"))
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, leads)
}

type statusRequest struct {
	Status string `json:"status"`
}

// ServeUpdateStatus handles PATCH /leads/{id}/status.
func (h *Handler) ServeUpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lead id"})
		return
	}
	var req statusRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update lead status")
	defer cancel()

	lead, err := h.Lifecycle.UpdateLeadStatus(ctx, actor, id, req.Status)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, lead)
}

type notesRequest struct {
	Notes string `json:"notes"`
}

// ServeUpdateNotes handles PATCH /leads/{id}/notes.
func (h *Handler) ServeUpdateNotes(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lead id"})
		return
	}
	var req notesRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update lead notes")
	defer cancel()

	if err := h.Lifecycle.UpdateLeadNotes(ctx, actor, id, inputval.Clean(req.Notes)); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type convertRequest struct {
	AssignedStaffID string `json:"assigned_staff_id"`
	PaymentAmount   int64  `json:"payment_amount"`
	PaymentCurrency string `json:"payment_currency"`
	ReceiptRef      string `json:"receipt_ref"`
}

// ServeConvert handles POST /leads/{id}/convert.
func (h *Handler) ServeConvert(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lead id"})
		return
	}
	var req convertRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	staffID := actor.ID
	if req.AssignedStaffID != "" {
		staffID, err = primitive.ObjectIDFromHex(req.AssignedStaffID)
		if err != nil {
			apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid assigned_staff_id"})
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "convert lead")
	defer cancel()

	student, err := h.Lifecycle.ConvertLead(ctx, actor, lifecycle.ConvertLeadInput{
		LeadID:          id,
		AssignedStaffID: staffID,
		PaymentAmount:   req.PaymentAmount,
		PaymentCurrency: req.PaymentCurrency,
		ReceiptRef:      inputval.Clean(req.ReceiptRef),
	})
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusCreated, student)
}
