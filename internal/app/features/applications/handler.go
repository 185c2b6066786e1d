// internal/app/features/applications/handler.go
package applications

import (
	"net/http"

	"github.com/jmassawe/edupath/internal/app/features/apierr"
	applicationstore "github.com/jmassawe/edupath/internal/app/store/applications"
	"github.com/jmassawe/edupath/internal/app/system/authz"
	"github.com/jmassawe/edupath/internal/app/system/inputval"
	"github.com/jmassawe/edupath/internal/app/system/timeouts"
	"github.com/jmassawe/edupath/internal/app/workflow/lifecycle"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the university application endpoints.
type Handler struct {
	Lifecycle    *lifecycle.Service
	Applications *applicationstore.Store
	Log          *zap.Logger
}

// NewHandler constructs an applications Handler.
func NewHandler(svc *lifecycle.Service, apps *applicationstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Lifecycle: svc, Applications: apps, Log: logger}
}

func pathID(r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	return id, err == nil
}

type createRequest struct {
	StudentID    string `json:"student_id"`
	UniversityID string `json:"university_id"`
	Program      string `json:"program"`
	Batch        int    `json:"batch"`
	Priority     int    `json:"priority"`
}

// ServeCreate handles POST /applications.
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
	universityID, err := primitive.ObjectIDFromHex(req.UniversityID)
	if err != nil {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid university_id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create application")
	defer cancel()

	app, err := h.Lifecycle.CreateApplication(ctx, actor, lifecycle.CreateApplicationInput{
		StudentID:    studentID,
		UniversityID: universityID,
		Program:      inputval.Clean(req.Program),
		Batch:        req.Batch,
		Priority:     req.Priority,
	})
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusCreated, app)
}

// ServeGet handles GET /applications/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid application id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get application")
	defer cancel()

	app, err := h.Applications.GetByID(ctx, id)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, app)
}

// ServeListByStudent handles GET /applications?student_id=...
func (h *Handler) ServeListByStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("student_id"))
	if err != nil {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid student_id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list applications")
	defer cancel()

	apps, err := h.Applications.ListByStudent(ctx, studentID)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, apps)
}

// ServeSubmit handles POST /applications/{id}/submit.
func (h *Handler) ServeSubmit(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid application id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "submit application")
	defer cancel()

	if err := h.Lifecycle.SubmitApplicationToAdmin(ctx, actor, id); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type reviewRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

// ServeReview handles POST /applications/{id}/review (admin).
func (h *Handler) ServeReview(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid application id"})
		return
	}
	var req reviewRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "review application")
	defer cancel()

	if err := h.Lifecycle.ReviewApplication(ctx, actor, id, req.Approve, inputval.Clean(req.Note)); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ServeDispatch handles POST /applications/{id}/dispatch: send an approved
// application to the university.
func (h *Handler) ServeDispatch(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid application id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "dispatch application")
	defer cancel()

	if err := h.Lifecycle.SubmitApplicationToUniversity(ctx, actor, id); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type decisionRequest struct {
	Decision       string   `json:"decision"`
	ReturnReason   string   `json:"return_reason"`
	ReturnedFields []string `json:"returned_fields"`
}

// ServeDecision handles POST /applications/{id}/decision.
func (h *Handler) ServeDecision(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid application id"})
		return
	}
	var req decisionRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "record university decision")
	defer cancel()

	err := h.Lifecycle.RecordUniversityDecision(ctx, actor, lifecycle.UniversityDecisionInput{
		ApplicationID:  id,
		Decision:       req.Decision,
		ReturnReason:   inputval.Clean(req.ReturnReason),
		ReturnedFields: inputval.CleanAll(req.ReturnedFields),
	})
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ServeResubmit handles POST /applications/{id}/resubmit.
func (h *Handler) ServeResubmit(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid application id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "resubmit application")
	defer cancel()

	if err := h.Lifecycle.ResubmitReturnedApplication(ctx, actor, id); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
