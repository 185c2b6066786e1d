// internal/app/features/students/handler.go
package students

import (
	"net/http"
	"time"

	"github.com/jmassawe/edupath/internal/app/features/apierr"
	studentstore "github.com/jmassawe/edupath/internal/app/store/students"
	"github.com/jmassawe/edupath/internal/app/system/authz"
	"github.com/jmassawe/edupath/internal/app/system/inputval"
	"github.com/jmassawe/edupath/internal/app/system/timeouts"
	"github.com/jmassawe/edupath/internal/app/workflow/lifecycle"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the student master-profile endpoints.
type Handler struct {
	Lifecycle *lifecycle.Service
	Students  *studentstore.Store
	Log       *zap.Logger
}

// NewHandler constructs a students Handler.
func NewHandler(svc *lifecycle.Service, students *studentstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Lifecycle: svc, Students: students, Log: logger}
}

// studentView decorates the stored student with the derived progress step.
type studentView struct {
	*models.Student
	CurrentStep int `json:"current_step"`
}

func viewOf(st *models.Student) studentView {
	return studentView{Student: st, CurrentStep: st.CurrentStep()}
}

func pathID(r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	return id, err == nil
}

// ServeGet handles GET /students/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid student id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get student")
	defer cancel()

	st, err := h.Students.GetByID(ctx, id)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, viewOf(st))
}

// ServeList handles GET /students.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list students")
	defer cancel()

	list, err := h.Students.List(ctx)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	views := make([]studentView, 0, len(list))
	for i := range list {
		views = append(views, viewOf(&list[i]))
	}
	apierr.JSON(w, http.StatusOK, views)
}

type activateRequest struct {
	SignedContractRef string `json:"signed_contract_ref"`
	DepositReceiptRef string `json:"deposit_receipt_ref"`
}

// ServeActivate handles POST /students/{id}/activate.
func (h *Handler) ServeActivate(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid student id"})
		return
	}
	var req activateRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "activate student")
	defer cancel()

	err := h.Lifecycle.ActivateStudent(ctx, actor, lifecycle.ActivateStudentInput{
		StudentID:         id,
		SignedContractRef: inputval.Clean(req.SignedContractRef),
		DepositReceiptRef: inputval.Clean(req.DepositReceiptRef),
	})
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"status": models.StudentStatusActive})
}

type fieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// ServeUpdateField handles PATCH /students/{id}/fields.
func (h *Handler) ServeUpdateField(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid student id"})
		return
	}
	var req fieldRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update profile field")
	defer cancel()

	if err := h.Lifecycle.UpdateProfileField(ctx, actor, id, req.Field, inputval.Clean(req.Value)); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type familyMemberRequest struct {
	Relationship string `json:"relationship"`
	FullName     string `json:"full_name"`
	Occupation   string `json:"occupation"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
}

// ServeAddFamilyMember handles POST /students/{id}/family-members.
func (h *Handler) ServeAddFamilyMember(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid student id"})
		return
	}
	var req familyMemberRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "add family member")
	defer cancel()

	err := h.Lifecycle.AddFamilyMember(ctx, actor, id, models.FamilyMember{
		Relationship: inputval.Clean(req.Relationship),
		FullName:     inputval.Clean(req.FullName),
		Occupation:   inputval.Clean(req.Occupation),
		Phone:        inputval.Clean(req.Phone),
		Email:        inputval.NormalizeEmail(req.Email),
	})
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

type educationRequest struct {
	Institution string     `json:"institution"`
	Level       string     `json:"level"`
	Major       string     `json:"major"`
	GPA         string     `json:"gpa"`
	StartedAt   *time.Time `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at"`
}

// ServeAddEducation handles POST /students/{id}/education.
func (h *Handler) ServeAddEducation(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid student id"})
		return
	}
	var req educationRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "add education record")
	defer cancel()

	err := h.Lifecycle.AddEducationRecord(ctx, actor, id, models.EducationRecord{
		Institution: inputval.Clean(req.Institution),
		Level:       inputval.Clean(req.Level),
		Major:       inputval.Clean(req.Major),
		GPA:         inputval.Clean(req.GPA),
		StartedAt:   req.StartedAt,
		EndedAt:     req.EndedAt,
	})
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

type employmentRequest struct {
	Employer  string     `json:"employer"`
	Title     string     `json:"title"`
	StartedAt *time.Time `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

// ServeAddEmployment handles POST /students/{id}/employment.
func (h *Handler) ServeAddEmployment(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid student id"})
		return
	}
	var req employmentRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "add employment record")
	defer cancel()

	err := h.Lifecycle.AddEmploymentRecord(ctx, actor, id, models.EmploymentRecord{
		Employer:  inputval.Clean(req.Employer),
		Title:     inputval.Clean(req.Title),
		StartedAt: req.StartedAt,
		EndedAt:   req.EndedAt,
	})
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// ServeSubmit handles POST /students/{id}/submit: lock and hand to admin.
func (h *Handler) ServeSubmit(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid student id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "submit profile")
	defer cancel()

	if err := h.Lifecycle.LockAndSubmitProfile(ctx, actor, id); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"status": models.StudentStatusSubmittedToAdmin})
}

// ServeForward handles POST /students/{id}/forward (admin).
func (h *Handler) ServeForward(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid student id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "forward profile")
	defer cancel()

	if err := h.Lifecycle.ForwardProfileToUniversity(ctx, actor, id); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"status": models.StudentStatusSubmittedToUniversity})
}

type returnRequest struct {
	Reason string `json:"reason"`
}

// ServeReturn handles POST /students/{id}/return (admin).
func (h *Handler) ServeReturn(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid student id"})
		return
	}
	var req returnRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "return profile")
	defer cancel()

	if err := h.Lifecycle.ReturnProfileForDocuments(ctx, actor, id, inputval.Clean(req.Reason)); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"status": models.StudentStatusDocumentsPending})
}

type documentRequest struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	FileRef  string `json:"file_ref"`
	Required bool   `json:"required"`
}

// ServeAddDocument handles POST /students/{id}/documents.
func (h *Handler) ServeAddDocument(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid student id"})
		return
	}
	var req documentRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "add document")
	defer cancel()

	doc, err := h.Lifecycle.AddDocument(ctx, actor, id,
		inputval.Clean(req.Type), inputval.Clean(req.Name), inputval.Clean(req.FileRef), req.Required)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusCreated, doc)
}

type reviewDocumentRequest struct {
	Verified bool `json:"verified"`
}

// ServeReviewDocument handles POST /students/documents/{docID}/review.
func (h *Handler) ServeReviewDocument(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	docID, ok := pathID(r, "docID")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document id"})
		return
	}
	var req reviewDocumentRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "review document")
	defer cancel()

	if err := h.Lifecycle.ReviewDocument(ctx, actor, docID, req.Verified); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
