// internal/app/features/invoices/handler.go
package invoices

import (
	"net/http"
	"time"

	"github.com/jmassawe/edupath/internal/app/features/apierr"
	invoicestore "github.com/jmassawe/edupath/internal/app/store/invoices"
	"github.com/jmassawe/edupath/internal/app/system/authz"
	"github.com/jmassawe/edupath/internal/app/system/inputval"
	"github.com/jmassawe/edupath/internal/app/system/timeouts"
	"github.com/jmassawe/edupath/internal/app/workflow/ledger"
	"github.com/jmassawe/edupath/internal/app/workflow/lifecycle"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the billing endpoints.
type Handler struct {
	Lifecycle *lifecycle.Service
	Invoices  *invoicestore.Store
	Log       *zap.Logger
}

// NewHandler constructs an invoices Handler.
func NewHandler(svc *lifecycle.Service, invoices *invoicestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Lifecycle: svc, Invoices: invoices, Log: logger}
}

func pathID(r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	return id, err == nil
}

type createRequest struct {
	StudentID string     `json:"student_id"`
	Type      string     `json:"type"`
	Amount    int64      `json:"amount"`
	Currency  string     `json:"currency"`
	DueDate   *time.Time `json:"due_date"`
}

// ServeCreate handles POST /invoices.
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create invoice")
	defer cancel()

	inv, err := h.Lifecycle.CreateInvoice(ctx, actor, lifecycle.CreateInvoiceInput{
		StudentID: studentID,
		Type:      req.Type,
		Amount:    req.Amount,
		Currency:  inputval.Clean(req.Currency),
		DueDate:   req.DueDate,
	})
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusCreated, inv)
}

// ServeGet handles GET /invoices/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid invoice id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get invoice")
	defer cancel()

	inv, err := h.Invoices.GetByID(ctx, id)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, inv)
}

// ServeListByStudent handles GET /invoices?student_id=...
// The response includes the student's net revenue across the returned rows.
func (h *Handler) ServeListByStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("student_id"))
	if err != nil {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid student_id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list invoices")
	defer cancel()

	list, err := h.Invoices.ListByStudent(ctx, studentID)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]any{
		"invoices":    list,
		"net_revenue": ledger.NetRevenue(list),
	})
}

type paymentRequest struct {
	ReceiptRef string `json:"receipt_ref"`
}

// ServePayment handles POST /invoices/{id}/payment.
func (h *Handler) ServePayment(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid invoice id"})
		return
	}
	var req paymentRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "record payment")
	defer cancel()

	if err := h.Lifecycle.RecordPayment(ctx, actor, id, inputval.Clean(req.ReceiptRef)); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type refundRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// ServeRefund handles POST /invoices/{id}/refund (admin). The refund is a
// new reversal row; the original invoice is never rewritten.
func (h *Handler) ServeRefund(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, ok := pathID(r, "id")
	if !ok {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid invoice id"})
		return
	}
	var req refundRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "record refund")
	defer cancel()

	refund, err := h.Lifecycle.RecordRefund(ctx, actor, id, req.Amount, inputval.Clean(req.Reason))
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusCreated, refund)
}
