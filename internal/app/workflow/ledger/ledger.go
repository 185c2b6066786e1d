// internal/app/workflow/ledger/ledger.go

// Package ledger derives invoice and commission rows from lifecycle events.
// Every row is append-only, mirroring the audit log: refunds reverse by a
// new row and commissions are corrected by new accruals, never by edits.
package ledger

import (
	"context"
	"fmt"
	"time"

	invoicestore "github.com/jmassawe/edupath/internal/app/store/invoices"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/jmassawe/edupath/internal/domain/workflow"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config carries the rate configuration commissions are computed from.
type Config struct {
	// DefaultCommissionRate is the org-wide rate applied when the staff
	// member has no per-staff override (e.g. 0.05 for 5%).
	DefaultCommissionRate float64
}

// InvoiceStore is the invoice sink.
type InvoiceStore interface {
	Insert(ctx context.Context, inv *models.Invoice) error
}

// CommissionStore is the commission sink.
type CommissionStore interface {
	Insert(ctx context.Context, rec *models.CommissionRecord) error
}

// StaffLookup resolves staff for per-staff commission rate overrides.
type StaffLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Service creates ledger rows from lifecycle events.
type Service struct {
	invoices    InvoiceStore
	commissions CommissionStore
	staff       StaffLookup
	cfg         Config
	log         *zap.Logger
}

// New creates a ledger Service.
func New(invoices InvoiceStore, commissions CommissionStore, staff StaffLookup, cfg Config, logger *zap.Logger) *Service {
	return &Service{invoices: invoices, commissions: commissions, staff: staff, cfg: cfg, log: logger}
}

// OnConvert creates the opening-book invoice recorded at lead conversion.
// The payment was taken up front, so the row is created already paid with
// its receipt reference.
func (s *Service) OnConvert(ctx context.Context, studentID primitive.ObjectID, amount int64, currency, receiptRef string, createdBy primitive.ObjectID) (*models.Invoice, error) {
	now := time.Now().UTC()
	inv := &models.Invoice{
		StudentID:  studentID,
		Number:     invoicestore.NewNumber(),
		Type:       models.InvoiceTypeOpeningBook,
		Amount:     amount,
		Currency:   currency,
		Status:     models.InvoiceStatusPaid,
		PaidAt:     &now,
		ReceiptRef: receiptRef,
		CreatedBy:  &createdBy,
	}
	if err := s.invoices.Insert(ctx, inv); err != nil {
		return nil, fmt.Errorf("insert opening-book invoice: %w", err)
	}
	s.log.Info("opening book recorded",
		zap.String("student_id", studentID.Hex()),
		zap.Int64("amount", amount),
		zap.String("currency", currency))
	return inv, nil
}

// OnContractSigned accrues staff commission for a signed contract at the
// per-staff override rate, or the org-wide default when none is set.
func (s *Service) OnContractSigned(ctx context.Context, c *models.Contract, staffID primitive.ObjectID) (*models.CommissionRecord, error) {
	rate := s.cfg.DefaultCommissionRate
	staff, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("resolve staff for commission: %w", err)
	}
	if staff.CommissionRate != nil {
		rate = *staff.CommissionRate
	}

	rec := &models.CommissionRecord{
		ContractID: c.ID,
		StudentID:  c.StudentID,
		StaffID:    staffID,
		Rate:       rate,
		Base:       c.Amount,
		Amount:     CommissionAmount(c.Amount, rate),
		Currency:   c.Currency,
	}
	if err := s.commissions.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert commission accrual: %w", err)
	}
	s.log.Info("commission accrued",
		zap.String("contract_id", c.ID.Hex()),
		zap.String("staff_id", staffID.Hex()),
		zap.Float64("rate", rate),
		zap.Int64("amount", rec.Amount))
	return rec, nil
}

// OnRefundApproved creates the reversal row for an approved refund. The
// original invoice is never mutated.
func (s *Service) OnRefundApproved(ctx context.Context, original *models.Invoice, amount int64, reason string, createdBy primitive.ObjectID) (*models.Invoice, error) {
	if amount <= 0 {
		return nil, workflow.Validationf("refund amount must be positive")
	}
	if amount > original.Amount {
		return nil, workflow.Validationf("refund amount %d exceeds original invoice amount %d", amount, original.Amount)
	}
	now := time.Now().UTC()
	inv := &models.Invoice{
		StudentID:  original.StudentID,
		Number:     invoicestore.NewNumber(),
		Type:       models.InvoiceTypeRefund,
		Amount:     amount,
		Currency:   original.Currency,
		Status:     models.InvoiceStatusPaid,
		PaidAt:     &now,
		CreatedBy:  &createdBy,
		ReversesID: &original.ID,
		Reason:     reason,
	}
	if err := s.invoices.Insert(ctx, inv); err != nil {
		return nil, fmt.Errorf("insert refund invoice: %w", err)
	}
	s.log.Info("refund recorded",
		zap.String("reverses", original.ID.Hex()),
		zap.Int64("amount", amount))
	return inv, nil
}

// CommissionAmount computes an accrual in minor units, truncating toward
// zero.
func CommissionAmount(base int64, rate float64) int64 {
	return int64(float64(base) * rate)
}

// NetRevenue sums a student's paid invoices: non-refund rows add, refund
// rows subtract. Pending and overdue rows are not yet recognized.
func NetRevenue(invoices []models.Invoice) int64 {
	var total int64
	for _, inv := range invoices {
		if inv.Status != models.InvoiceStatusPaid {
			continue
		}
		if inv.Type == models.InvoiceTypeRefund {
			total -= inv.Amount
		} else {
			total += inv.Amount
		}
	}
	return total
}
