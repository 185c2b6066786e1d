// internal/app/workflow/lifecycle/billing.go
package lifecycle

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jmassawe/edupath/internal/app/store/audit"
	invoicestore "github.com/jmassawe/edupath/internal/app/store/invoices"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/jmassawe/edupath/internal/domain/workflow"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateInvoiceInput carries a new billing row. Opening-book invoices are
// created by conversion and refunds by RecordRefund; this path covers the
// deposit and balance invoices raised during service delivery.
type CreateInvoiceInput struct {
	StudentID primitive.ObjectID
	Type      string
	Amount    int64
	Currency  string
	DueDate   *time.Time
}

// CreateInvoice raises a pending invoice against a student.
func (s *Service) CreateInvoice(ctx context.Context, actor workflow.Actor, in CreateInvoiceInput) (*models.Invoice, error) {
	if actor.Role != models.RoleStaff && actor.Role != models.RoleAdmin {
		return nil, workflow.Forbiddenf("only staff may raise invoices")
	}
	if in.Type != models.InvoiceTypeDeposit && in.Type != models.InvoiceTypeBalance {
		return nil, workflow.Validationf("invoice type must be %s or %s", models.InvoiceTypeDeposit, models.InvoiceTypeBalance)
	}
	if in.Amount <= 0 {
		return nil, workflow.Validationf("invoice amount must be positive")
	}
	if strings.TrimSpace(in.Currency) == "" {
		return nil, workflow.Validationf("invoice needs a currency")
	}
	if _, err := s.students.GetByID(ctx, in.StudentID); err != nil {
		return nil, err
	}

	inv := &models.Invoice{
		StudentID: in.StudentID,
		Number:    invoicestore.NewNumber(),
		Type:      in.Type,
		Amount:    in.Amount,
		Currency:  in.Currency,
		Status:    models.InvoiceStatusPending,
		DueDate:   in.DueDate,
		CreatedBy: &actor.ID,
	}
	err := s.run(ctx, func(ctx context.Context) error {
		if err := s.invoices.Insert(ctx, inv); err != nil {
			return err
		}
		_, err := s.rec.Record(ctx, audit.Entry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     audit.ActionInvoiceCreated,
			EntityType: audit.EntityInvoice,
			EntityID:   inv.ID,
			NewValue:   models.InvoiceStatusPending,
			Details:    map[string]string{"student_id": in.StudentID.Hex(), "type": in.Type},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// RecordPayment marks a pending invoice paid against a receipt reference.
func (s *Service) RecordPayment(ctx context.Context, actor workflow.Actor, invoiceID primitive.ObjectID, receiptRef string) error {
	if actor.Role != models.RoleStaff && actor.Role != models.RoleAdmin {
		return workflow.Forbiddenf("only staff may record payments")
	}
	if strings.TrimSpace(receiptRef) == "" {
		return workflow.Validationf("a payment needs a receipt reference")
	}

	done := s.mu.Lock(invoiceID.Hex())
	defer done()

	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}

	return s.run(ctx, func(ctx context.Context) error {
		if err := s.invoices.MarkPaid(ctx, invoiceID, receiptRef); err != nil {
			if errors.Is(err, invoicestore.ErrNotPending) {
				return workflow.InvalidStatef("invoice %s is not pending", invoiceID.Hex())
			}
			return err
		}
		_, err := s.rec.Record(ctx, audit.Entry{
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        audit.ActionPaymentRecorded,
			EntityType:    audit.EntityInvoice,
			EntityID:      invoiceID,
			PreviousValue: inv.Status,
			NewValue:      models.InvoiceStatusPaid,
			Details:       map[string]string{"receipt_ref": receiptRef, "student_id": inv.StudentID.Hex()},
		})
		return err
	})
}

// RecordRefund reverses a paid invoice by creating a refund row. The original
// invoice is never touched; net revenue is derived from the pair.
func (s *Service) RecordRefund(ctx context.Context, actor workflow.Actor, invoiceID primitive.ObjectID, amount int64, reason string) (*models.Invoice, error) {
	if actor.Role != models.RoleAdmin {
		return nil, workflow.Forbiddenf("only admins may record refunds")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, workflow.Validationf("a refund needs a reason")
	}

	done := s.mu.Lock(invoiceID.Hex())
	defer done()

	original, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if original.Type == models.InvoiceTypeRefund {
		return nil, workflow.InvalidStatef("cannot refund a refund invoice")
	}
	if original.Status != models.InvoiceStatusPaid {
		return nil, workflow.PreconditionFailedf("only paid invoices can be refunded")
	}

	var refund *models.Invoice
	err = s.run(ctx, func(ctx context.Context) error {
		refund, err = s.ledger.OnRefundApproved(ctx, original, amount, reason, actor.ID)
		if err != nil {
			return err
		}
		_, err = s.rec.Record(ctx, audit.Entry{
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        audit.ActionRefundRecorded,
			EntityType:    audit.EntityInvoice,
			EntityID:      refund.ID,
			PreviousValue: original.Number,
			NewValue:      refund.Number,
			Details: map[string]string{
				"reverses":   original.ID.Hex(),
				"student_id": original.StudentID.Hex(),
				"reason":     reason,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return refund, nil
}
