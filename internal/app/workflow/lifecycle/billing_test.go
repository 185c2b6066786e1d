package lifecycle

import (
	"context"
	"testing"

	"github.com/jmassawe/edupath/internal/app/store/audit"
	"github.com/jmassawe/edupath/internal/app/workflow/ledger"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/jmassawe/edupath/internal/domain/workflow"
)

func TestCreateInvoiceAndRecordPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusActive, &staff.ID)

	inv, err := f.svc.CreateInvoice(ctx, staff, CreateInvoiceInput{
		StudentID: st.ID,
		Type:      models.InvoiceTypeDeposit,
		Amount:    300_000,
		Currency:  "TZS",
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if inv.Status != models.InvoiceStatusPending {
		t.Errorf("status = %q, want pending", inv.Status)
	}
	if inv.Number == "" {
		t.Error("invoice number not assigned")
	}

	if err := f.svc.RecordPayment(ctx, staff, inv.ID, "RCT-0200"); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	got, _ := f.invoices.GetByID(ctx, inv.ID)
	if got.Status != models.InvoiceStatusPaid || got.ReceiptRef != "RCT-0200" {
		t.Errorf("invoice = %+v, want paid with receipt RCT-0200", got)
	}

	// Paying twice cannot overwrite the first receipt.
	if err := f.svc.RecordPayment(ctx, staff, inv.ID, "RCT-0201"); !workflow.IsInvalidState(err) {
		t.Errorf("double payment err = %v, want invalid state", err)
	}
	got, _ = f.invoices.GetByID(ctx, inv.ID)
	if got.ReceiptRef != "RCT-0200" {
		t.Errorf("receipt = %q, want original RCT-0200", got.ReceiptRef)
	}

	if entries := f.sink.ByAction(audit.ActionPaymentRecorded); len(entries) != 1 {
		t.Errorf("payment audit entries = %d, want 1", len(entries))
	}
}

func TestCreateInvoice_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusActive, &staff.ID)

	cases := []struct {
		name string
		in   CreateInvoiceInput
	}{
		{"opening book reserved", CreateInvoiceInput{StudentID: st.ID, Type: models.InvoiceTypeOpeningBook, Amount: 1, Currency: "TZS"}},
		{"refund reserved", CreateInvoiceInput{StudentID: st.ID, Type: models.InvoiceTypeRefund, Amount: 1, Currency: "TZS"}},
		{"zero amount", CreateInvoiceInput{StudentID: st.ID, Type: models.InvoiceTypeDeposit, Currency: "TZS"}},
		{"no currency", CreateInvoiceInput{StudentID: st.ID, Type: models.InvoiceTypeBalance, Amount: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.CreateInvoice(ctx, staff, tc.in); !workflow.IsValidation(err) {
				t.Errorf("err = %v, want validation", err)
			}
		})
	}
}

func TestRecordRefund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	admin := adminActor()
	st := f.seedStudent(t, models.StudentStatusActive, &staff.ID)

	inv, err := f.svc.CreateInvoice(ctx, staff, CreateInvoiceInput{
		StudentID: st.ID,
		Type:      models.InvoiceTypeDeposit,
		Amount:    300_000,
		Currency:  "TZS",
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	// An unpaid invoice cannot be refunded.
	if _, err := f.svc.RecordRefund(ctx, admin, inv.ID, 100_000, "overcharge"); !workflow.IsPreconditionFailed(err) {
		t.Fatalf("unpaid refund err = %v, want precondition failed", err)
	}
	if err := f.svc.RecordPayment(ctx, staff, inv.ID, "RCT-0300"); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	// Staff cannot refund; refunds exceeding the original are rejected.
	if _, err := f.svc.RecordRefund(ctx, staff, inv.ID, 100_000, "overcharge"); !workflow.IsForbidden(err) {
		t.Fatalf("staff refund err = %v, want forbidden", err)
	}
	if _, err := f.svc.RecordRefund(ctx, admin, inv.ID, 300_001, "overcharge"); !workflow.IsValidation(err) {
		t.Fatalf("oversized refund err = %v, want validation", err)
	}

	refund, err := f.svc.RecordRefund(ctx, admin, inv.ID, 100_000, "overcharge")
	if err != nil {
		t.Fatalf("RecordRefund: %v", err)
	}
	if refund.Type != models.InvoiceTypeRefund || refund.ReversesID == nil || *refund.ReversesID != inv.ID {
		t.Errorf("refund = %+v, want refund row reversing %v", refund, inv.ID)
	}

	// The original row is untouched; net revenue nets the pair.
	original, _ := f.invoices.GetByID(ctx, inv.ID)
	if original.Amount != 300_000 || original.Status != models.InvoiceStatusPaid {
		t.Errorf("original mutated: %+v", original)
	}
	if net := ledger.NetRevenue(f.invoices.All()); net != 200_000 {
		t.Errorf("net revenue = %d, want 200000", net)
	}

	// Refunding the refund row is rejected.
	if _, err := f.svc.RecordRefund(ctx, admin, refund.ID, 1, "nope"); !workflow.IsInvalidState(err) {
		t.Errorf("refund-of-refund err = %v, want invalid state", err)
	}

	if entries := f.sink.ByAction(audit.ActionRefundRecorded); len(entries) != 1 {
		t.Errorf("refund audit entries = %d, want 1", len(entries))
	}
}
