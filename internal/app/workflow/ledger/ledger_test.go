package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/jmassawe/edupath/internal/domain/workflow"
	"github.com/jmassawe/edupath/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newService(t *testing.T, users *testutil.MemUsers) (*Service, *testutil.MemInvoices, *testutil.MemCommissions) {
	t.Helper()
	invoices := testutil.NewMemInvoices()
	commissions := &testutil.MemCommissions{}
	svc := New(invoices, commissions, users, Config{DefaultCommissionRate: 0.05}, zap.NewNop())
	return svc, invoices, commissions
}

func TestOnConvert(t *testing.T) {
	svc, invoices, _ := newService(t, testutil.NewMemUsers())
	studentID := primitive.NewObjectID()
	staffID := primitive.NewObjectID()

	inv, err := svc.OnConvert(context.Background(), studentID, 50000, "TZS", "RCT-0001", staffID)
	if err != nil {
		t.Fatalf("OnConvert: %v", err)
	}
	if inv.Type != models.InvoiceTypeOpeningBook {
		t.Errorf("type = %q, want opening_book", inv.Type)
	}
	if inv.Status != models.InvoiceStatusPaid || inv.PaidAt == nil {
		t.Errorf("opening-book invoice must be created already paid: %+v", inv)
	}
	if inv.ReceiptRef != "RCT-0001" {
		t.Errorf("receipt = %q, want RCT-0001", inv.ReceiptRef)
	}
	if inv.Number == "" {
		t.Error("invoice number not assigned")
	}
	if got := invoices.All(); len(got) != 1 {
		t.Errorf("invoices = %d, want 1", len(got))
	}
}

func TestOnContractSigned(t *testing.T) {
	users := testutil.NewMemUsers()
	defaultStaff := &models.User{Role: models.RoleStaff}
	users.Put(defaultStaff)
	rate := 0.10
	seniorStaff := &models.User{Role: models.RoleStaff, CommissionRate: &rate}
	users.Put(seniorStaff)

	cases := []struct {
		name     string
		staffID  primitive.ObjectID
		amount   int64
		wantRate float64
		wantAmt  int64
	}{
		{"default rate", defaultStaff.ID, 2_000_000, 0.05, 100_000},
		{"per-staff override", seniorStaff.ID, 2_000_000, 0.10, 200_000},
		{"truncates toward zero", defaultStaff.ID, 99, 0.05, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, commissions := newService(t, users)
			c := &models.Contract{
				ID:        primitive.NewObjectID(),
				StudentID: primitive.NewObjectID(),
				Amount:    tc.amount,
				Currency:  "TZS",
				Status:    models.ContractStatusSigned,
			}
			rec, err := svc.OnContractSigned(context.Background(), c, tc.staffID)
			if err != nil {
				t.Fatalf("OnContractSigned: %v", err)
			}
			if rec.Rate != tc.wantRate {
				t.Errorf("rate = %v, want %v", rec.Rate, tc.wantRate)
			}
			if rec.Amount != tc.wantAmt {
				t.Errorf("amount = %d, want %d", rec.Amount, tc.wantAmt)
			}
			if rec.Base != tc.amount || rec.ContractID != c.ID {
				t.Errorf("record = %+v, want base %d for contract %v", rec, tc.amount, c.ID)
			}
			if len(commissions.Records) != 1 {
				t.Errorf("records = %d, want 1", len(commissions.Records))
			}
		})
	}
}

func TestOnContractSigned_UnknownStaff(t *testing.T) {
	svc, _, commissions := newService(t, testutil.NewMemUsers())
	c := &models.Contract{ID: primitive.NewObjectID(), Amount: 100, Currency: "TZS"}

	if _, err := svc.OnContractSigned(context.Background(), c, primitive.NewObjectID()); err == nil {
		t.Fatal("want error for unknown staff")
	}
	if len(commissions.Records) != 0 {
		t.Errorf("records = %d, want 0", len(commissions.Records))
	}
}

func TestOnRefundApproved(t *testing.T) {
	svc, invoices, _ := newService(t, testutil.NewMemUsers())
	ctx := context.Background()
	now := time.Now().UTC()
	original := &models.Invoice{
		ID:        primitive.NewObjectID(),
		StudentID: primitive.NewObjectID(),
		Number:    "INV-ORIG",
		Type:      models.InvoiceTypeDeposit,
		Amount:    300_000,
		Currency:  "TZS",
		Status:    models.InvoiceStatusPaid,
		PaidAt:    &now,
	}

	if _, err := svc.OnRefundApproved(ctx, original, 0, "r", primitive.NewObjectID()); !workflow.IsValidation(err) {
		t.Errorf("zero amount err = %v, want validation", err)
	}
	if _, err := svc.OnRefundApproved(ctx, original, 300_001, "r", primitive.NewObjectID()); !workflow.IsValidation(err) {
		t.Errorf("oversized err = %v, want validation", err)
	}

	refund, err := svc.OnRefundApproved(ctx, original, 120_000, "visa denied", primitive.NewObjectID())
	if err != nil {
		t.Fatalf("OnRefundApproved: %v", err)
	}
	if refund.Type != models.InvoiceTypeRefund {
		t.Errorf("type = %q, want refund", refund.Type)
	}
	if refund.ReversesID == nil || *refund.ReversesID != original.ID {
		t.Errorf("reverses = %v, want %v", refund.ReversesID, original.ID)
	}
	if refund.Currency != original.Currency {
		t.Errorf("currency = %q, want inherited %q", refund.Currency, original.Currency)
	}
	if got := invoices.All(); len(got) != 1 {
		t.Errorf("stored rows = %d, want only the refund (original is caller-owned)", len(got))
	}
}

func TestCommissionAmount(t *testing.T) {
	cases := []struct {
		base int64
		rate float64
		want int64
	}{
		{2_000_000, 0.05, 100_000},
		{99, 0.05, 4},
		{1, 0.05, 0},
		{0, 0.10, 0},
	}
	for _, tc := range cases {
		if got := CommissionAmount(tc.base, tc.rate); got != tc.want {
			t.Errorf("CommissionAmount(%d, %v) = %d, want %d", tc.base, tc.rate, got, tc.want)
		}
	}
}

func TestNetRevenue(t *testing.T) {
	paid := models.InvoiceStatusPaid
	invoices := []models.Invoice{
		{Type: models.InvoiceTypeOpeningBook, Amount: 50_000, Status: paid},
		{Type: models.InvoiceTypeDeposit, Amount: 300_000, Status: paid},
		{Type: models.InvoiceTypeBalance, Amount: 200_000, Status: models.InvoiceStatusPending},
		{Type: models.InvoiceTypeRefund, Amount: 120_000, Status: paid},
	}
	// 50000 + 300000 - 120000; the pending balance is not yet recognized.
	if got := NetRevenue(invoices); got != 230_000 {
		t.Errorf("NetRevenue = %d, want 230000", got)
	}
	if got := NetRevenue(nil); got != 0 {
		t.Errorf("NetRevenue(nil) = %d, want 0", got)
	}
}
