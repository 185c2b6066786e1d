package lifecycle

import (
	"context"
	"testing"

	"github.com/jmassawe/edupath/internal/app/store/audit"
	"github.com/jmassawe/edupath/internal/app/system/auditlog"
	"github.com/jmassawe/edupath/internal/app/system/entitymu"
	"github.com/jmassawe/edupath/internal/app/workflow/ledger"
	"github.com/jmassawe/edupath/internal/app/workflow/unlock"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/jmassawe/edupath/internal/domain/workflow"
	"github.com/jmassawe/edupath/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fixture wires a Service against the in-memory stores.
type fixture struct {
	svc *Service

	leads        *testutil.MemLeads
	students     *testutil.MemStudents
	applications *testutil.MemApplications
	contracts    *testutil.MemContracts
	invoices     *testutil.MemInvoices
	documents    *testutil.MemDocuments
	universities *testutil.MemUniversities
	requests     *testutil.MemUnlockRequests
	users        *testutil.MemUsers
	commissions  *testutil.MemCommissions
	sink         *testutil.MemAudit

	locker *unlock.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		leads:        testutil.NewMemLeads(),
		students:     testutil.NewMemStudents(),
		applications: testutil.NewMemApplications(),
		contracts:    testutil.NewMemContracts(),
		invoices:     testutil.NewMemInvoices(),
		documents:    testutil.NewMemDocuments(),
		universities: testutil.NewMemUniversities(),
		requests:     testutil.NewMemUnlockRequests(),
		users:        testutil.NewMemUsers(),
		commissions:  &testutil.MemCommissions{},
		sink:         &testutil.MemAudit{},
	}
	logger := zap.NewNop()
	rec := auditlog.New(f.sink, logger, auditlog.ModeDB)
	mu := entitymu.NewMap()
	f.locker = unlock.New(f.students, f.requests, rec, mu, nil, logger)
	ledg := ledger.New(f.invoices, f.commissions, f.users, ledger.Config{DefaultCommissionRate: 0.05}, logger)
	f.svc = New(Deps{
		Leads:        f.leads,
		Students:     f.students,
		Applications: f.applications,
		Contracts:    f.contracts,
		Invoices:     f.invoices,
		Documents:    f.documents,
		Universities: f.universities,
		Locker:       f.locker,
		Ledger:       ledg,
		Recorder:     rec,
		Mutexes:      mu,
		Logger:       logger,
	})
	return f
}

func staffActor() workflow.Actor {
	return workflow.Actor{ID: primitive.NewObjectID(), Role: models.RoleStaff}
}

func adminActor() workflow.Actor {
	return workflow.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
}

func studentActor() workflow.Actor {
	return workflow.Actor{ID: primitive.NewObjectID(), Role: models.RoleStudent}
}

func (f *fixture) seedLead(t *testing.T, status string) *models.Lead {
	t.Helper()
	l := &models.Lead{
		FullName: "Asha Mkapa",
		Email:    "asha@example.com",
		Phone:    "+255700000001",
		Status:   status,
	}
	if err := f.leads.Insert(context.Background(), l); err != nil {
		t.Fatalf("seed lead: %v", err)
	}
	return l
}

func (f *fixture) seedStudent(t *testing.T, status string, staffID *primitive.ObjectID) *models.Student {
	t.Helper()
	st := &models.Student{
		LeadID:          primitive.NewObjectID(),
		FullName:        "Asha Mkapa",
		Email:           "asha@example.com",
		Status:          status,
		AssignedStaffID: staffID,
	}
	f.students.Put(st)
	return st
}

func TestCreateLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead, err := f.svc.CreateLead(ctx, staffActor(), CreateLeadInput{
		FullName: "Asha Mkapa",
		Email:    "asha@example.com",
		Source:   "instagram",
	})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}
	if lead.Status != models.LeadStatusNew {
		t.Errorf("status = %q, want %q", lead.Status, models.LeadStatusNew)
	}
	if got := f.sink.ByAction(audit.ActionLeadCreated); len(got) != 1 {
		t.Errorf("audit entries = %d, want 1", len(got))
	}
}

func TestCreateLead_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateLeadInput
	}{
		{"no name", CreateLeadInput{Email: "a@b.com"}},
		{"no contact", CreateLeadInput{FullName: "Asha"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.CreateLead(ctx, staffActor(), tc.in); !workflow.IsValidation(err) {
				t.Errorf("err = %v, want validation", err)
			}
		})
	}
	if f.sink.Len() != 0 {
		t.Errorf("audit entries = %d, want 0 after failed creates", f.sink.Len())
	}
}

func TestCreateLead_StudentForbidden(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateLead(context.Background(), studentActor(), CreateLeadInput{
		FullName: "Asha", Email: "a@b.com",
	})
	if !workflow.IsForbidden(err) {
		t.Errorf("err = %v, want forbidden", err)
	}
}

func TestUpdateLeadStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.seedLead(t, models.LeadStatusNew)

	got, err := f.svc.UpdateLeadStatus(ctx, staffActor(), lead.ID, models.LeadStatusHot)
	if err != nil {
		t.Fatalf("UpdateLeadStatus: %v", err)
	}
	if got.Status != models.LeadStatusHot {
		t.Errorf("status = %q, want hot", got.Status)
	}
	if entries := f.sink.ByAction(audit.ActionLeadStatusChanged); len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	} else if entries[0].PreviousValue != models.LeadStatusNew || entries[0].NewValue != models.LeadStatusHot {
		t.Errorf("audit prev/new = %q/%q", entries[0].PreviousValue, entries[0].NewValue)
	}
}

func TestUpdateLeadStatus_DirectConvertRejected(t *testing.T) {
	f := newFixture(t)
	lead := f.seedLead(t, models.LeadStatusHot)

	_, err := f.svc.UpdateLeadStatus(context.Background(), staffActor(), lead.ID, models.LeadStatusConverted)
	if !workflow.IsValidation(err) {
		t.Errorf("err = %v, want validation directing to the convert operation", err)
	}
}

func TestUpdateLeadStatus_Terminal(t *testing.T) {
	f := newFixture(t)
	lead := f.seedLead(t, models.LeadStatusLost)

	_, err := f.svc.UpdateLeadStatus(context.Background(), staffActor(), lead.ID, models.LeadStatusHot)
	if !workflow.IsInvalidTransition(err) {
		t.Errorf("err = %v, want invalid transition out of terminal status", err)
	}
}

func TestConvertLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.seedLead(t, models.LeadStatusHot)
	staff := staffActor()

	st, err := f.svc.ConvertLead(ctx, staff, ConvertLeadInput{
		LeadID:          lead.ID,
		AssignedStaffID: staff.ID,
		PaymentAmount:   50000,
		PaymentCurrency: "TZS",
		ReceiptRef:      "RCT-0001",
	})
	if err != nil {
		t.Fatalf("ConvertLead: %v", err)
	}

	if st.Status != models.StudentStatusPendingContract {
		t.Errorf("student status = %q, want pending_contract", st.Status)
	}
	if st.LeadID != lead.ID {
		t.Errorf("student lead id = %v, want %v", st.LeadID, lead.ID)
	}

	gotLead, err := f.leads.GetByID(ctx, lead.ID)
	if err != nil {
		t.Fatalf("lead readback: %v", err)
	}
	if gotLead.Status != models.LeadStatusConverted {
		t.Errorf("lead status = %q, want converted", gotLead.Status)
	}
	if gotLead.ConvertedAt == nil {
		t.Error("lead converted_at not set")
	}

	invoices := f.invoices.All()
	if len(invoices) != 1 {
		t.Fatalf("invoices = %d, want 1", len(invoices))
	}
	inv := invoices[0]
	if inv.Type != models.InvoiceTypeOpeningBook || inv.Status != models.InvoiceStatusPaid {
		t.Errorf("invoice type/status = %q/%q, want opening_book/paid", inv.Type, inv.Status)
	}
	if inv.Amount != 50000 || inv.Currency != "TZS" || inv.ReceiptRef != "RCT-0001" {
		t.Errorf("invoice = %+v, want amount 50000 TZS with receipt RCT-0001", inv)
	}

	if entries := f.sink.ByAction(audit.ActionLeadConverted); len(entries) != 1 {
		t.Fatalf("converted audit entries = %d, want 1", len(entries))
	}
	if f.sink.Len() != 1 {
		t.Errorf("total audit entries = %d, want exactly 1 for the whole conversion", f.sink.Len())
	}
}

func TestConvertLead_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.seedLead(t, models.LeadStatusHot)
	staff := staffActor()

	cases := []struct {
		name string
		in   ConvertLeadInput
	}{
		{"zero amount", ConvertLeadInput{LeadID: lead.ID, AssignedStaffID: staff.ID, PaymentCurrency: "TZS", ReceiptRef: "R"}},
		{"negative amount", ConvertLeadInput{LeadID: lead.ID, AssignedStaffID: staff.ID, PaymentAmount: -1, PaymentCurrency: "TZS", ReceiptRef: "R"}},
		{"no receipt", ConvertLeadInput{LeadID: lead.ID, AssignedStaffID: staff.ID, PaymentAmount: 50000, PaymentCurrency: "TZS"}},
		{"no currency", ConvertLeadInput{LeadID: lead.ID, AssignedStaffID: staff.ID, PaymentAmount: 50000, ReceiptRef: "R"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.ConvertLead(ctx, staff, tc.in); !workflow.IsValidation(err) {
				t.Errorf("err = %v, want validation", err)
			}
		})
	}

	// A failed conversion must leave no trace: no student, no invoice, no
	// audit entry, lead untouched.
	if f.sink.Len() != 0 {
		t.Errorf("audit entries = %d, want 0", f.sink.Len())
	}
	if got := f.invoices.All(); len(got) != 0 {
		t.Errorf("invoices = %d, want 0", len(got))
	}
	gotLead, _ := f.leads.GetByID(ctx, lead.ID)
	if gotLead.Status != models.LeadStatusHot {
		t.Errorf("lead status = %q, want unchanged hot", gotLead.Status)
	}
}

func TestConvertLead_AlreadyConverted(t *testing.T) {
	f := newFixture(t)
	lead := f.seedLead(t, models.LeadStatusConverted)
	staff := staffActor()

	_, err := f.svc.ConvertLead(context.Background(), staff, ConvertLeadInput{
		LeadID:          lead.ID,
		AssignedStaffID: staff.ID,
		PaymentAmount:   50000,
		PaymentCurrency: "TZS",
		ReceiptRef:      "RCT-0002",
	})
	if !workflow.IsInvalidTransition(err) {
		t.Errorf("err = %v, want invalid transition", err)
	}
}
