package lifecycle

import (
	"context"
	"testing"

	"github.com/jmassawe/edupath/internal/app/system/transitions"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/jmassawe/edupath/internal/domain/workflow"
)

func hasEffect(effects []transitions.Effect, want transitions.Effect) bool {
	for _, e := range effects {
		if e == want {
			return true
		}
	}
	return false
}

// The transition tables declare the side effects of each edge; the service
// fires them at the call sites. These tests run the effect-bearing
// operations and check the observed behavior against the declared lists so
// the two cannot drift apart silently.

func TestEffects_ConvertOpensLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.seedLead(t, models.LeadStatusHot)
	staff := staffActor()

	declared := transitions.Effects(transitions.KindLead, models.LeadStatusHot, models.LeadStatusConverted)
	if !hasEffect(declared, transitions.EffectOpenLedger) {
		t.Fatalf("declared effects = %v, want open_ledger on conversion", declared)
	}

	if _, err := f.svc.ConvertLead(ctx, staff, ConvertLeadInput{
		LeadID:          lead.ID,
		AssignedStaffID: staff.ID,
		PaymentAmount:   50000,
		PaymentCurrency: "TZS",
		ReceiptRef:      "RCT-0009",
	}); err != nil {
		t.Fatalf("ConvertLead: %v", err)
	}
	if got := f.invoices.All(); len(got) != 1 {
		t.Errorf("invoices = %d, want the declared opening-book invoice", len(got))
	}
}

func TestEffects_ProfileSubmissionLocks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusActive, &staff.ID)
	if err := f.students.AddFamilyMember(ctx, st.ID, models.FamilyMember{FullName: "Neema Mkapa", Relationship: "mother"}); err != nil {
		t.Fatalf("seed family member: %v", err)
	}
	if err := f.students.AddEducationRecord(ctx, st.ID, models.EducationRecord{Institution: "Azania Secondary", Level: "secondary"}); err != nil {
		t.Fatalf("seed education record: %v", err)
	}

	declared := transitions.Effects(transitions.KindStudent, models.StudentStatusActive, models.StudentStatusSubmittedToAdmin)
	if !hasEffect(declared, transitions.EffectLockProfile) {
		t.Fatalf("declared effects = %v, want lock_profile on submission", declared)
	}

	if err := f.svc.LockAndSubmitProfile(ctx, staff, st.ID); err != nil {
		t.Fatalf("LockAndSubmitProfile: %v", err)
	}
	got, _ := f.students.GetByID(ctx, st.ID)
	if !got.IsProfileLocked {
		t.Error("profile not locked after the declared lock_profile edge")
	}
}

func TestEffects_ForwardKeepsLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusSubmittedToAdmin, &staff.ID)

	declared := transitions.Effects(transitions.KindStudent, models.StudentStatusSubmittedToAdmin, models.StudentStatusSubmittedToUniversity)
	if !hasEffect(declared, transitions.EffectLockProfile) {
		t.Fatalf("declared effects = %v, want lock_profile on forwarding", declared)
	}

	if err := f.svc.ForwardProfileToUniversity(ctx, adminActor(), st.ID); err != nil {
		t.Fatalf("ForwardProfileToUniversity: %v", err)
	}
	got, _ := f.students.GetByID(ctx, st.ID)
	if !got.IsProfileLocked {
		t.Error("profile not locked after the declared lock_profile edge")
	}
}

func TestEffects_SignatureAccruesCommission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staffUser := f.seedStaffUser(t, nil)
	actor := workflow.Actor{ID: staffUser.ID, Role: models.RoleStaff}
	st := f.seedStudent(t, models.StudentStatusPendingContract, &staffUser.ID)
	c := f.seedContract(t, st.ID, models.ContractStatusPendingSignature, 2_000_000)

	declared := transitions.Effects(transitions.KindContract, models.ContractStatusPendingSignature, models.ContractStatusSigned)
	if !hasEffect(declared, transitions.EffectAccrueCommission) {
		t.Fatalf("declared effects = %v, want accrue_commission on signature", declared)
	}

	if err := f.svc.SignContract(ctx, actor, c.ID); err != nil {
		t.Fatalf("SignContract: %v", err)
	}
	if len(f.commissions.Records) != 1 {
		t.Errorf("commissions = %d, want the declared accrual", len(f.commissions.Records))
	}
}
