package lifecycle

import (
	"context"
	"testing"

	"github.com/jmassawe/edupath/internal/app/store/audit"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/jmassawe/edupath/internal/domain/workflow"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (f *fixture) fillProfile(t *testing.T, actor workflow.Actor, studentID primitive.ObjectID) {
	t.Helper()
	ctx := context.Background()
	err := f.svc.AddFamilyMember(ctx, actor, studentID, models.FamilyMember{
		Relationship: "mother", FullName: "Neema Mkapa",
	})
	if err != nil {
		t.Fatalf("AddFamilyMember: %v", err)
	}
	err = f.svc.AddEducationRecord(ctx, actor, studentID, models.EducationRecord{
		Institution: "Mzumbe University", Level: "bachelor",
	})
	if err != nil {
		t.Fatalf("AddEducationRecord: %v", err)
	}
}

func TestActivateStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusPendingContract, &staff.ID)

	err := f.svc.ActivateStudent(ctx, staff, ActivateStudentInput{
		StudentID:         st.ID,
		SignedContractRef: "CTR-001.pdf",
		DepositReceiptRef: "RCT-0100",
	})
	if err != nil {
		t.Fatalf("ActivateStudent: %v", err)
	}

	got, _ := f.students.GetByID(ctx, st.ID)
	if got.Status != models.StudentStatusActive {
		t.Errorf("status = %q, want active", got.Status)
	}
	if entries := f.sink.ByAction(audit.ActionStudentActivated); len(entries) != 1 {
		t.Errorf("audit entries = %d, want 1", len(entries))
	}
	// Both evidence documents land on the file.
	n, _ := f.documents.CountUnverifiedRequired(ctx, st.ID)
	if n != 0 {
		t.Errorf("unverified required docs = %d, want 0", n)
	}
}

func TestActivateStudent_MissingEvidence(t *testing.T) {
	f := newFixture(t)
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusPendingContract, &staff.ID)

	cases := []struct {
		name string
		in   ActivateStudentInput
	}{
		{"no contract", ActivateStudentInput{StudentID: st.ID, DepositReceiptRef: "RCT-0100"}},
		{"no receipt", ActivateStudentInput{StudentID: st.ID, SignedContractRef: "CTR-001.pdf"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.svc.ActivateStudent(context.Background(), staff, tc.in)
			if !workflow.IsPreconditionFailed(err) {
				t.Errorf("err = %v, want precondition failed", err)
			}
		})
	}

	got, _ := f.students.GetByID(context.Background(), st.ID)
	if got.Status != models.StudentStatusPendingContract {
		t.Errorf("status = %q, want unchanged pending_contract", got.Status)
	}
	if f.sink.Len() != 0 {
		t.Errorf("audit entries = %d, want 0", f.sink.Len())
	}
}

func TestLockAndSubmitProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusActive, &staff.ID)
	f.fillProfile(t, staff, st.ID)

	if err := f.svc.LockAndSubmitProfile(ctx, staff, st.ID); err != nil {
		t.Fatalf("LockAndSubmitProfile: %v", err)
	}

	got, _ := f.students.GetByID(ctx, st.ID)
	if got.Status != models.StudentStatusSubmittedToAdmin {
		t.Errorf("status = %q, want submitted_to_admin", got.Status)
	}
	if !got.IsProfileLocked {
		t.Error("profile not locked after submission")
	}
	if got.LockedAt == nil {
		t.Error("locked_at not set")
	}

	entries := f.sink.ByAction(audit.ActionProfileSubmitted)
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	if entries[0].Override {
		t.Error("submission audited as override")
	}
}

func TestLockAndSubmitProfile_MissingSubRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusActive, &staff.ID)

	err := f.svc.LockAndSubmitProfile(ctx, staff, st.ID)
	if !workflow.IsPreconditionFailed(err) {
		t.Fatalf("err = %v, want precondition failed", err)
	}

	// Zero side effects on failure: not locked, status unchanged, no audit.
	got, _ := f.students.GetByID(ctx, st.ID)
	if got.IsProfileLocked {
		t.Error("profile locked despite failed submission")
	}
	if got.Status != models.StudentStatusActive {
		t.Errorf("status = %q, want unchanged active", got.Status)
	}
	if f.sink.Len() != 0 {
		t.Errorf("audit entries = %d, want 0", f.sink.Len())
	}
}

func TestLockAndSubmitProfile_WrongStatus(t *testing.T) {
	f := newFixture(t)
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusPendingContract, &staff.ID)

	err := f.svc.LockAndSubmitProfile(context.Background(), staff, st.ID)
	if !workflow.IsInvalidTransition(err) {
		t.Errorf("err = %v, want invalid transition", err)
	}
}

func TestUpdateProfileField_Locked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	admin := adminActor()
	st := f.seedStudent(t, models.StudentStatusSubmittedToAdmin, &staff.ID)
	if err := f.locker.Lock(ctx, st.ID); err != nil {
		t.Fatalf("lock: %v", err)
	}

	// Staff cannot write a locked field.
	err := f.svc.UpdateProfileField(ctx, staff, st.ID, "passport_number", "AB123456")
	if !workflow.IsForbidden(err) {
		t.Fatalf("staff err = %v, want forbidden", err)
	}

	// Admin bypasses the lock, audited as an override.
	if err := f.svc.UpdateProfileField(ctx, admin, st.ID, "passport_number", "AB123456"); err != nil {
		t.Fatalf("admin edit: %v", err)
	}
	entries := f.sink.ByAction(audit.ActionProfileFieldEdited)
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	if !entries[0].Override {
		t.Error("admin bypass not audited with override=true")
	}

	got, _ := f.students.GetByID(ctx, st.ID)
	if got.PassportNumber != "AB123456" {
		t.Errorf("passport = %q, want AB123456", got.PassportNumber)
	}
}

func TestUpdateProfileField_UnlockedField(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusSubmittedToAdmin, &staff.ID)
	if err := f.locker.Lock(ctx, st.ID); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := f.students.MergeUnlockedFields(ctx, st.ID, []string{"home_address"}); err != nil {
		t.Fatalf("merge: %v", err)
	}

	if err := f.svc.UpdateProfileField(ctx, staff, st.ID, "home_address", "Dar es Salaam"); err != nil {
		t.Fatalf("edit unlocked field: %v", err)
	}
	entries := f.sink.ByAction(audit.ActionProfileFieldEdited)
	if len(entries) != 1 || entries[0].Override {
		t.Errorf("want one non-override audit entry, got %+v", entries)
	}
}

func TestForwardProfileToUniversity_RoleGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusSubmittedToAdmin, &staff.ID)

	// Forwarding a submitted profile is an admin decision.
	if err := f.svc.ForwardProfileToUniversity(ctx, staff, st.ID); !workflow.IsForbidden(err) {
		t.Fatalf("staff err = %v, want forbidden", err)
	}
	if err := f.svc.ForwardProfileToUniversity(ctx, adminActor(), st.ID); err != nil {
		t.Fatalf("admin forward: %v", err)
	}

	got, _ := f.students.GetByID(ctx, st.ID)
	if got.Status != models.StudentStatusSubmittedToUniversity {
		t.Errorf("status = %q, want submitted_to_university", got.Status)
	}
	if !got.IsProfileLocked {
		t.Error("profile must stay locked after forwarding")
	}
}

func TestReturnProfileForDocuments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	admin := adminActor()
	st := f.seedStudent(t, models.StudentStatusSubmittedToAdmin, &staff.ID)

	if err := f.svc.ReturnProfileForDocuments(ctx, admin, st.ID, ""); !workflow.IsValidation(err) {
		t.Fatalf("err = %v, want validation for missing reason", err)
	}
	if err := f.svc.ReturnProfileForDocuments(ctx, admin, st.ID, "passport scan unreadable"); err != nil {
		t.Fatalf("return: %v", err)
	}

	got, _ := f.students.GetByID(ctx, st.ID)
	if got.Status != models.StudentStatusDocumentsPending {
		t.Errorf("status = %q, want documents_pending", got.Status)
	}
	if entries := f.sink.ByAction(audit.ActionProfileReturned); len(entries) != 1 {
		t.Errorf("audit entries = %d, want 1", len(entries))
	}
}

func TestReviewDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusActive, &staff.ID)

	doc, err := f.svc.AddDocument(ctx, staff, st.ID, models.DocumentTypePassport, "Passport", "passport.pdf", true)
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if err := f.svc.ReviewDocument(ctx, staff, doc.ID, true); err != nil {
		t.Fatalf("ReviewDocument: %v", err)
	}
	// A reviewed document cannot be reviewed again.
	if err := f.svc.ReviewDocument(ctx, staff, doc.ID, false); !workflow.IsInvalidState(err) {
		t.Errorf("err = %v, want invalid state", err)
	}

	got, _ := f.documents.GetByID(ctx, doc.ID)
	if got.Status != models.DocumentStatusVerified {
		t.Errorf("status = %q, want verified", got.Status)
	}
}
