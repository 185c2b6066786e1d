package lifecycle

import (
	"context"
	"testing"

	"github.com/jmassawe/edupath/internal/app/store/audit"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/jmassawe/edupath/internal/domain/workflow"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (f *fixture) seedUniversity(t *testing.T) *models.University {
	t.Helper()
	u := &models.University{Name: "University of Toronto", Country: "Canada"}
	f.universities.Put(u)
	return u
}

func (f *fixture) seedApplication(t *testing.T, studentID, universityID primitive.ObjectID, status string) *models.UniversityApplication {
	t.Helper()
	a := &models.UniversityApplication{
		StudentID:    studentID,
		UniversityID: universityID,
		Program:      "MSc Computer Science",
		Status:       status,
		Batch:        models.BatchFirstChoice,
		Priority:     1,
	}
	if err := f.applications.Insert(context.Background(), a); err != nil {
		t.Fatalf("seed application: %v", err)
	}
	return a
}

func TestCreateApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusActive, &staff.ID)
	uni := f.seedUniversity(t)

	app, err := f.svc.CreateApplication(ctx, staff, CreateApplicationInput{
		StudentID:    st.ID,
		UniversityID: uni.ID,
		Program:      "MSc Computer Science",
		Batch:        models.BatchFirstChoice,
		Priority:     1,
	})
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}
	if app.Status != models.ApplicationStatusDraft {
		t.Errorf("status = %q, want draft", app.Status)
	}
}

func TestCreateApplication_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusActive, &staff.ID)
	uni := f.seedUniversity(t)

	base := CreateApplicationInput{
		StudentID:    st.ID,
		UniversityID: uni.ID,
		Program:      "MSc Computer Science",
		Batch:        models.BatchFirstChoice,
	}

	noProgram := base
	noProgram.Program = ""
	if _, err := f.svc.CreateApplication(ctx, staff, noProgram); !workflow.IsValidation(err) {
		t.Errorf("no program err = %v, want validation", err)
	}

	badBatch := base
	badBatch.Batch = 3
	if _, err := f.svc.CreateApplication(ctx, staff, badBatch); !workflow.IsValidation(err) {
		t.Errorf("bad batch err = %v, want validation", err)
	}
}

func TestCreateApplication_StudentNotActive(t *testing.T) {
	f := newFixture(t)
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusPendingContract, &staff.ID)
	uni := f.seedUniversity(t)

	_, err := f.svc.CreateApplication(context.Background(), staff, CreateApplicationInput{
		StudentID:    st.ID,
		UniversityID: uni.ID,
		Program:      "MSc Computer Science",
		Batch:        models.BatchFirstChoice,
	})
	if !workflow.IsPreconditionFailed(err) {
		t.Errorf("err = %v, want precondition failed", err)
	}
}

func TestSubmitApplicationToAdmin_RequiresVerifiedDocuments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusActive, &staff.ID)
	uni := f.seedUniversity(t)
	app := f.seedApplication(t, st.ID, uni.ID, models.ApplicationStatusDraft)

	doc, err := f.svc.AddDocument(ctx, staff, st.ID, models.DocumentTypeTranscript, "Transcript", "transcript.pdf", true)
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	// The unverified required transcript blocks submission.
	err = f.svc.SubmitApplicationToAdmin(ctx, staff, app.ID)
	if !workflow.IsPreconditionFailed(err) {
		t.Fatalf("err = %v, want precondition failed", err)
	}
	got, _ := f.applications.GetByID(ctx, app.ID)
	if got.Status != models.ApplicationStatusDraft {
		t.Errorf("status = %q, want unchanged draft", got.Status)
	}

	if err := f.svc.ReviewDocument(ctx, staff, doc.ID, true); err != nil {
		t.Fatalf("ReviewDocument: %v", err)
	}
	if err := f.svc.SubmitApplicationToAdmin(ctx, staff, app.ID); err != nil {
		t.Fatalf("SubmitApplicationToAdmin: %v", err)
	}
	got, _ = f.applications.GetByID(ctx, app.ID)
	if got.Status != models.ApplicationStatusPendingAdmin {
		t.Errorf("status = %q, want pending_admin", got.Status)
	}
}

func TestSubmitApplicationToAdmin_StudentForbidden(t *testing.T) {
	f := newFixture(t)
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusActive, &staff.ID)
	uni := f.seedUniversity(t)
	app := f.seedApplication(t, st.ID, uni.ID, models.ApplicationStatusDraft)

	err := f.svc.SubmitApplicationToAdmin(context.Background(), studentActor(), app.ID)
	if !workflow.IsForbidden(err) {
		t.Errorf("err = %v, want forbidden (staff-only edge)", err)
	}
}

func TestReviewApplication_RoleGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusActive, &staff.ID)
	uni := f.seedUniversity(t)
	app := f.seedApplication(t, st.ID, uni.ID, models.ApplicationStatusPendingAdmin)

	if err := f.svc.ReviewApplication(ctx, staff, app.ID, true, ""); !workflow.IsForbidden(err) {
		t.Fatalf("staff err = %v, want forbidden", err)
	}
	if err := f.svc.ReviewApplication(ctx, adminActor(), app.ID, true, "strong profile"); err != nil {
		t.Fatalf("admin review: %v", err)
	}

	got, _ := f.applications.GetByID(ctx, app.ID)
	if got.Status != models.ApplicationStatusApproved {
		t.Errorf("status = %q, want approved", got.Status)
	}
}

func TestSubmitApplicationToUniversity_LocksProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusActive, &staff.ID)
	uni := f.seedUniversity(t)
	app := f.seedApplication(t, st.ID, uni.ID, models.ApplicationStatusApproved)

	if err := f.svc.SubmitApplicationToUniversity(ctx, staff, app.ID); err != nil {
		t.Fatalf("SubmitApplicationToUniversity: %v", err)
	}

	gotApp, _ := f.applications.GetByID(ctx, app.ID)
	if gotApp.Status != models.ApplicationStatusSubmittedToUni {
		t.Errorf("application status = %q, want submitted_to_uni", gotApp.Status)
	}
	gotStudent, _ := f.students.GetByID(ctx, st.ID)
	if !gotStudent.IsProfileLocked {
		t.Error("profile not locked when the application went out")
	}
}

func TestRecordUniversityDecision_Accepted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusSubmittedToUniversity, &staff.ID)
	uni := f.seedUniversity(t)
	app := f.seedApplication(t, st.ID, uni.ID, models.ApplicationStatusSubmittedToUni)

	err := f.svc.RecordUniversityDecision(ctx, staff, UniversityDecisionInput{
		ApplicationID: app.ID,
		Decision:      models.ApplicationStatusAccepted,
	})
	if err != nil {
		t.Fatalf("RecordUniversityDecision: %v", err)
	}

	gotApp, _ := f.applications.GetByID(ctx, app.ID)
	if gotApp.Status != models.ApplicationStatusAccepted {
		t.Errorf("application status = %q, want accepted", gotApp.Status)
	}
	gotStudent, _ := f.students.GetByID(ctx, st.ID)
	if gotStudent.Status != models.StudentStatusOfferReceived {
		t.Errorf("student status = %q, want offer_received", gotStudent.Status)
	}
	if entries := f.sink.ByAction(audit.ActionApplicationDecided); len(entries) != 1 {
		t.Errorf("audit entries = %d, want exactly 1 for the whole decision", len(entries))
	}
}

func TestRecordUniversityDecision_SecondAcceptance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusOfferReceived, &staff.ID)
	uni := f.seedUniversity(t)
	app := f.seedApplication(t, st.ID, uni.ID, models.ApplicationStatusSubmittedToUni)

	err := f.svc.RecordUniversityDecision(ctx, staff, UniversityDecisionInput{
		ApplicationID: app.ID,
		Decision:      models.ApplicationStatusAccepted,
	})
	if err != nil {
		t.Fatalf("RecordUniversityDecision: %v", err)
	}
	gotStudent, _ := f.students.GetByID(ctx, st.ID)
	if gotStudent.Status != models.StudentStatusOfferReceived {
		t.Errorf("student status = %q, want offer_received unchanged", gotStudent.Status)
	}
}

func TestRecordUniversityDecision_Returned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusSubmittedToUniversity, &staff.ID)
	uni := f.seedUniversity(t)
	app := f.seedApplication(t, st.ID, uni.ID, models.ApplicationStatusSubmittedToUni)

	// A return without a reason is rejected.
	err := f.svc.RecordUniversityDecision(ctx, staff, UniversityDecisionInput{
		ApplicationID: app.ID,
		Decision:      models.ApplicationStatusReturnedBySchool,
	})
	if !workflow.IsValidation(err) {
		t.Fatalf("err = %v, want validation", err)
	}

	err = f.svc.RecordUniversityDecision(ctx, staff, UniversityDecisionInput{
		ApplicationID:  app.ID,
		Decision:       models.ApplicationStatusReturnedBySchool,
		ReturnReason:   "transcript missing grading scale",
		ReturnedFields: []string{"education_history"},
	})
	if err != nil {
		t.Fatalf("RecordUniversityDecision: %v", err)
	}

	got, _ := f.applications.GetByID(ctx, app.ID)
	if got.Status != models.ApplicationStatusReturnedBySchool {
		t.Errorf("status = %q, want returned_by_school", got.Status)
	}
	if got.ReturnReason == "" || len(got.ReturnedFields) != 1 {
		t.Errorf("return reason/fields not recorded: %+v", got)
	}

	// After fixes the application goes back into the admin queue.
	if err := f.svc.ResubmitReturnedApplication(ctx, staff, app.ID); err != nil {
		t.Fatalf("ResubmitReturnedApplication: %v", err)
	}
	got, _ = f.applications.GetByID(ctx, app.ID)
	if got.Status != models.ApplicationStatusPendingAdmin {
		t.Errorf("status = %q, want pending_admin", got.Status)
	}
}

func TestRecordUniversityDecision_UnknownDecision(t *testing.T) {
	f := newFixture(t)
	staff := staffActor()
	st := f.seedStudent(t, models.StudentStatusSubmittedToUniversity, &staff.ID)
	uni := f.seedUniversity(t)
	app := f.seedApplication(t, st.ID, uni.ID, models.ApplicationStatusSubmittedToUni)

	err := f.svc.RecordUniversityDecision(context.Background(), staff, UniversityDecisionInput{
		ApplicationID: app.ID,
		Decision:      "waitlisted",
	})
	if !workflow.IsValidation(err) {
		t.Errorf("err = %v, want validation", err)
	}
}
