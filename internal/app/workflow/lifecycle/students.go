// internal/app/workflow/lifecycle/students.go
package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmassawe/edupath/internal/app/policy/lockpolicy"
	"github.com/jmassawe/edupath/internal/app/store/audit"
	"github.com/jmassawe/edupath/internal/app/system/transitions"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/jmassawe/edupath/internal/domain/workflow"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ActivateStudentInput carries the evidence required to activate: the signed
// service contract and the deposit receipt.
type ActivateStudentInput struct {
	StudentID         primitive.ObjectID
	SignedContractRef string
	DepositReceiptRef string
}

// ActivateStudent moves a student from pending_contract to active once both
// the signed contract and the deposit receipt are on file. Both documents are
// attached to the student as part of the same unit of work.
func (s *Service) ActivateStudent(ctx context.Context, actor workflow.Actor, in ActivateStudentInput) error {
	if strings.TrimSpace(in.SignedContractRef) == "" {
		return workflow.PreconditionFailedf("activation requires a signed contract reference")
	}
	if strings.TrimSpace(in.DepositReceiptRef) == "" {
		return workflow.PreconditionFailedf("activation requires a deposit receipt reference")
	}

	done := s.mu.Lock(in.StudentID.Hex())
	defer done()

	st, err := s.students.GetByID(ctx, in.StudentID)
	if err != nil {
		return err
	}
	if err := transitions.Can(transitions.KindStudent, st.Status, models.StudentStatusActive, actor.Role); err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.run(ctx, func(ctx context.Context) error {
		contractDoc := &models.Document{
			StudentID:  in.StudentID,
			Type:       models.DocumentTypeSignedContract,
			Name:       "Signed contract " + in.SignedContractRef,
			Status:     models.DocumentStatusVerified,
			FileRef:    in.SignedContractRef,
			VerifiedAt: &now,
			VerifiedBy: &actor.ID,
		}
		if err := s.documents.Insert(ctx, contractDoc); err != nil {
			return err
		}
		receiptDoc := &models.Document{
			StudentID:  in.StudentID,
			Type:       models.DocumentTypeReceipt,
			Name:       "Deposit receipt " + in.DepositReceiptRef,
			Status:     models.DocumentStatusVerified,
			FileRef:    in.DepositReceiptRef,
			VerifiedAt: &now,
			VerifiedBy: &actor.ID,
		}
		if err := s.documents.Insert(ctx, receiptDoc); err != nil {
			return err
		}
		if err := s.students.UpdateStatus(ctx, in.StudentID, models.StudentStatusActive); err != nil {
			return err
		}
		_, err := s.rec.Record(ctx, audit.Entry{
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        audit.ActionStudentActivated,
			EntityType:    audit.EntityStudent,
			EntityID:      in.StudentID,
			PreviousValue: st.Status,
			NewValue:      models.StudentStatusActive,
			Details: map[string]string{
				"signed_contract_ref": in.SignedContractRef,
				"deposit_receipt_ref": in.DepositReceiptRef,
			},
		})
		return err
	})
}

// UpdateProfileField writes one master-profile field, honoring the field
// lock. A write that only succeeds via admin bypass is audited with
// override=true.
func (s *Service) UpdateProfileField(ctx context.Context, actor workflow.Actor, studentID primitive.ObjectID, field string, value any) error {
	if strings.TrimSpace(field) == "" {
		return workflow.Validationf("field name is required")
	}

	done := s.mu.Lock(studentID.Hex())
	defer done()

	st, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	dec := lockpolicy.IsEditable(st, field, actor.Role)
	if !dec.Editable {
		return workflow.Forbiddenf("field %q is locked", field)
	}

	return s.run(ctx, func(ctx context.Context) error {
		if err := s.students.UpdateProfileField(ctx, studentID, field, value); err != nil {
			return err
		}
		_, err := s.rec.Record(ctx, audit.Entry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     audit.ActionProfileFieldEdited,
			EntityType: audit.EntityStudent,
			EntityID:   studentID,
			NewValue:   fmt.Sprintf("%v", value),
			Override:   dec.Override,
			Details:    map[string]string{"field": field},
		})
		return err
	})
}

// Sub-record collection names used for lock checks and audit details. The
// whole collection locks as one field.
const (
	fieldFamilyMembers     = "family_members"
	fieldEducationHistory  = "education_history"
	fieldEmploymentHistory = "employment_history"
)

// AddFamilyMember appends a family member to the profile.
func (s *Service) AddFamilyMember(ctx context.Context, actor workflow.Actor, studentID primitive.ObjectID, fm models.FamilyMember) error {
	if strings.TrimSpace(fm.FullName) == "" || strings.TrimSpace(fm.Relationship) == "" {
		return workflow.Validationf("family member needs a name and a relationship")
	}
	return s.addSubRecord(ctx, actor, studentID, fieldFamilyMembers, func(ctx context.Context) error {
		return s.students.AddFamilyMember(ctx, studentID, fm)
	})
}

// AddEducationRecord appends an education history entry to the profile.
func (s *Service) AddEducationRecord(ctx context.Context, actor workflow.Actor, studentID primitive.ObjectID, er models.EducationRecord) error {
	if strings.TrimSpace(er.Institution) == "" || strings.TrimSpace(er.Level) == "" {
		return workflow.Validationf("education record needs an institution and a level")
	}
	return s.addSubRecord(ctx, actor, studentID, fieldEducationHistory, func(ctx context.Context) error {
		return s.students.AddEducationRecord(ctx, studentID, er)
	})
}

// AddEmploymentRecord appends an employment history entry to the profile.
func (s *Service) AddEmploymentRecord(ctx context.Context, actor workflow.Actor, studentID primitive.ObjectID, er models.EmploymentRecord) error {
	if strings.TrimSpace(er.Employer) == "" {
		return workflow.Validationf("employment record needs an employer")
	}
	return s.addSubRecord(ctx, actor, studentID, fieldEmploymentHistory, func(ctx context.Context) error {
		return s.students.AddEmploymentRecord(ctx, studentID, er)
	})
}

func (s *Service) addSubRecord(ctx context.Context, actor workflow.Actor, studentID primitive.ObjectID, field string, push func(ctx context.Context) error) error {
	done := s.mu.Lock(studentID.Hex())
	defer done()

	st, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	dec := lockpolicy.IsEditable(st, field, actor.Role)
	if !dec.Editable {
		return workflow.Forbiddenf("field %q is locked", field)
	}

	return s.run(ctx, func(ctx context.Context) error {
		if err := push(ctx); err != nil {
			return err
		}
		_, err := s.rec.Record(ctx, audit.Entry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     audit.ActionProfileFieldEdited,
			EntityType: audit.EntityStudent,
			EntityID:   studentID,
			Override:   dec.Override,
			Details:    map[string]string{"field": field, "op": "append"},
		})
		return err
	})
}

// LockAndSubmitProfile freezes the master profile and hands it to the admin
// for review. The profile must carry at least one family member and one
// education record before it can be submitted.
func (s *Service) LockAndSubmitProfile(ctx context.Context, actor workflow.Actor, studentID primitive.ObjectID) error {
	done := s.mu.Lock(studentID.Hex())
	defer done()

	st, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	if err := transitions.Can(transitions.KindStudent, st.Status, models.StudentStatusSubmittedToAdmin, actor.Role); err != nil {
		return err
	}
	if !st.HasRequiredSubRecords() {
		return workflow.PreconditionFailedf("profile needs at least one family member and one education record before submission")
	}

	return s.run(ctx, func(ctx context.Context) error {
		if err := s.locker.Lock(ctx, studentID); err != nil {
			return err
		}
		if err := s.students.UpdateStatus(ctx, studentID, models.StudentStatusSubmittedToAdmin); err != nil {
			return err
		}
		_, err := s.rec.Record(ctx, audit.Entry{
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        audit.ActionProfileSubmitted,
			EntityType:    audit.EntityStudent,
			EntityID:      studentID,
			PreviousValue: st.Status,
			NewValue:      models.StudentStatusSubmittedToAdmin,
		})
		return err
	})
}

// ForwardProfileToUniversity is the admin approval of a submitted profile:
// the case moves to submitted_to_university and the lock stays in force.
func (s *Service) ForwardProfileToUniversity(ctx context.Context, actor workflow.Actor, studentID primitive.ObjectID) error {
	done := s.mu.Lock(studentID.Hex())
	defer done()

	st, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	if err := transitions.Can(transitions.KindStudent, st.Status, models.StudentStatusSubmittedToUniversity, actor.Role); err != nil {
		return err
	}

	return s.run(ctx, func(ctx context.Context) error {
		if err := s.locker.Lock(ctx, studentID); err != nil {
			return err
		}
		if err := s.students.UpdateStatus(ctx, studentID, models.StudentStatusSubmittedToUniversity); err != nil {
			return err
		}
		_, err := s.rec.Record(ctx, audit.Entry{
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        audit.ActionProfileForwarded,
			EntityType:    audit.EntityStudent,
			EntityID:      studentID,
			PreviousValue: st.Status,
			NewValue:      models.StudentStatusSubmittedToUniversity,
		})
		return err
	})
}

// ReturnProfileForDocuments is the admin sending a submitted profile back to
// the documents stage for fixes.
func (s *Service) ReturnProfileForDocuments(ctx context.Context, actor workflow.Actor, studentID primitive.ObjectID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return workflow.Validationf("returning a profile needs a reason")
	}

	done := s.mu.Lock(studentID.Hex())
	defer done()

	st, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	if err := transitions.Can(transitions.KindStudent, st.Status, models.StudentStatusDocumentsPending, actor.Role); err != nil {
		return err
	}

	return s.run(ctx, func(ctx context.Context) error {
		if err := s.students.UpdateStatus(ctx, studentID, models.StudentStatusDocumentsPending); err != nil {
			return err
		}
		_, err := s.rec.Record(ctx, audit.Entry{
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        audit.ActionProfileReturned,
			EntityType:    audit.EntityStudent,
			EntityID:      studentID,
			PreviousValue: st.Status,
			NewValue:      models.StudentStatusDocumentsPending,
			Details:       map[string]string{"reason": reason},
		})
		return err
	})
}

// AddDocument records a document on the student's file.
func (s *Service) AddDocument(ctx context.Context, actor workflow.Actor, studentID primitive.ObjectID, docType, name, fileRef string, required bool) (*models.Document, error) {
	if actor.Role != models.RoleStaff && actor.Role != models.RoleAdmin {
		return nil, workflow.Forbiddenf("only staff may add documents")
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(docType) == "" {
		return nil, workflow.Validationf("document needs a type and a name")
	}

	now := time.Now().UTC()
	doc := &models.Document{
		StudentID:  studentID,
		Type:       docType,
		Name:       name,
		Required:   required,
		Status:     models.DocumentStatusUploaded,
		FileRef:    fileRef,
		UploadedAt: &now,
	}
	err := s.run(ctx, func(ctx context.Context) error {
		if err := s.documents.Insert(ctx, doc); err != nil {
			return err
		}
		_, err := s.rec.Record(ctx, audit.Entry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     audit.ActionDocumentAdded,
			EntityType: audit.EntityDocument,
			EntityID:   doc.ID,
			NewValue:   models.DocumentStatusUploaded,
			Details:    map[string]string{"student_id": studentID.Hex(), "type": docType},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ReviewDocument verifies or rejects an uploaded document.
func (s *Service) ReviewDocument(ctx context.Context, actor workflow.Actor, documentID primitive.ObjectID, verified bool) error {
	if actor.Role != models.RoleStaff && actor.Role != models.RoleAdmin {
		return workflow.Forbiddenf("only staff may review documents")
	}

	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Status == models.DocumentStatusVerified || doc.Status == models.DocumentStatusRejected {
		return workflow.InvalidStatef("document %s already reviewed", documentID.Hex())
	}

	status := models.DocumentStatusRejected
	if verified {
		status = models.DocumentStatusVerified
	}
	return s.run(ctx, func(ctx context.Context) error {
		if err := s.documents.SetStatus(ctx, documentID, status, &actor.ID); err != nil {
			return err
		}
		_, err := s.rec.Record(ctx, audit.Entry{
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        audit.ActionDocumentReviewed,
			EntityType:    audit.EntityDocument,
			EntityID:      documentID,
			PreviousValue: doc.Status,
			NewValue:      status,
			Details:       map[string]string{"student_id": doc.StudentID.Hex()},
		})
		return err
	})
}

// logOp is shared debug logging for status moves.
func (s *Service) logOp(op string, id primitive.ObjectID, from, to string) {
	s.log.Info(op,
		zap.String("id", id.Hex()),
		zap.String("from", from),
		zap.String("to", to))
}
