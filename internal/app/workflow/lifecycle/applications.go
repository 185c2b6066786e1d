// internal/app/workflow/lifecycle/applications.go
package lifecycle

import (
	"context"
	"strings"

	"github.com/jmassawe/edupath/internal/app/store/audit"
	"github.com/jmassawe/edupath/internal/app/system/transitions"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/jmassawe/edupath/internal/domain/workflow"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateApplicationInput carries the data for a new university application.
type CreateApplicationInput struct {
	StudentID    primitive.ObjectID
	UniversityID primitive.ObjectID
	Program      string
	Batch        int
	Priority     int
}

// CreateApplication opens a draft application for a student at a university.
func (s *Service) CreateApplication(ctx context.Context, actor workflow.Actor, in CreateApplicationInput) (*models.UniversityApplication, error) {
	if actor.Role != models.RoleStaff && actor.Role != models.RoleAdmin {
		return nil, workflow.Forbiddenf("only staff may create applications")
	}
	if strings.TrimSpace(in.Program) == "" {
		return nil, workflow.Validationf("application needs a program")
	}
	if in.Batch != models.BatchFirstChoice && in.Batch != models.BatchSafety {
		return nil, workflow.Validationf("batch must be %d or %d", models.BatchFirstChoice, models.BatchSafety)
	}

	if _, err := s.universities.GetByID(ctx, in.UniversityID); err != nil {
		return nil, err
	}
	st, err := s.students.GetByID(ctx, in.StudentID)
	if err != nil {
		return nil, err
	}
	if st.Status == models.StudentStatusPendingContract {
		return nil, workflow.PreconditionFailedf("student is not active yet")
	}

	app := &models.UniversityApplication{
		StudentID:    in.StudentID,
		UniversityID: in.UniversityID,
		Program:      in.Program,
		Status:       models.ApplicationStatusDraft,
		Batch:        in.Batch,
		Priority:     in.Priority,
	}
	err = s.run(ctx, func(ctx context.Context) error {
		if err := s.applications.Insert(ctx, app); err != nil {
			return err
		}
		_, err := s.rec.Record(ctx, audit.Entry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     audit.ActionApplicationCreated,
			EntityType: audit.EntityApplication,
			EntityID:   app.ID,
			NewValue:   models.ApplicationStatusDraft,
			Details:    map[string]string{"student_id": in.StudentID.Hex(), "university_id": in.UniversityID.Hex()},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// SubmitApplicationToAdmin moves a draft application into the admin review
// queue. The student's required documents must all be verified first.
func (s *Service) SubmitApplicationToAdmin(ctx context.Context, actor workflow.Actor, applicationID primitive.ObjectID) error {
	done := s.mu.Lock(applicationID.Hex())
	defer done()

	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if err := transitions.Can(transitions.KindApplication, app.Status, models.ApplicationStatusPendingAdmin, actor.Role); err != nil {
		return err
	}
	unverified, err := s.documents.CountUnverifiedRequired(ctx, app.StudentID)
	if err != nil {
		return err
	}
	if unverified > 0 {
		return workflow.PreconditionFailedf("%d required document(s) not yet verified", unverified)
	}

	return s.run(ctx, func(ctx context.Context) error {
		if err := s.applications.UpdateStatus(ctx, applicationID, models.ApplicationStatusPendingAdmin); err != nil {
			return err
		}
		_, err := s.rec.Record(ctx, audit.Entry{
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        audit.ActionApplicationSubmitted,
			EntityType:    audit.EntityApplication,
			EntityID:      applicationID,
			PreviousValue: app.Status,
			NewValue:      models.ApplicationStatusPendingAdmin,
		})
		return err
	})
}

// ReviewApplication is the admin decision on a pending application: approve
// for submission to the university, or reject it.
func (s *Service) ReviewApplication(ctx context.Context, actor workflow.Actor, applicationID primitive.ObjectID, approve bool, note string) error {
	done := s.mu.Lock(applicationID.Hex())
	defer done()

	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	target := models.ApplicationStatusRejected
	if approve {
		target = models.ApplicationStatusApproved
	}
	if err := transitions.Can(transitions.KindApplication, app.Status, target, actor.Role); err != nil {
		return err
	}

	return s.run(ctx, func(ctx context.Context) error {
		if err := s.applications.UpdateStatus(ctx, applicationID, target); err != nil {
			return err
		}
		entry := audit.Entry{
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        audit.ActionApplicationReviewed,
			EntityType:    audit.EntityApplication,
			EntityID:      applicationID,
			PreviousValue: app.Status,
			NewValue:      target,
		}
		if note != "" {
			entry.Details = map[string]string{"note": note}
		}
		_, err := s.rec.Record(ctx, entry)
		return err
	})
}

// SubmitApplicationToUniversity sends an approved application out. The
// student's profile locks at this point if it is not locked already.
func (s *Service) SubmitApplicationToUniversity(ctx context.Context, actor workflow.Actor, applicationID primitive.ObjectID) error {
	done := s.mu.Lock(applicationID.Hex())
	defer done()

	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if err := transitions.Can(transitions.KindApplication, app.Status, models.ApplicationStatusSubmittedToUni, actor.Role); err != nil {
		return err
	}

	err = s.run(ctx, func(ctx context.Context) error {
		if err := s.applications.UpdateStatus(ctx, applicationID, models.ApplicationStatusSubmittedToUni); err != nil {
			return err
		}
		if err := s.locker.Lock(ctx, app.StudentID); err != nil {
			return err
		}
		_, err := s.rec.Record(ctx, audit.Entry{
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        audit.ActionApplicationForwarded,
			EntityType:    audit.EntityApplication,
			EntityID:      applicationID,
			PreviousValue: app.Status,
			NewValue:      models.ApplicationStatusSubmittedToUni,
			Details:       map[string]string{"student_id": app.StudentID.Hex()},
		})
		return err
	})
	if err != nil {
		return err
	}
	s.logOp("application submitted to university", applicationID, app.Status, models.ApplicationStatusSubmittedToUni)
	return nil
}

// UniversityDecisionInput carries the university's answer on an application.
type UniversityDecisionInput struct {
	ApplicationID primitive.ObjectID
	// Decision is one of accepted, declined, or returned_by_school.
	Decision string
	// ReturnReason and ReturnedFields are required for returned_by_school.
	ReturnReason   string
	ReturnedFields []string
}

// RecordUniversityDecision records the university's answer. An acceptance
// also advances the student to offer_received; a return bounces the
// application back to the admin queue with the reason and the fields to fix.
func (s *Service) RecordUniversityDecision(ctx context.Context, actor workflow.Actor, in UniversityDecisionInput) error {
	switch in.Decision {
	case models.ApplicationStatusAccepted, models.ApplicationStatusDeclined:
	case models.ApplicationStatusReturnedBySchool:
		if strings.TrimSpace(in.ReturnReason) == "" {
			return workflow.Validationf("a returned application needs a reason")
		}
	default:
		return workflow.Validationf("unknown university decision %q", in.Decision)
	}

	done := s.mu.Lock(in.ApplicationID.Hex())
	defer done()

	app, err := s.applications.GetByID(ctx, in.ApplicationID)
	if err != nil {
		return err
	}
	if err := transitions.Can(transitions.KindApplication, app.Status, in.Decision, actor.Role); err != nil {
		return err
	}

	return s.run(ctx, func(ctx context.Context) error {
		if in.Decision == models.ApplicationStatusReturnedBySchool {
			if err := s.applications.SetReturn(ctx, in.ApplicationID, in.ReturnReason, in.ReturnedFields); err != nil {
				return err
			}
		}
		if err := s.applications.UpdateStatus(ctx, in.ApplicationID, in.Decision); err != nil {
			return err
		}
		if in.Decision == models.ApplicationStatusAccepted {
			st, err := s.students.GetByID(ctx, app.StudentID)
			if err != nil {
				return err
			}
			// The first acceptance moves the case to offer_received; later
			// acceptances for the same student leave the status alone.
			if st.Status == models.StudentStatusSubmittedToUniversity {
				if err := s.students.UpdateStatus(ctx, app.StudentID, models.StudentStatusOfferReceived); err != nil {
					return err
				}
			}
		}

		entry := audit.Entry{
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        audit.ActionApplicationDecided,
			EntityType:    audit.EntityApplication,
			EntityID:      in.ApplicationID,
			PreviousValue: app.Status,
			NewValue:      in.Decision,
			Details:       map[string]string{"student_id": app.StudentID.Hex()},
		}
		if in.Decision == models.ApplicationStatusReturnedBySchool {
			entry.Details["reason"] = in.ReturnReason
			entry.Details["fields"] = strings.Join(in.ReturnedFields, ",")
		}
		_, err := s.rec.Record(ctx, entry)
		return err
	})
}

// ResubmitReturnedApplication puts a returned application back in the admin
// queue after the flagged fields were fixed.
func (s *Service) ResubmitReturnedApplication(ctx context.Context, actor workflow.Actor, applicationID primitive.ObjectID) error {
	done := s.mu.Lock(applicationID.Hex())
	defer done()

	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.Status != models.ApplicationStatusReturnedBySchool {
		return workflow.InvalidStatef("application %s is not returned_by_school", applicationID.Hex())
	}
	if err := transitions.Can(transitions.KindApplication, app.Status, models.ApplicationStatusPendingAdmin, actor.Role); err != nil {
		return err
	}

	return s.run(ctx, func(ctx context.Context) error {
		if err := s.applications.UpdateStatus(ctx, applicationID, models.ApplicationStatusPendingAdmin); err != nil {
			return err
		}
		_, err := s.rec.Record(ctx, audit.Entry{
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        audit.ActionApplicationSubmitted,
			EntityType:    audit.EntityApplication,
			EntityID:      applicationID,
			PreviousValue: app.Status,
			NewValue:      models.ApplicationStatusPendingAdmin,
			Details:       map[string]string{"resubmission": "true"},
		})
		return err
	})
}
