// internal/app/workflow/lifecycle/leads.go
package lifecycle

import (
	"context"
	"strings"
	"time"

	"github.com/jmassawe/edupath/internal/app/store/audit"
	"github.com/jmassawe/edupath/internal/app/system/transitions"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/jmassawe/edupath/internal/domain/workflow"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CreateLeadInput carries lead intake data.
type CreateLeadInput struct {
	FullName         string
	Email            string
	Phone            string
	Source           string
	StudyGoal        string
	PreferredCountry string
	Message          string
	AssignedStaffID  *primitive.ObjectID
}

// CreateLead records a new prospective student.
func (s *Service) CreateLead(ctx context.Context, actor workflow.Actor, in CreateLeadInput) (*models.Lead, error) {
	if actor.Role != models.RoleStaff && actor.Role != models.RoleAdmin {
		return nil, workflow.Forbiddenf("only staff may create leads")
	}
	if strings.TrimSpace(in.FullName) == "" {
		return nil, workflow.Validationf("lead needs a name")
	}
	if strings.TrimSpace(in.Email) == "" && strings.TrimSpace(in.Phone) == "" {
		return nil, workflow.Validationf("lead needs an email or a phone number")
	}

	lead := &models.Lead{
		FullName:         strings.TrimSpace(in.FullName),
		Email:            strings.TrimSpace(in.Email),
		Phone:            strings.TrimSpace(in.Phone),
		Source:           in.Source,
		StudyGoal:        in.StudyGoal,
		PreferredCountry: in.PreferredCountry,
		Message:          in.Message,
		Status:           models.LeadStatusNew,
		AssignedStaffID:  in.AssignedStaffID,
	}

	err := s.run(ctx, func(ctx context.Context) error {
		if err := s.leads.Insert(ctx, lead); err != nil {
			return err
		}
		_, err := s.rec.Record(ctx, audit.Entry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     audit.ActionLeadCreated,
			EntityType: audit.EntityLead,
			EntityID:   lead.ID,
			NewValue:   models.LeadStatusNew,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return lead, nil
}

// UpdateLeadStatus moves a lead along its status table. Conversion is not
// reachable here; ConvertLead is the only path to the converted status
// because it carries the financial commitment.
func (s *Service) UpdateLeadStatus(ctx context.Context, actor workflow.Actor, leadID primitive.ObjectID, newStatus string) (*models.Lead, error) {
	if newStatus == models.LeadStatusConverted {
		return nil, workflow.Validationf("use the convert operation to convert a lead")
	}

	done := s.mu.Lock(leadID.Hex())
	defer done()

	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if err := transitions.Can(transitions.KindLead, lead.Status, newStatus, actor.Role); err != nil {
		return nil, err
	}

	prev := lead.Status
	err = s.run(ctx, func(ctx context.Context) error {
		if err := s.leads.UpdateStatus(ctx, leadID, newStatus, nil); err != nil {
			return err
		}
		_, err := s.rec.Record(ctx, audit.Entry{
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        audit.ActionLeadStatusChanged,
			EntityType:    audit.EntityLead,
			EntityID:      leadID,
			PreviousValue: prev,
			NewValue:      newStatus,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	lead.Status = newStatus
	return lead, nil
}

// ConvertLeadInput carries the point-in-time financial commitment fixed at
// conversion.
type ConvertLeadInput struct {
	LeadID          primitive.ObjectID
	AssignedStaffID primitive.ObjectID
	PaymentAmount   int64
	PaymentCurrency string
	ReceiptRef      string
}

// ConvertLead turns a lead into a student: the lead goes terminal, a student
// record is created in pending_contract, the opening-book invoice is written
// already paid, and the receipt is recorded on the student's file. One audit
// entry covers the whole conversion.
func (s *Service) ConvertLead(ctx context.Context, actor workflow.Actor, in ConvertLeadInput) (*models.Student, error) {
	if in.PaymentAmount <= 0 {
		return nil, workflow.Validationf("opening-book payment must be positive")
	}
	if strings.TrimSpace(in.ReceiptRef) == "" {
		return nil, workflow.Validationf("conversion needs a receipt reference")
	}
	if strings.TrimSpace(in.PaymentCurrency) == "" {
		return nil, workflow.Validationf("conversion needs a currency")
	}

	done := s.mu.Lock(in.LeadID.Hex())
	defer done()

	lead, err := s.leads.GetByID(ctx, in.LeadID)
	if err != nil {
		return nil, err
	}
	if err := transitions.Can(transitions.KindLead, lead.Status, models.LeadStatusConverted, actor.Role); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	student := &models.Student{
		LeadID:          in.LeadID,
		FullName:        lead.FullName,
		Email:           lead.Email,
		Phone:           lead.Phone,
		Status:          models.StudentStatusPendingContract,
		AssignedStaffID: &in.AssignedStaffID,
	}

	err = s.run(ctx, func(ctx context.Context) error {
		if err := s.students.Insert(ctx, student); err != nil {
			return err
		}
		inv, err := s.ledger.OnConvert(ctx, student.ID, in.PaymentAmount, in.PaymentCurrency, in.ReceiptRef, actor.ID)
		if err != nil {
			return err
		}
		receipt := &models.Document{
			StudentID:  student.ID,
			Type:       models.DocumentTypeReceipt,
			Name:       "Opening book receipt " + in.ReceiptRef,
			Status:     models.DocumentStatusVerified,
			FileRef:    in.ReceiptRef,
			VerifiedAt: &now,
			VerifiedBy: &actor.ID,
		}
		if err := s.documents.Insert(ctx, receipt); err != nil {
			return err
		}
		if err := s.leads.UpdateStatus(ctx, in.LeadID, models.LeadStatusConverted, &now); err != nil {
			return err
		}
		_, err = s.rec.Record(ctx, audit.Entry{
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        audit.ActionLeadConverted,
			EntityType:    audit.EntityLead,
			EntityID:      in.LeadID,
			PreviousValue: lead.Status,
			NewValue:      models.LeadStatusConverted,
			Details: map[string]string{
				"student_id": student.ID.Hex(),
				"invoice_id": inv.ID.Hex(),
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("lead converted",
		zap.String("lead_id", in.LeadID.Hex()),
		zap.String("student_id", student.ID.Hex()))
	return student, nil
}

// UpdateLeadNotes edits the free-text notes, the only field that stays
// writable after a lead goes terminal.
func (s *Service) UpdateLeadNotes(ctx context.Context, actor workflow.Actor, leadID primitive.ObjectID, notes string) error {
	if actor.Role != models.RoleStaff && actor.Role != models.RoleAdmin {
		return workflow.Forbiddenf("only staff may edit lead notes")
	}
	return s.leads.UpdateNotes(ctx, leadID, notes)
}
