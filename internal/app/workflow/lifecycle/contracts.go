// internal/app/workflow/lifecycle/contracts.go
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
)

// CreateContractInput carries the terms of a new service agreement.
type CreateContractInput struct {
	StudentID primitive.ObjectID
	Amount    int64
	Currency  string
	ExpiresAt *time.Time
}

// CreateContract drafts a service agreement for a student.
func (s *Service) CreateContract(ctx context.Context, actor workflow.Actor, in CreateContractInput) (*models.Contract, error) {
	if actor.Role != models.RoleStaff && actor.Role != models.RoleAdmin {
		return nil, workflow.Forbiddenf("only staff may create contracts")
	}
	if in.Amount <= 0 {
		return nil, workflow.Validationf("contract amount must be positive")
	}
	if strings.TrimSpace(in.Currency) == "" {
		return nil, workflow.Validationf("contract needs a currency")
	}
	if _, err := s.students.GetByID(ctx, in.StudentID); err != nil {
		return nil, err
	}

	c := &models.Contract{
		StudentID: in.StudentID,
		Status:    models.ContractStatusDraft,
		Amount:    in.Amount,
		Currency:  in.Currency,
		ExpiresAt: in.ExpiresAt,
	}
	err := s.run(ctx, func(ctx context.Context) error {
		if err := s.contracts.Insert(ctx, c); err != nil {
			return err
		}
		_, err := s.rec.Record(ctx, audit.Entry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     audit.ActionContractCreated,
			EntityType: audit.EntityContract,
			EntityID:   c.ID,
			NewValue:   models.ContractStatusDraft,
			Details:    map[string]string{"student_id": in.StudentID.Hex()},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// AdvanceContract moves a contract one step along its table without firing
// side effects: draft -> pending, pending -> pending_signature, and
// pending_signature -> expired all pass through here. Signing does not; it
// accrues commission and goes through SignContract.
func (s *Service) AdvanceContract(ctx context.Context, actor workflow.Actor, contractID primitive.ObjectID, newStatus string) error {
	if newStatus == models.ContractStatusSigned {
		return workflow.Validationf("use the sign operation to sign a contract")
	}

	done := s.mu.Lock(contractID.Hex())
	defer done()

	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return err
	}
	if err := transitions.Can(transitions.KindContract, c.Status, newStatus, actor.Role); err != nil {
		return err
	}

	err = s.run(ctx, func(ctx context.Context) error {
		if err := s.contracts.UpdateStatus(ctx, contractID, newStatus); err != nil {
			return err
		}
		_, err := s.rec.Record(ctx, audit.Entry{
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        audit.ActionContractStatusChanged,
			EntityType:    audit.EntityContract,
			EntityID:      contractID,
			PreviousValue: c.Status,
			NewValue:      newStatus,
		})
		return err
	})
	if err != nil {
		return err
	}
	s.logOp("contract advanced", contractID, c.Status, newStatus)
	return nil
}

// SignContract records the student's signature and accrues the assigned
// staff member's commission in the same unit of work.
func (s *Service) SignContract(ctx context.Context, actor workflow.Actor, contractID primitive.ObjectID) error {
	done := s.mu.Lock(contractID.Hex())
	defer done()

	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return err
	}
	if err := transitions.Can(transitions.KindContract, c.Status, models.ContractStatusSigned, actor.Role); err != nil {
		return err
	}
	st, err := s.students.GetByID(ctx, c.StudentID)
	if err != nil {
		return err
	}
	if st.AssignedStaffID == nil {
		return workflow.PreconditionFailedf("student has no assigned staff; commission cannot accrue")
	}

	return s.run(ctx, func(ctx context.Context) error {
		if err := s.contracts.UpdateStatus(ctx, contractID, models.ContractStatusSigned); err != nil {
			return err
		}
		com, err := s.ledger.OnContractSigned(ctx, c, *st.AssignedStaffID)
		if err != nil {
			return err
		}
		_, err = s.rec.Record(ctx, audit.Entry{
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        audit.ActionContractSigned,
			EntityType:    audit.EntityContract,
			EntityID:      contractID,
			PreviousValue: c.Status,
			NewValue:      models.ContractStatusSigned,
			Details: map[string]string{
				"student_id":    c.StudentID.Hex(),
				"commission_id": com.ID.Hex(),
			},
		})
		return err
	})
}

// CancelContract voids a contract. No edge in the transition table leads to
// cancelled: cancellation is always an admin override, including of a signed
// contract, and is audited with override=true.
func (s *Service) CancelContract(ctx context.Context, actor workflow.Actor, contractID primitive.ObjectID, reason string) error {
	if actor.Role != models.RoleAdmin {
		return workflow.Forbiddenf("only admins may cancel contracts")
	}
	if strings.TrimSpace(reason) == "" {
		return workflow.Validationf("cancelling a contract needs a reason")
	}

	done := s.mu.Lock(contractID.Hex())
	defer done()

	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return err
	}
	if c.Status == models.ContractStatusCancelled || c.Status == models.ContractStatusExpired {
		return workflow.InvalidStatef("contract %s is already %s", contractID.Hex(), c.Status)
	}

	return s.run(ctx, func(ctx context.Context) error {
		if err := s.contracts.UpdateStatus(ctx, contractID, models.ContractStatusCancelled); err != nil {
			return err
		}
		_, err := s.rec.Record(ctx, audit.Entry{
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        audit.ActionContractCancelled,
			EntityType:    audit.EntityContract,
			EntityID:      contractID,
			PreviousValue: c.Status,
			NewValue:      models.ContractStatusCancelled,
			Override:      true,
			Details:       map[string]string{"reason": reason},
		})
		return err
	})
}
