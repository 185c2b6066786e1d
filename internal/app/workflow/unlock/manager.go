// internal/app/workflow/unlock/manager.go

// Package unlock owns the field-lock state of student profiles and the
// unlock-request queue (request -> approve/deny -> apply).
//
// Locking preserves the integrity of data once it has been submitted for
// external review while still allowing corrections through an explicit,
// audited exception path rather than silent edits.
package unlock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmassawe/edupath/internal/app/store/audit"
	unlockstore "github.com/jmassawe/edupath/internal/app/store/unlocks"
	"github.com/jmassawe/edupath/internal/app/system/auditlog"
	"github.com/jmassawe/edupath/internal/app/system/entitymu"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/jmassawe/edupath/internal/domain/workflow"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// StudentStore is the slice of the student store the manager needs.
type StudentStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Student, error)
	SetLock(ctx context.Context, id primitive.ObjectID, locked bool, lockedAt *time.Time) error
	MergeUnlockedFields(ctx context.Context, id primitive.ObjectID, fields []string) error
}

// RequestStore is the slice of the unlock-request store the manager needs.
type RequestStore interface {
	Insert(ctx context.Context, r *models.UnlockRequest) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.UnlockRequest, error)
	Resolve(ctx context.Context, id primitive.ObjectID, status string, resolverID primitive.ObjectID) error
}

// TxnRunner wraps an operation in a storage transaction. The default runs
// the operation directly; bootstrap installs the Mongo transaction helper.
type TxnRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Manager coordinates lock state and the unlock-request queue.
type Manager struct {
	students StudentStore
	requests RequestStore
	rec      *auditlog.Recorder
	mu       *entitymu.Map
	run      TxnRunner
	log      *zap.Logger
}

// New creates a Manager. The entitymu map serializes writes per student so
// two simultaneous approvals cannot produce an inconsistent unlocked set.
func New(students StudentStore, requests RequestStore, rec *auditlog.Recorder, mu *entitymu.Map, run TxnRunner, logger *zap.Logger) *Manager {
	if run == nil {
		run = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return &Manager{students: students, requests: requests, rec: rec, mu: mu, run: run, log: logger}
}

// Lock flips the profile to locked, clearing any stale unlocked fields from
// a previous unlock cycle. It writes no audit entry of its own: locking only
// happens inside lifecycle operations, and those record the single audit
// entry for the whole operation.
func (m *Manager) Lock(ctx context.Context, studentID primitive.ObjectID) error {
	now := time.Now().UTC()
	return m.students.SetLock(ctx, studentID, true, &now)
}

// RequestUnlock opens a request to reopen specific locked fields. Only staff
// file requests; admins bypass the lock directly (audited as overrides).
func (m *Manager) RequestUnlock(ctx context.Context, actor workflow.Actor, studentID primitive.ObjectID, fields []string, reason string) (*models.UnlockRequest, error) {
	if actor.Role != models.RoleStaff {
		return nil, workflow.Forbiddenf("only staff may request unlocks")
	}
	if len(fields) == 0 {
		return nil, workflow.Validationf("unlock request needs at least one field")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, workflow.Validationf("unlock request needs a reason")
	}

	unlockDone := m.mu.Lock(studentID.Hex())
	defer unlockDone()

	st, err := m.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !st.IsProfileLocked {
		return nil, workflow.Validationf("profile is not locked; edit it directly")
	}

	req := &models.UnlockRequest{
		StudentID:   studentID,
		Fields:      fields,
		Reason:      reason,
		Status:      models.UnlockStatusPending,
		RequestedBy: actor.ID,
	}
	// Insert and audit commit or abort together.
	err = m.run(ctx, func(ctx context.Context) error {
		if err := m.requests.Insert(ctx, req); err != nil {
			return fmt.Errorf("insert unlock request: %w", err)
		}
		_, err := m.rec.Record(ctx, audit.Entry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     audit.ActionUnlockRequested,
			EntityType: audit.EntityUnlock,
			EntityID:   req.ID,
			NewValue:   strings.Join(fields, ","),
			Details:    map[string]string{"student_id": studentID.Hex(), "reason": reason},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ResolveUnlock decides a pending request. Approval merges the requested
// fields into the student's unlocked set exactly once; denial closes the
// request with no student mutation. A request already resolved fails with
// an invalid-state error.
func (m *Manager) ResolveUnlock(ctx context.Context, actor workflow.Actor, requestID primitive.ObjectID, approve bool) error {
	if actor.Role != models.RoleAdmin {
		return workflow.Forbiddenf("only admins may resolve unlock requests")
	}

	req, err := m.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.IsResolved() {
		return workflow.InvalidStatef("unlock request %s already resolved", requestID.Hex())
	}

	unlockDone := m.mu.Lock(req.StudentID.Hex())
	defer unlockDone()

	decision := models.UnlockStatusDenied
	if approve {
		decision = models.UnlockStatusApproved
	}

	// Resolution, field merge, and the audit entry commit or abort together;
	// a failed merge must not leave the request marked resolved.
	err = m.run(ctx, func(ctx context.Context) error {
		if err := m.requests.Resolve(ctx, requestID, decision, actor.ID); err != nil {
			if errors.Is(err, unlockstore.ErrAlreadyResolved) {
				return workflow.InvalidStatef("unlock request %s already resolved", requestID.Hex())
			}
			return err
		}

		entry := audit.Entry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     audit.ActionUnlockResolved,
			EntityType: audit.EntityUnlock,
			EntityID:   requestID,
			NewValue:   decision,
			Details:    map[string]string{"student_id": req.StudentID.Hex()},
		}

		if approve {
			st, err := m.students.GetByID(ctx, req.StudentID)
			if err != nil {
				return err
			}
			if err := m.students.MergeUnlockedFields(ctx, req.StudentID, req.Fields); err != nil {
				return fmt.Errorf("merge unlocked fields: %w", err)
			}
			// Capture the before/after field-lock state for the audit trail.
			entry.PreviousValue = strings.Join(st.UnlockedFields, ",")
			entry.NewValue = strings.Join(mergeUnique(st.UnlockedFields, req.Fields), ",")
		}

		_, err := m.rec.Record(ctx, entry)
		return err
	})
	if err != nil {
		return err
	}
	m.log.Info("unlock request resolved",
		zap.String("request_id", requestID.Hex()),
		zap.String("decision", decision))
	return nil
}

func mergeUnique(existing, added []string) []string {
	out := append([]string{}, existing...)
	for _, f := range added {
		seen := false
		for _, have := range out {
			if have == f {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, f)
		}
	}
	return out
}
