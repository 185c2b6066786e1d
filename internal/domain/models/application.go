// internal/domain/models/application.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// University application statuses. Rejected, accepted, and declined are
// terminal; returned_by_school loops back to pending_admin after fixes.
const (
	ApplicationStatusDraft            = "draft"
	ApplicationStatusPendingAdmin     = "pending_admin"
	ApplicationStatusApproved         = "approved"
	ApplicationStatusRejected         = "rejected"
	ApplicationStatusSubmittedToUni   = "submitted_to_uni"
	ApplicationStatusReturnedBySchool = "returned_by_school"
	ApplicationStatusAccepted         = "accepted"
	ApplicationStatusDeclined         = "declined"
)

// Application batches: batch 1 is the first-choice tranche, batch 2 the
// safety tranche.
const (
	BatchFirstChoice = 1
	BatchSafety      = 2
)

// UniversityApplication is one student's application to one university.
type UniversityApplication struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID    primitive.ObjectID `bson:"student_id" json:"student_id"`
	UniversityID primitive.ObjectID `bson:"university_id" json:"university_id"`
	Program      string             `bson:"program" json:"program"`
	Status       string             `bson:"status" json:"status"`
	Batch        int                `bson:"batch" json:"batch"`
	Priority     int                `bson:"priority" json:"priority"` // rank within batch

	// Set when the university bounces the application back.
	ReturnReason   string   `bson:"return_reason,omitempty" json:"return_reason,omitempty"`
	ReturnedFields []string `bson:"returned_fields,omitempty" json:"returned_fields,omitempty"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	SubmittedAt *time.Time `bson:"submitted_at,omitempty" json:"submitted_at,omitempty"`
	DecidedAt   *time.Time `bson:"decided_at,omitempty" json:"decided_at,omitempty"`
}
