// internal/domain/models/contract.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Contract statuses. Signed is terminal unless cancelled by an explicit
// admin override (recorded with override=true in the audit trail).
const (
	ContractStatusDraft            = "draft"
	ContractStatusPending          = "pending"
	ContractStatusPendingSignature = "pending_signature"
	ContractStatusSigned           = "signed"
	ContractStatusExpired          = "expired"
	ContractStatusCancelled        = "cancelled"
)

// Contract is the service agreement between the agency and a student.
type Contract struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`
	Status    string             `bson:"status" json:"status"`
	Amount    int64              `bson:"amount" json:"amount"` // minor units
	Currency  string             `bson:"currency" json:"currency"`

	SignedAt  *time.Time `bson:"signed_at,omitempty" json:"signed_at,omitempty"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}
