// internal/domain/models/unlockrequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Unlock request statuses.
const (
	UnlockStatusPending  = "pending"
	UnlockStatusApproved = "approved"
	UnlockStatusDenied   = "denied"
)

// UnlockRequest is a staff-initiated, admin-resolved request to reopen
// specific locked fields on a student profile. A resolved request is final.
type UnlockRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`
	Fields    []string           `bson:"fields" json:"fields"`
	Reason    string             `bson:"reason" json:"reason"`
	Status    string             `bson:"status" json:"status"`

	RequestedBy primitive.ObjectID  `bson:"requested_by" json:"requested_by"`
	ResolvedBy  *primitive.ObjectID `bson:"resolved_by,omitempty" json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time          `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
}

// IsResolved reports whether the request has already been decided.
func (r *UnlockRequest) IsResolved() bool {
	return r.Status != UnlockStatusPending
}
