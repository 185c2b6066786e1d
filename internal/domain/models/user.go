// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents staff, admins, and student portal accounts. The core only
// needs role lookup; authentication mechanics stay at the HTTP boundary.
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName     string              `bson:"full_name" json:"full_name"`
	Email        string              `bson:"email" json:"email"`
	PasswordHash string              `bson:"password_hash,omitempty" json:"-"`
	Role         string              `bson:"role" json:"role"` // staff | admin | student
	Status       string              `bson:"status,omitempty" json:"status,omitempty"`
	StudentID    *primitive.ObjectID `bson:"student_id,omitempty" json:"student_id,omitempty"`

	// Per-staff commission rate override; the org-wide rate applies when nil.
	CommissionRate *float64 `bson:"commission_rate,omitempty" json:"commission_rate,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
