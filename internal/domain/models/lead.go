// internal/domain/models/lead.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lead statuses. Converted and lost are terminal.
const (
	LeadStatusNew       = "new"
	LeadStatusHot       = "hot"
	LeadStatusCold      = "cold"
	LeadStatusConverted = "converted"
	LeadStatusLost      = "lost"
)

// Lead represents a prospective student prior to enrollment.
// A lead is owned by the staff member it is assigned to and becomes
// immutable (except for notes) once converted or lost.
type Lead struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName         string              `bson:"full_name" json:"full_name"`
	Email            string              `bson:"email" json:"email"`
	Phone            string              `bson:"phone" json:"phone"`
	Source           string              `bson:"source,omitempty" json:"source,omitempty"`
	StudyGoal        string              `bson:"study_goal,omitempty" json:"study_goal,omitempty"`
	PreferredCountry string              `bson:"preferred_country,omitempty" json:"preferred_country,omitempty"`
	Message          string              `bson:"message,omitempty" json:"message,omitempty"`
	Notes            string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Status           string              `bson:"status" json:"status"`
	AssignedStaffID  *primitive.ObjectID `bson:"assigned_staff_id,omitempty" json:"assigned_staff_id,omitempty"`

	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
	LastContactAt *time.Time `bson:"last_contact_at,omitempty" json:"last_contact_at,omitempty"`
	ConvertedAt   *time.Time `bson:"converted_at,omitempty" json:"converted_at,omitempty"`
}

// IsTerminal reports whether the lead has reached a final status.
func (l *Lead) IsTerminal() bool {
	return l.Status == LeadStatusConverted || l.Status == LeadStatusLost
}
