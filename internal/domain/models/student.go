// internal/domain/models/student.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Student statuses. A student is created exactly once, by converting a lead.
const (
	StudentStatusPendingContract       = "pending_contract"
	StudentStatusActive                = "active"
	StudentStatusDocumentsPending      = "documents_pending"
	StudentStatusSubmittedToAdmin      = "submitted_to_admin"
	StudentStatusSubmittedToUniversity = "submitted_to_university"
	StudentStatusOfferReceived         = "offer_received"
)

// FamilyMember is a repeatable sub-record on the master profile.
type FamilyMember struct {
	Relationship string `bson:"relationship" json:"relationship"`
	FullName     string `bson:"full_name" json:"full_name"`
	Occupation   string `bson:"occupation,omitempty" json:"occupation,omitempty"`
	Phone        string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email        string `bson:"email,omitempty" json:"email,omitempty"`
}

// EducationRecord is one entry in the student's education history.
type EducationRecord struct {
	Institution string     `bson:"institution" json:"institution"`
	Level       string     `bson:"level" json:"level"`
	Major       string     `bson:"major,omitempty" json:"major,omitempty"`
	GPA         string     `bson:"gpa,omitempty" json:"gpa,omitempty"`
	StartedAt   *time.Time `bson:"started_at,omitempty" json:"started_at,omitempty"`
	EndedAt     *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
}

// EmploymentRecord is one entry in the student's employment history.
type EmploymentRecord struct {
	Employer  string     `bson:"employer" json:"employer"`
	Title     string     `bson:"title" json:"title"`
	StartedAt *time.Time `bson:"started_at,omitempty" json:"started_at,omitempty"`
	EndedAt   *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
}

// Student is the master profile created by lead conversion. Once the profile
// is submitted for review the profile is field-locked; corrections go through
// the unlock-request flow (or an audited admin override).
type Student struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LeadID primitive.ObjectID `bson:"lead_id" json:"lead_id"`

	// Identity
	FullName       string     `bson:"full_name" json:"full_name"`
	Email          string     `bson:"email" json:"email"`
	Phone          string     `bson:"phone" json:"phone"`
	DateOfBirth    *time.Time `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	Nationality    string     `bson:"nationality,omitempty" json:"nationality,omitempty"`
	PassportNumber string     `bson:"passport_number,omitempty" json:"passport_number,omitempty"`
	PassportExpiry *time.Time `bson:"passport_expiry,omitempty" json:"passport_expiry,omitempty"`
	HomeAddress    string     `bson:"home_address,omitempty" json:"home_address,omitempty"`

	// Emergency contact
	EmergencyContactName  string `bson:"emergency_contact_name,omitempty" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string `bson:"emergency_contact_phone,omitempty" json:"emergency_contact_phone,omitempty"`

	// Financial supporter
	SupporterName     string `bson:"supporter_name,omitempty" json:"supporter_name,omitempty"`
	SupporterRelation string `bson:"supporter_relation,omitempty" json:"supporter_relation,omitempty"`
	SupporterIncome   string `bson:"supporter_income,omitempty" json:"supporter_income,omitempty"`

	// Repeatable sub-records
	FamilyMembers     []FamilyMember     `bson:"family_members,omitempty" json:"family_members,omitempty"`
	EducationHistory  []EducationRecord  `bson:"education_history,omitempty" json:"education_history,omitempty"`
	EmploymentHistory []EmploymentRecord `bson:"employment_history,omitempty" json:"employment_history,omitempty"`

	Status          string              `bson:"status" json:"status"`
	AssignedStaffID *primitive.ObjectID `bson:"assigned_staff_id,omitempty" json:"assigned_staff_id,omitempty"`

	// Field locking
	IsProfileLocked bool       `bson:"is_profile_locked" json:"is_profile_locked"`
	LockedAt        *time.Time `bson:"locked_at,omitempty" json:"locked_at,omitempty"`
	UnlockedFields  []string   `bson:"unlocked_fields,omitempty" json:"unlocked_fields,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CurrentStep derives the 1..5 progress step from status. The step is never
// stored; deriving it here keeps status and progress from drifting apart.
func (s *Student) CurrentStep() int {
	switch s.Status {
	case StudentStatusPendingContract:
		return 1
	case StudentStatusActive, StudentStatusDocumentsPending:
		return 2
	case StudentStatusSubmittedToAdmin:
		return 3
	case StudentStatusSubmittedToUniversity:
		return 4
	case StudentStatusOfferReceived:
		return 5
	}
	return 0
}

// HasRequiredSubRecords reports whether the profile carries the minimum
// sub-records required before submission: at least one family member and
// one education record.
func (s *Student) HasRequiredSubRecords() bool {
	return len(s.FamilyMembers) > 0 && len(s.EducationHistory) > 0
}

// FieldUnlocked reports whether a specific field is exempted from the lock.
func (s *Student) FieldUnlocked(field string) bool {
	for _, f := range s.UnlockedFields {
		if f == field {
			return true
		}
	}
	return false
}
