// Package lockpolicy decides whether a master-profile field is editable for
// a given actor.
//
// Authorization rules:
//   - Unlocked profile: every field is editable by staff and admin
//   - Locked profile: only fields in the student's unlocked set are editable
//   - Admins always bypass the lock for corrections, but every bypass write
//     must be recorded with override=true in the audit trail
//   - Students can never edit their own locked profile
package lockpolicy

import (
	"github.com/jmassawe/edupath/internal/domain/models"
)

// Decision is the result of an editability check.
type Decision struct {
	// Editable indicates whether the write may proceed.
	Editable bool
	// Override is true when the write is only allowed because of the admin
	// bypass; callers must propagate it into the audit entry.
	Override bool
}

// IsEditable reports whether the given profile field may be written by the
// given role, and whether the write counts as an admin override.
func IsEditable(s *models.Student, field, role string) Decision {
	if !s.IsProfileLocked {
		if role == models.RoleStudent && s.Status != models.StudentStatusActive &&
			s.Status != models.StudentStatusDocumentsPending {
			// Students may only fill in their own profile during the
			// profile-building stage.
			return Decision{}
		}
		return Decision{Editable: true}
	}
	if s.FieldUnlocked(field) {
		// Explicitly reopened via an approved unlock request.
		return Decision{Editable: true}
	}
	if role == models.RoleAdmin {
		return Decision{Editable: true, Override: true}
	}
	return Decision{}
}

// EditableFields filters candidates down to those the role may write.
func EditableFields(s *models.Student, candidates []string, role string) []string {
	out := make([]string, 0, len(candidates))
	for _, f := range candidates {
		if IsEditable(s, f, role).Editable {
			out = append(out, f)
		}
	}
	return out
}
