package lockpolicy

import (
	"testing"
	"time"

	"github.com/jmassawe/edupath/internal/domain/models"
)

func lockedStudent(unlocked ...string) *models.Student {
	now := time.Now().UTC()
	return &models.Student{
		Status:          models.StudentStatusSubmittedToAdmin,
		IsProfileLocked: true,
		LockedAt:        &now,
		UnlockedFields:  unlocked,
	}
}

func TestIsEditable_UnlockedProfile(t *testing.T) {
	s := &models.Student{Status: models.StudentStatusActive}
	for _, role := range []string{models.RoleStaff, models.RoleAdmin, models.RoleStudent} {
		d := IsEditable(s, "passport_number", role)
		if !d.Editable {
			t.Errorf("unlocked profile, role %s: want editable", role)
		}
		if d.Override {
			t.Errorf("unlocked profile, role %s: no override expected", role)
		}
	}
}

func TestIsEditable_LockedProfile(t *testing.T) {
	s := lockedStudent("passport_number")

	tests := []struct {
		name         string
		field, role  string
		editable     bool
		override     bool
	}{
		{"staff on unlocked field", "passport_number", models.RoleStaff, true, false},
		{"staff on locked field", "email", models.RoleStaff, false, false},
		{"student on locked field", "email", models.RoleStudent, false, false},
		{"admin bypass is flagged", "email", models.RoleAdmin, true, true},
		{"admin on unlocked field is not an override", "passport_number", models.RoleAdmin, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := IsEditable(s, tt.field, tt.role)
			if d.Editable != tt.editable || d.Override != tt.override {
				t.Errorf("IsEditable(%s, %s): got %+v, want editable=%v override=%v",
					tt.field, tt.role, d, tt.editable, tt.override)
			}
		})
	}
}

func TestIsEditable_EveryFieldLockedForStaff(t *testing.T) {
	s := lockedStudent()
	for _, field := range []string{"full_name", "email", "phone", "passport_number", "home_address"} {
		if IsEditable(s, field, models.RoleStaff).Editable {
			t.Errorf("field %s should be locked for staff", field)
		}
		if d := IsEditable(s, field, models.RoleAdmin); !d.Editable || !d.Override {
			t.Errorf("field %s: admin bypass should be editable with override, got %+v", field, d)
		}
	}
}

func TestIsEditable_StudentOutsideProfileBuilding(t *testing.T) {
	s := &models.Student{Status: models.StudentStatusPendingContract}
	if IsEditable(s, "email", models.RoleStudent).Editable {
		t.Error("student should not edit before activation")
	}
	if !IsEditable(s, "email", models.RoleStaff).Editable {
		t.Error("staff should still edit before activation")
	}
}

func TestEditableFields(t *testing.T) {
	s := lockedStudent("passport_number", "date_of_birth")
	got := EditableFields(s, []string{"passport_number", "email", "date_of_birth"}, models.RoleStaff)
	if len(got) != 2 || got[0] != "passport_number" || got[1] != "date_of_birth" {
		t.Errorf("EditableFields: got %v", got)
	}
}
