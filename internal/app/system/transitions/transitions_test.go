package transitions

import (
	"testing"

	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/jmassawe/edupath/internal/domain/workflow"
)

// allStatuses lists every status per kind so the table test can try every
// (from, to) pair, not just the pairs the tables mention.
var allStatuses = map[EntityKind][]string{
	KindLead: {
		models.LeadStatusNew, models.LeadStatusHot, models.LeadStatusCold,
		models.LeadStatusConverted, models.LeadStatusLost,
	},
	KindStudent: {
		models.StudentStatusPendingContract, models.StudentStatusActive,
		models.StudentStatusDocumentsPending, models.StudentStatusSubmittedToAdmin,
		models.StudentStatusSubmittedToUniversity, models.StudentStatusOfferReceived,
	},
	KindApplication: {
		models.ApplicationStatusDraft, models.ApplicationStatusPendingAdmin,
		models.ApplicationStatusApproved, models.ApplicationStatusRejected,
		models.ApplicationStatusSubmittedToUni, models.ApplicationStatusReturnedBySchool,
		models.ApplicationStatusAccepted, models.ApplicationStatusDeclined,
	},
	KindContract: {
		models.ContractStatusDraft, models.ContractStatusPending,
		models.ContractStatusPendingSignature, models.ContractStatusSigned,
		models.ContractStatusExpired, models.ContractStatusCancelled,
	},
}

func inList(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// TestCan_Exhaustive checks every (kind, from, to) pair as admin: Can must
// allow exactly the edges present in the table and nothing else.
func TestCan_Exhaustive(t *testing.T) {
	for kind, statuses := range allStatuses {
		for _, from := range statuses {
			legal := Successors(kind, from)
			for _, to := range statuses {
				err := Can(kind, from, to, models.RoleAdmin)
				if inList(legal, to) {
					// Staff-only gates reject admin; everything else must pass.
					if err != nil && !workflow.IsForbidden(err) {
						t.Errorf("%s %s->%s: want allowed, got %v", kind, from, to, err)
					}
				} else if !workflow.IsInvalidTransition(err) {
					t.Errorf("%s %s->%s: want invalid_transition, got %v", kind, from, to, err)
				}
			}
		}
	}
}

func TestCan_TerminalLeadRejectsEverything(t *testing.T) {
	for _, from := range []string{models.LeadStatusConverted, models.LeadStatusLost} {
		for _, to := range allStatuses[KindLead] {
			if err := Can(KindLead, from, to, models.RoleAdmin); !workflow.IsInvalidTransition(err) {
				t.Errorf("lead %s->%s: want invalid_transition, got %v", from, to, err)
			}
		}
	}
}

func TestCan_RoleGates(t *testing.T) {
	tests := []struct {
		name     string
		kind     EntityKind
		from, to string
		role     string
		wantKind workflow.Kind
	}{
		{"staff submits draft", KindApplication, models.ApplicationStatusDraft, models.ApplicationStatusPendingAdmin, models.RoleStaff, ""},
		{"admin may not submit draft", KindApplication, models.ApplicationStatusDraft, models.ApplicationStatusPendingAdmin, models.RoleAdmin, workflow.KindForbidden},
		{"student may not submit draft", KindApplication, models.ApplicationStatusDraft, models.ApplicationStatusPendingAdmin, models.RoleStudent, workflow.KindForbidden},
		{"admin approves", KindApplication, models.ApplicationStatusPendingAdmin, models.ApplicationStatusApproved, models.RoleAdmin, ""},
		{"staff may not approve", KindApplication, models.ApplicationStatusPendingAdmin, models.ApplicationStatusApproved, models.RoleStaff, workflow.KindForbidden},
		{"staff may not reject", KindApplication, models.ApplicationStatusPendingAdmin, models.ApplicationStatusRejected, models.RoleStaff, workflow.KindForbidden},
		{"admin forwards to university", KindStudent, models.StudentStatusSubmittedToAdmin, models.StudentStatusSubmittedToUniversity, models.RoleAdmin, ""},
		{"staff may not forward to university", KindStudent, models.StudentStatusSubmittedToAdmin, models.StudentStatusSubmittedToUniversity, models.RoleStaff, workflow.KindForbidden},
		{"ungated edge open to staff", KindContract, models.ContractStatusPending, models.ContractStatusSigned, models.RoleStaff, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Can(tt.kind, tt.from, tt.to, tt.role)
			if got := workflow.KindOf(err); got != tt.wantKind {
				t.Errorf("Can: got kind %q (err %v), want %q", got, err, tt.wantKind)
			}
		})
	}
}

func TestCan_UnknownStatus(t *testing.T) {
	if err := Can(KindLead, "bogus", models.LeadStatusHot, models.RoleStaff); !workflow.IsInvalidTransition(err) {
		t.Errorf("unknown from-status: want invalid_transition, got %v", err)
	}
	if err := Can(EntityKind("widget"), "a", "b", models.RoleStaff); !workflow.IsInvalidTransition(err) {
		t.Errorf("unknown kind: want invalid_transition, got %v", err)
	}
}

func TestEffects(t *testing.T) {
	got := Effects(KindContract, models.ContractStatusPending, models.ContractStatusSigned)
	if len(got) != 1 || got[0] != EffectAccrueCommission {
		t.Errorf("contract signature effects: got %v", got)
	}
	if fx := Effects(KindLead, models.LeadStatusNew, models.LeadStatusHot); len(fx) != 0 {
		t.Errorf("plain lead move should have no effects, got %v", fx)
	}
	fx := Effects(KindStudent, models.StudentStatusDocumentsPending, models.StudentStatusSubmittedToAdmin)
	if len(fx) != 1 || fx[0] != EffectLockProfile {
		t.Errorf("profile submission effects: got %v", fx)
	}
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		kind   EntityKind
		status string
		want   bool
	}{
		{KindLead, models.LeadStatusConverted, true},
		{KindLead, models.LeadStatusLost, true},
		{KindLead, models.LeadStatusHot, false},
		{KindApplication, models.ApplicationStatusAccepted, true},
		{KindApplication, models.ApplicationStatusReturnedBySchool, false},
		{KindContract, models.ContractStatusSigned, true},
		{KindStudent, models.StudentStatusOfferReceived, true},
	}
	for _, tt := range tests {
		if got := IsTerminal(tt.kind, tt.status); got != tt.want {
			t.Errorf("IsTerminal(%s, %s): got %v, want %v", tt.kind, tt.status, got, tt.want)
		}
	}
}
