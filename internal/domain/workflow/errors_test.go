package workflow

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), ""},
		{"validation", Validationf("amount must be positive"), KindValidation},
		{"invalid transition", InvalidTransitionf("lead: converted -> hot"), KindInvalidTransition},
		{"forbidden", Forbiddenf("staff may not approve"), KindForbidden},
		{"precondition", PreconditionFailedf("2 documents unverified"), KindPreconditionFailed},
		{"invalid state", InvalidStatef("request already resolved"), KindInvalidState},
		{"wrapped", fmt.Errorf("convert lead: %w", Validationf("missing receipt")), KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	err := Forbiddenf("only admin may review applications")
	if !IsForbidden(err) {
		t.Error("IsForbidden should be true")
	}
	if IsInvalidTransition(err) {
		t.Error("IsInvalidTransition should be false for a forbidden error")
	}
	if IsValidation(nil) {
		t.Error("IsValidation(nil) should be false")
	}
}

func TestErrorMessage(t *testing.T) {
	err := InvalidStatef("unlock request %s already resolved", "abc")
	want := "invalid_state: unlock request abc already resolved"
	if err.Error() != want {
		t.Errorf("Error(): got %q, want %q", err.Error(), want)
	}
}
