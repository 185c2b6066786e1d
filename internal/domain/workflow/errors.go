// internal/domain/workflow/errors.go

// Package workflow defines the typed failure taxonomy shared by the case
// lifecycle services. Every operation either fully succeeds or fails with
// one of these kinds and zero side effects; callers branch on the kind to
// render distinct messages.
package workflow

import (
	"errors"
	"fmt"
)

// Kind classifies a workflow failure.
type Kind string

const (
	// KindValidation: malformed or missing input.
	KindValidation Kind = "validation"
	// KindInvalidTransition: the requested status edge is not in the table.
	KindInvalidTransition Kind = "invalid_transition"
	// KindForbidden: the edge exists but the actor's role may not take it.
	KindForbidden Kind = "forbidden"
	// KindPreconditionFailed: a business rule is not met (e.g. unverified
	// documents before submission).
	KindPreconditionFailed Kind = "precondition_failed"
	// KindInvalidState: operating on an already-resolved or terminal object.
	KindInvalidState Kind = "invalid_state"
)

// Error is a kinded workflow failure.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Msg
}

// Validationf creates a validation failure.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// InvalidTransitionf creates an invalid-transition failure.
func InvalidTransitionf(format string, args ...any) error {
	return &Error{Kind: KindInvalidTransition, Msg: fmt.Sprintf(format, args...)}
}

// Forbiddenf creates a forbidden failure.
func Forbiddenf(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

// PreconditionFailedf creates a precondition failure.
func PreconditionFailedf(format string, args ...any) error {
	return &Error{Kind: KindPreconditionFailed, Msg: fmt.Sprintf(format, args...)}
}

// InvalidStatef creates an invalid-state failure.
func InvalidStatef(format string, args ...any) error {
	return &Error{Kind: KindInvalidState, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or "" if err is not a workflow failure.
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return ""
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsInvalidTransition reports whether err is an invalid-transition failure.
func IsInvalidTransition(err error) bool { return KindOf(err) == KindInvalidTransition }

// IsForbidden reports whether err is a forbidden failure.
func IsForbidden(err error) bool { return KindOf(err) == KindForbidden }

// IsPreconditionFailed reports whether err is a precondition failure.
func IsPreconditionFailed(err error) bool { return KindOf(err) == KindPreconditionFailed }

// IsInvalidState reports whether err is an invalid-state failure.
func IsInvalidState(err error) bool { return KindOf(err) == KindInvalidState }
