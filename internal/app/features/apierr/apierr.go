// internal/app/features/apierr/apierr.go

// Package apierr maps workflow failures onto HTTP responses and carries the
// small JSON helpers shared by the API features.
package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	applicationstore "github.com/jmassawe/edupath/internal/app/store/applications"
	contractstore "github.com/jmassawe/edupath/internal/app/store/contracts"
	documentstore "github.com/jmassawe/edupath/internal/app/store/documents"
	invoicestore "github.com/jmassawe/edupath/internal/app/store/invoices"
	leadstore "github.com/jmassawe/edupath/internal/app/store/leads"
	studentstore "github.com/jmassawe/edupath/internal/app/store/students"
	universitystore "github.com/jmassawe/edupath/internal/app/store/universities"
	unlockstore "github.com/jmassawe/edupath/internal/app/store/unlocks"
	userstore "github.com/jmassawe/edupath/internal/app/store/users"
	"github.com/jmassawe/edupath/internal/app/system/limits"
	"github.com/jmassawe/edupath/internal/domain/workflow"
	"go.uber.org/zap"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Status maps an error to its HTTP status code.
//
//	validation          -> 400
//	invalid_transition  -> 409
//	forbidden           -> 403
//	precondition_failed -> 422
//	invalid_state       -> 409
//	store not-found     -> 404
//	anything else       -> 500
func Status(err error) int {
	switch workflow.KindOf(err) {
	case workflow.KindValidation:
		return http.StatusBadRequest
	case workflow.KindInvalidTransition, workflow.KindInvalidState:
		return http.StatusConflict
	case workflow.KindForbidden:
		return http.StatusForbidden
	case workflow.KindPreconditionFailed:
		return http.StatusUnprocessableEntity
	}
	if isNotFound(err) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func isNotFound(err error) bool {
	for _, sentinel := range []error{
		leadstore.ErrNotFound,
		studentstore.ErrNotFound,
		applicationstore.ErrNotFound,
		contractstore.ErrNotFound,
		invoicestore.ErrNotFound,
		documentstore.ErrNotFound,
		universitystore.ErrNotFound,
		unlockstore.ErrNotFound,
		userstore.ErrNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// Write sends the JSON error envelope for err. Internal errors are logged
// and masked; typed workflow failures pass their message through.
func Write(w http.ResponseWriter, err error, log *zap.Logger) {
	status := Status(err)
	body := errorBody{Error: err.Error()}
	if kind := workflow.KindOf(err); kind != "" {
		body.Kind = string(kind)
	}
	if status == http.StatusInternalServerError {
		if log != nil {
			log.Error("internal error", zap.Error(err))
		}
		body = errorBody{Error: "internal error"}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads the request body as JSON into dst, limited to MaxJSONBodySize.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, limits.MaxJSONBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return workflow.Validationf("invalid request body: %v", err)
	}
	return nil
}
