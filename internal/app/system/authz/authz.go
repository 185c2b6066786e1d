// internal/app/system/authz/authz.go

// Package authz turns the session user into the identities the workflow
// layer consumes: a normalized (role, id) pair and a workflow.Actor.
package authz

import (
	"net/http"
	"strings"

	"github.com/jmassawe/edupath/internal/app/system/auth"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/jmassawe/edupath/internal/domain/workflow"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a
// found flag. A missing user or malformed session ID yields ok=false, so
// callers can trust ok=true means a valid authenticated user.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session; fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// Actor returns the workflow actor for the signed-in user.
func Actor(r *http.Request) (workflow.Actor, bool) {
	role, _, id, ok := UserCtx(r)
	if !ok {
		return workflow.Actor{}, false
	}
	return workflow.Actor{ID: id, Role: role}, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// IsStaff reports whether the current request's user is a staff member.
func IsStaff(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleStaff
}

// IsStudent reports whether the current request's user is a student account.
func IsStudent(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleStudent
}
