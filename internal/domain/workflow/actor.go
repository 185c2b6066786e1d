// internal/domain/workflow/actor.go
package workflow

import "go.mongodb.org/mongo-driver/bson/primitive"

// Actor identifies who is performing an operation. Every lifecycle and lock
// operation takes an Actor so the audit entry can record actor id and role.
type Actor struct {
	ID   primitive.ObjectID
	Role string
}
