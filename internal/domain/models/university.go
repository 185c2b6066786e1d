// internal/domain/models/university.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// University is a destination school students apply to.
type University struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Country  string             `bson:"country" json:"country"`
	City     string             `bson:"city,omitempty" json:"city,omitempty"`
	Ranking  int                `bson:"ranking,omitempty" json:"ranking,omitempty"`
	Programs []string           `bson:"programs,omitempty" json:"programs,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
