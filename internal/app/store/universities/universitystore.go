// internal/app/store/universities/universitystore.go
package universitystore

import (
	"context"
	"errors"
	"time"

	"github.com/jmassawe/edupath/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no university matches the given id.
var ErrNotFound = errors.New("university not found")

// Store manages the universities collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new university Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("universities")}
}

// Insert creates a new university.
func (s *Store) Insert(ctx context.Context, u *models.University) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, u)
	return err
}

// GetByID looks up one university.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.University, error) {
	var u models.University
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns all universities sorted by name.
func (s *Store) List(ctx context.Context) ([]models.University, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var unis []models.University
	if err := cur.All(ctx, &unis); err != nil {
		return nil, err
	}
	return unis, nil
}
