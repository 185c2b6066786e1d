// internal/app/store/contracts/contractstore.go
package contractstore

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

// ErrNotFound is returned when no contract matches the given id.
var ErrNotFound = errors.New("contract not found")

// Store manages the contracts collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new contract Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("contracts")}
}

// EnsureIndexes creates the student lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Insert creates a new contract.
func (s *Store) Insert(ctx context.Context, c *models.Contract) error {
	now := time.Now().UTC()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, c)
	return err
}

// GetByID looks up one contract.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Contract, error) {
	var c models.Contract
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateStatus sets the contract's status; signatures also record signed_at.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	now := time.Now().UTC()
	set := bson.M{"status": status, "updated_at": now}
	if status == models.ContractStatusSigned {
		set["signed_at"] = now
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByStudent returns a student's contracts, newest first.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Contract, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var contracts []models.Contract
	if err := cur.All(ctx, &contracts); err != nil {
		return nil, err
	}
	return contracts, nil
}
