// internal/app/store/commissions/commissionstore.go
package commissionstore

import (
	"context"
	"time"

	"github.com/jmassawe/edupath/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages the commission_records collection. Append-only: accruals are
// never mutated; corrections are new rows.
type Store struct {
	c *mongo.Collection
}

// New creates a new commission Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("commission_records")}
}

// EnsureIndexes creates indexes for staff and contract lookups.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "staff_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "contract_id", Value: 1}}},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Insert creates a new accrual row.
func (s *Store) Insert(ctx context.Context, rec *models.CommissionRecord) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, rec)
	return err
}

// ListByStaff returns a staff member's accruals, newest first.
func (s *Store) ListByStaff(ctx context.Context, staffID primitive.ObjectID) ([]models.CommissionRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"staff_id": staffID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var recs []models.CommissionRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
