// internal/app/store/leads/leadstore.go
package leadstore

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

// ErrNotFound is returned when no lead matches the given id.
var ErrNotFound = errors.New("lead not found")

// Store manages the leads collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new lead Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("leads")}
}

// EnsureIndexes creates indexes for staff and status lookups.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "assigned_staff_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Insert creates a new lead, assigning id and created_at when unset.
func (s *Store) Insert(ctx context.Context, l *models.Lead) error {
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, l)
	return err
}

// GetByID looks up one lead.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Lead, error) {
	var l models.Lead
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateStatus sets the lead's status and, for conversions, the converted_at
// timestamp. Callers must have validated the transition first.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, convertedAt *time.Time) error {
	set := bson.M{"status": status, "last_contact_at": time.Now().UTC()}
	if convertedAt != nil {
		set["converted_at"] = *convertedAt
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

// UpdateNotes replaces the lead's free-text notes. Notes stay writable even
// after the lead reaches a terminal status.
func (s *Store) UpdateNotes(ctx context.Context, id primitive.ObjectID, notes string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"notes": notes}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByStaff returns the leads assigned to one staff member, newest first.
func (s *Store) ListByStaff(ctx context.Context, staffID primitive.ObjectID) ([]models.Lead, error) {
	return s.list(ctx, bson.M{"assigned_staff_id": staffID})
}

// ListByStatus returns all leads in the given status, newest first.
func (s *Store) ListByStatus(ctx context.Context, status string) ([]models.Lead, error) {
	return s.list(ctx, bson.M{"status": status})
}

func (s *Store) list(ctx context.Context, query bson.M) ([]models.Lead, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var leads []models.Lead
	if err := cur.All(ctx, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}
