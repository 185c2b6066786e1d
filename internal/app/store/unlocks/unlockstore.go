// internal/app/store/unlocks/unlockstore.go
package unlockstore

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

var (
	// ErrNotFound is returned when no unlock request matches the given id.
	ErrNotFound = errors.New("unlock request not found")
	// ErrAlreadyResolved is returned when resolving a request that has
	// already been decided. Resolution happens at most once.
	ErrAlreadyResolved = errors.New("unlock request already resolved")
)

// Store manages the unlock_requests collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new unlock-request Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("unlock_requests")}
}

// EnsureIndexes creates indexes for student and queue lookups.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Insert creates a new pending request.
func (s *Store) Insert(ctx context.Context, r *models.UnlockRequest) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.Status == "" {
		r.Status = models.UnlockStatusPending
	}
	_, err := s.c.InsertOne(ctx, r)
	return err
}

// GetByID looks up one request.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.UnlockRequest, error) {
	var r models.UnlockRequest
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Resolve marks a pending request approved or denied. The update filters on
// the pending status so two simultaneous resolutions cannot both succeed;
// the loser gets ErrAlreadyResolved.
func (s *Store) Resolve(ctx context.Context, id primitive.ObjectID, status string, resolverID primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.UnlockStatusPending},
		bson.M{"$set": bson.M{
			"status":      status,
			"resolved_by": resolverID,
			"resolved_at": now,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish missing from already-resolved.
		if _, getErr := s.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrAlreadyResolved
	}
	return nil
}

// ListPending returns the open queue, oldest first.
func (s *Store) ListPending(ctx context.Context) ([]models.UnlockRequest, error) {
	return s.list(ctx, bson.M{"status": models.UnlockStatusPending},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

// ListByStudent returns a student's requests, newest first.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.UnlockRequest, error) {
	return s.list(ctx, bson.M{"student_id": studentID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (s *Store) list(ctx context.Context, query bson.M, opts *options.FindOptions) ([]models.UnlockRequest, error) {
	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var reqs []models.UnlockRequest
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}
