// internal/app/store/applications/applicationstore.go
package applicationstore

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

// ErrNotFound is returned when no application matches the given id.
var ErrNotFound = errors.New("application not found")

// Store manages the university_applications collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new application Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("university_applications")}
}

// EnsureIndexes creates indexes for student and status lookups.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "batch", Value: 1}, {Key: "priority", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Insert creates a new application in draft.
func (s *Store) Insert(ctx context.Context, a *models.UniversityApplication) error {
	now := time.Now().UTC()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, a)
	return err
}

// GetByID looks up one application.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.UniversityApplication, error) {
	var a models.UniversityApplication
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateStatus sets the application's status plus the timestamp matching the
// edge (submitted_at on submission, decided_at on a final decision).
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	now := time.Now().UTC()
	set := bson.M{"status": status, "updated_at": now}
	switch status {
	case models.ApplicationStatusSubmittedToUni:
		set["submitted_at"] = now
	case models.ApplicationStatusAccepted, models.ApplicationStatusDeclined, models.ApplicationStatusRejected:
		set["decided_at"] = now
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

// SetReturn records why a university bounced the application back and which
// fields it flagged, together with the returned_by_school status.
func (s *Store) SetReturn(ctx context.Context, id primitive.ObjectID, reason string, fields []string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":          models.ApplicationStatusReturnedBySchool,
		"return_reason":   reason,
		"returned_fields": fields,
		"updated_at":      time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByStudent returns a student's applications ordered by batch then
// priority (first-choice tranche first).
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.UniversityApplication, error) {
	opts := options.Find().SetSort(bson.D{{Key: "batch", Value: 1}, {Key: "priority", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var apps []models.UniversityApplication
	if err := cur.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}
