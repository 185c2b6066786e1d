// internal/app/store/documents/documentstore.go
package documentstore

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

// ErrNotFound is returned when no document matches the given id.
var ErrNotFound = errors.New("document not found")

// Store manages the documents collection. Only references and review state
// live here; file storage and transport are external.
type Store struct {
	c *mongo.Collection
}

// New creates a new document Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("documents")}
}

// EnsureIndexes creates the student lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "type", Value: 1}}},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Insert creates a new document record.
func (s *Store) Insert(ctx context.Context, d *models.Document) error {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, d)
	return err
}

// GetByID looks up one document.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Document, error) {
	var d models.Document
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// SetStatus updates a document's review state; verification also records the
// verifier and timestamp.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string, verifierID *primitive.ObjectID) error {
	now := time.Now().UTC()
	set := bson.M{"status": status}
	switch status {
	case models.DocumentStatusUploaded:
		set["uploaded_at"] = now
	case models.DocumentStatusVerified:
		set["verified_at"] = now
		if verifierID != nil {
			set["verified_by"] = *verifierID
		}
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

// ListByStudent returns all of a student's documents.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []models.Document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// CountUnverifiedRequired counts required documents not yet verified. Used
// to gate submission to admin.
func (s *Store) CountUnverifiedRequired(ctx context.Context, studentID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"student_id": studentID,
		"required":   true,
		"status":     bson.M{"$ne": models.DocumentStatusVerified},
	})
}
