// internal/app/store/students/studentstore.go
package studentstore

import (
	"context"
	"errors"
	"time"

	"github.com/jmassawe/edupath/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no student matches the given id.
	ErrNotFound = errors.New("student not found")
	// ErrDuplicateLead is returned when a student already exists for a lead.
	// A lead converts exactly once.
	ErrDuplicateLead = errors.New("student already exists for this lead")
)

// Store manages the students collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new student Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("students")}
}

// EnsureIndexes creates indexes, including the unique lead_id index that
// enforces one conversion per lead at the storage layer.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := true
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "lead_id", Value: 1}},
			Options: options.Index().SetUnique(unique),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "assigned_staff_id", Value: 1}}},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Insert creates a new student record.
func (s *Store) Insert(ctx context.Context, st *models.Student) error {
	now := time.Now().UTC()
	if st.ID.IsZero() {
		st.ID = primitive.NewObjectID()
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = now
	}
	st.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, st)
	if err != nil && wafflemongo.IsDup(err) {
		return ErrDuplicateLead
	}
	return err
}

// GetByID looks up one student.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Student, error) {
	var st models.Student
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// GetByLeadID looks up the student created from a given lead, if any.
func (s *Store) GetByLeadID(ctx context.Context, leadID primitive.ObjectID) (*models.Student, error) {
	var st models.Student
	err := s.c.FindOne(ctx, bson.M{"lead_id": leadID}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// UpdateStatus sets the student's status. Callers must have validated the
// transition first.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	return s.setFields(ctx, id, bson.M{"status": status})
}

// SetLock updates the profile lock state. Locking clears any stale unlocked
// fields from a previous unlock cycle.
func (s *Store) SetLock(ctx context.Context, id primitive.ObjectID, locked bool, lockedAt *time.Time) error {
	set := bson.M{"is_profile_locked": locked, "unlocked_fields": []string{}}
	if lockedAt != nil {
		set["locked_at"] = *lockedAt
	}
	return s.setFields(ctx, id, set)
}

// MergeUnlockedFields adds fields to the student's unlocked set without
// duplicating entries already present.
func (s *Store) MergeUnlockedFields(ctx context.Context, id primitive.ObjectID, fields []string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$addToSet": bson.M{"unlocked_fields": bson.M{"$each": fields}},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfileField writes one master-profile field. Lock policy must be
// checked by the caller before this runs.
func (s *Store) UpdateProfileField(ctx context.Context, id primitive.ObjectID, field string, value any) error {
	return s.setFields(ctx, id, bson.M{field: value})
}

// AddFamilyMember appends one family-member sub-record.
func (s *Store) AddFamilyMember(ctx context.Context, id primitive.ObjectID, fm models.FamilyMember) error {
	return s.push(ctx, id, "family_members", fm)
}

// AddEducationRecord appends one education-history sub-record.
func (s *Store) AddEducationRecord(ctx context.Context, id primitive.ObjectID, er models.EducationRecord) error {
	return s.push(ctx, id, "education_history", er)
}

// AddEmploymentRecord appends one employment-history sub-record.
func (s *Store) AddEmploymentRecord(ctx context.Context, id primitive.ObjectID, er models.EmploymentRecord) error {
	return s.push(ctx, id, "employment_history", er)
}

// List returns all students, newest first.
func (s *Store) List(ctx context.Context) ([]models.Student, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var students []models.Student
	if err := cur.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (s *Store) setFields(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) push(ctx context.Context, id primitive.ObjectID, field string, value any) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{field: value},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
