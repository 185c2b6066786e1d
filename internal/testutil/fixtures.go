package testutil

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jmassawe/edupath/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// SetupTestDB connects to the MongoDB named by EDUPATH_TEST_MONGO_URI
// (default mongodb://localhost:27017) and returns a per-test database that
// is dropped on cleanup. The test is skipped when no server is reachable,
// so store integration tests stay opt-in.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("EDUPATH_TEST_MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("mongo not available at %s: %v", uri, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("mongo not reachable at %s: %v", uri, err)
	}

	db := client.Database("edupath_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given role and returns it.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		FullName:  name,
		Email:     email,
		Role:      role,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("insert user: %v", err)
	}
	return u
}

// CreateLead inserts a new lead assigned to the given staff member.
func (f *Fixtures) CreateLead(ctx context.Context, name string, staffID primitive.ObjectID) models.Lead {
	f.t.Helper()

	now := time.Now().UTC()
	l := models.Lead{
		ID:              primitive.NewObjectID(),
		FullName:        name,
		Email:           "lead@example.com",
		Status:          models.LeadStatusNew,
		AssignedStaffID: &staffID,
		CreatedAt:       now,
	}
	if _, err := f.db.Collection("leads").InsertOne(ctx, l); err != nil {
		f.t.Fatalf("insert lead: %v", err)
	}
	return l
}

// CreateStudent inserts an active student linked to a fresh lead.
func (f *Fixtures) CreateStudent(ctx context.Context, name string, staffID primitive.ObjectID) models.Student {
	f.t.Helper()

	now := time.Now().UTC()
	s := models.Student{
		ID:              primitive.NewObjectID(),
		LeadID:          primitive.NewObjectID(),
		FullName:        name,
		Status:          models.StudentStatusActive,
		AssignedStaffID: &staffID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := f.db.Collection("students").InsertOne(ctx, s); err != nil {
		f.t.Fatalf("insert student: %v", err)
	}
	return s
}
