// internal/app/store/invoices/invoicestore.go
package invoicestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmassawe/edupath/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no invoice matches the given id.
var ErrNotFound = errors.New("invoice not found")

// ErrNotPending is returned when a payment targets an invoice that is no
// longer pending.
var ErrNotPending = errors.New("invoice not pending")

// NewNumber generates a unique human-readable invoice number. Uniqueness is
// enforced by the index on number; the uuid prefix makes collisions
// practically impossible.
func NewNumber() string {
	return "INV-" + strings.ToUpper(uuid.NewString()[:8])
}

// Store manages the invoices collection. Rows are append-only apart from the
// pending -> paid/overdue status flip; refunds are new reversal rows.
type Store struct {
	c *mongo.Collection
}

// New creates a new invoice Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("invoices")}
}

// EnsureIndexes creates indexes for student and number lookups.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Insert creates a new invoice row.
func (s *Store) Insert(ctx context.Context, inv *models.Invoice) error {
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, inv)
	return err
}

// GetByID looks up one invoice.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&inv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// MarkPaid flips a pending invoice to paid with the receipt reference.
// The update is filtered on the pending status so a double payment cannot
// overwrite the first receipt.
func (s *Store) MarkPaid(ctx context.Context, id primitive.ObjectID, receiptRef string) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.InvoiceStatusPending},
		bson.M{"$set": bson.M{
			"status":      models.InvoiceStatusPaid,
			"paid_at":     now,
			"receipt_ref": receiptRef,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing invoice from one already paid or overdue.
		if _, getErr := s.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrNotPending
	}
	return nil
}

// ListByStudent returns a student's invoices, newest first.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Invoice, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var invoices []models.Invoice
	if err := cur.All(ctx, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}
