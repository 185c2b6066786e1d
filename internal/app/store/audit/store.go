// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Action labels written by the lifecycle and lock services.
const (
	ActionLeadCreated           = "lead_created"
	ActionLeadStatusChanged     = "lead_status_changed"
	ActionLeadConverted         = "lead_converted"
	ActionStudentActivated      = "student_activated"
	ActionProfileSubmitted      = "profile_submitted"
	ActionProfileLocked         = "profile_locked"
	ActionProfileFieldEdited    = "profile_field_edited"
	ActionProfileForwarded      = "profile_forwarded"
	ActionProfileReturned       = "profile_returned"
	ActionUnlockRequested       = "unlock_requested"
	ActionUnlockResolved        = "unlock_resolved"
	ActionDocumentAdded         = "document_added"
	ActionDocumentReviewed      = "document_reviewed"
	ActionApplicationCreated    = "application_created"
	ActionApplicationSubmitted  = "application_submitted"
	ActionApplicationReviewed   = "application_reviewed"
	ActionApplicationForwarded  = "application_forwarded"
	ActionApplicationDecided    = "application_decided"
	ActionContractCreated       = "contract_created"
	ActionContractStatusChanged = "contract_status_changed"
	ActionContractSigned        = "contract_signed"
	ActionContractCancelled     = "contract_cancelled"
	ActionInvoiceCreated        = "invoice_created"
	ActionPaymentRecorded       = "payment_recorded"
	ActionRefundRecorded        = "refund_recorded"
)

// Entity types referenced by audit entries.
const (
	EntityLead        = "lead"
	EntityStudent     = "student"
	EntityApplication = "application"
	EntityContract    = "contract"
	EntityInvoice     = "invoice"
	EntityDocument    = "document"
	EntityUnlock      = "unlock_request"
)

// Entry is one immutable audit record. Entries are never updated or deleted
// after creation; that is the core integrity guarantee of the system.
type Entry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`

	ActorID   primitive.ObjectID `bson:"actor_id" json:"actor_id"`
	ActorRole string             `bson:"actor_role" json:"actor_role"`

	Action     string             `bson:"action" json:"action"`
	EntityType string             `bson:"entity_type" json:"entity_type"`
	EntityID   primitive.ObjectID `bson:"entity_id" json:"entity_id"`

	PreviousValue string `bson:"previous_value,omitempty" json:"previous_value,omitempty"`
	NewValue      string `bson:"new_value,omitempty" json:"new_value,omitempty"`

	// Override marks writes that bypassed a field lock via admin privilege.
	Override bool `bson:"override" json:"override"`

	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// QueryFilter defines filters for the reporting query.
type QueryFilter struct {
	ActorID    *primitive.ObjectID
	EntityType string
	EntityID   *primitive.ObjectID
	Action     string
	Override   *bool
	StartTime  *time.Time
	EndTime    *time.Time
	Limit      int64
	Offset     int64
}

// Store manages the append-only audit collection. Append and Query are the
// only operations; there is no update or delete.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_entries")}
}

// EnsureIndexes creates the indexes the reporting views rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{
			{Key: "entity_type", Value: 1},
			{Key: "entity_id", Value: 1},
			{Key: "timestamp", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "actor_id", Value: 1},
			{Key: "timestamp", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "action", Value: 1},
			{Key: "timestamp", Value: -1},
		}},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Append inserts a new entry and returns its id.
func (s *Store) Append(ctx context.Context, e Entry) (primitive.ObjectID, error) {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return primitive.NilObjectID, err
	}
	return e.ID, nil
}

// Query retrieves entries matching the filter, most recent first. It is
// read-only and used solely by reporting views.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	query := bson.M{}
	if filter.ActorID != nil {
		query["actor_id"] = *filter.ActorID
	}
	if filter.EntityType != "" {
		query["entity_type"] = filter.EntityType
	}
	if filter.EntityID != nil {
		query["entity_id"] = *filter.EntityID
	}
	if filter.Action != "" {
		query["action"] = filter.Action
	}
	if filter.Override != nil {
		query["override"] = *filter.Override
	}
	if filter.StartTime != nil || filter.EndTime != nil {
		ts := bson.M{}
		if filter.StartTime != nil {
			ts["$gte"] = *filter.StartTime
		}
		if filter.EndTime != nil {
			ts["$lte"] = *filter.EndTime
		}
		query["timestamp"] = ts
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}
	if filter.Offset > 0 {
		opts.SetSkip(filter.Offset)
	}

	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []Entry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of entries matching the filter.
func (s *Store) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	query := bson.M{}
	if filter.EntityType != "" {
		query["entity_type"] = filter.EntityType
	}
	if filter.EntityID != nil {
		query["entity_id"] = *filter.EntityID
	}
	if filter.Action != "" {
		query["action"] = filter.Action
	}
	return s.c.CountDocuments(ctx, query)
}
