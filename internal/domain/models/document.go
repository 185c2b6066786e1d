// internal/domain/models/document.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document types.
const (
	DocumentTypePassport       = "passport"
	DocumentTypeTranscript     = "transcript"
	DocumentTypeCertificate    = "certificate"
	DocumentTypePhoto          = "photo"
	DocumentTypeReceipt        = "receipt"
	DocumentTypeSignedContract = "signed_contract"
)

// Document statuses.
const (
	DocumentStatusPending  = "pending"
	DocumentStatusUploaded = "uploaded"
	DocumentStatusVerified = "verified"
	DocumentStatusRejected = "rejected"
)

// Document is one collected document on a student's file. File storage and
// transport are external; this records only the reference and review state.
type Document struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`
	Type      string             `bson:"type" json:"type"`
	Name      string             `bson:"name" json:"name"`
	Required  bool               `bson:"required" json:"required"`
	Status    string             `bson:"status" json:"status"`
	FileRef   string             `bson:"file_ref,omitempty" json:"file_ref,omitempty"`

	UploadedAt *time.Time          `bson:"uploaded_at,omitempty" json:"uploaded_at,omitempty"`
	VerifiedAt *time.Time          `bson:"verified_at,omitempty" json:"verified_at,omitempty"`
	VerifiedBy *primitive.ObjectID `bson:"verified_by,omitempty" json:"verified_by,omitempty"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
}
