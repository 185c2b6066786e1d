// internal/domain/models/invoice.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invoice types. Refund invoices reduce recognized revenue; every other
// type increases it.
const (
	InvoiceTypeOpeningBook = "opening_book"
	InvoiceTypeDeposit     = "deposit"
	InvoiceTypeBalance     = "balance"
	InvoiceTypeRefund      = "refund"
)

// Invoice statuses.
const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

// Invoice is one billing row for a student. Rows are append-only: a refund
// creates a reversal invoice and never mutates the original.
type Invoice struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`
	Number    string             `bson:"number" json:"number"`
	Type      string             `bson:"type" json:"type"`
	Amount    int64              `bson:"amount" json:"amount"` // minor units
	Currency  string             `bson:"currency" json:"currency"`
	Status    string             `bson:"status" json:"status"`

	DueDate *time.Time `bson:"due_date,omitempty" json:"due_date,omitempty"`
	PaidAt  *time.Time `bson:"paid_at,omitempty" json:"paid_at,omitempty"`

	// Receipt reference for paid invoices, and who recorded it.
	ReceiptRef string              `bson:"receipt_ref,omitempty" json:"receipt_ref,omitempty"`
	CreatedBy  *primitive.ObjectID `bson:"created_by,omitempty" json:"created_by,omitempty"`

	// For refund invoices, the invoice being reversed.
	ReversesID *primitive.ObjectID `bson:"reverses_id,omitempty" json:"reverses_id,omitempty"`
	Reason     string              `bson:"reason,omitempty" json:"reason,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
