// internal/domain/models/commission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommissionRecord is one staff commission accrual, derived from a contract
// signature. Records are append-only; corrections are new rows.
type CommissionRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ContractID primitive.ObjectID `bson:"contract_id" json:"contract_id"`
	StudentID  primitive.ObjectID `bson:"student_id" json:"student_id"`
	StaffID    primitive.ObjectID `bson:"staff_id" json:"staff_id"`
	Rate       float64            `bson:"rate" json:"rate"`     // e.g. 0.05
	Base       int64              `bson:"base" json:"base"`     // contract amount, minor units
	Amount     int64              `bson:"amount" json:"amount"` // accrued commission, minor units
	Currency   string             `bson:"currency" json:"currency"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
