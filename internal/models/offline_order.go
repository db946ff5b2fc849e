package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Offline order statuses.
const (
	OfflineOrderOpen      = "open"
	OfflineOrderInvoiced  = "invoiced"
	OfflineOrderCompleted = "completed"
)

// OfflineOrder records a sale taken over phone/WhatsApp and keyed in by an
// operator. It shares the paise convention but not the online lifecycle.
type OfflineOrder struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerName string             `bson:"customerName" json:"customerName"`
	Phone        string             `bson:"phone" json:"phone"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Amount       int64              `bson:"amount" json:"amount"` // paise
	Status       string             `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
