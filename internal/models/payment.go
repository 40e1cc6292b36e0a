package models

import (
	"time"
)

// PaymentStatus represents the state of a payment transaction
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment represents one transaction recorded against an application
type Payment struct {
	ID            int64         `json:"id" db:"id"`
	ApplicationID int64         `json:"application_id" db:"application_id"`
	Amount        float64       `json:"amount" db:"amount"`
	Status        PaymentStatus `json:"status" db:"status"`
	PaymentDate   time.Time     `json:"payment_date" db:"payment_date"`
	TransactionID string        `json:"transaction_id" db:"transaction_id"`
}

// PaymentWithDetails is a payment joined with application and owner info,
// used for the staff-facing payments listing.
type PaymentWithDetails struct {
	Payment
	BusinessName string `json:"business_name" db:"business_name"`
	OwnerName    string `json:"owner_name" db:"owner_name"`
}

// RecordPaymentRequest is the payload for recording a completed payment
type RecordPaymentRequest struct {
	ApplicationID int64   `json:"application_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
	TransactionID string  `json:"transaction_id"`
}

// CreateIntentRequest is the payload for creating a card-payment intent
type CreateIntentRequest struct {
	ApplicationID int64   `json:"application_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
}
