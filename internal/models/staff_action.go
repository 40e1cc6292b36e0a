package models

import (
	"time"
)

// StaffAction is an immutable audit entry recording a staff decision on an
// application. Rows are append-only and never mutated or deleted.
type StaffAction struct {
	ID            int64     `json:"id" db:"id"`
	StaffID       int64     `json:"staff_id" db:"staff_id"`
	ApplicationID int64     `json:"application_id" db:"application_id"`
	Action        string    `json:"action" db:"action"`
	Remarks       *string   `json:"remarks" db:"remarks"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// StaffActionWithName is a staff action joined with the acting staff's name
type StaffActionWithName struct {
	StaffAction
	StaffName string `json:"staff_name" db:"staff_name"`
}
