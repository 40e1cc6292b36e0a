package models

import (
	"time"
)

// ApplicationStatus represents the lifecycle state of a permit application
type ApplicationStatus string

const (
	StatusPending      ApplicationStatus = "pending"
	StatusApproved     ApplicationStatus = "approved"
	StatusRejected     ApplicationStatus = "rejected"
	StatusPermitIssued ApplicationStatus = "permit_issued"
)

// Valid reports whether the status is one of the known lifecycle states
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusPermitIssued:
		return true
	}
	return false
}

// PaymentState tracks whether the permit fee has been settled
type PaymentState string

const (
	PaymentNotPaid   PaymentState = "not_paid"
	PaymentCompleted PaymentState = "completed"
)

// Application represents a single business-permit request.
// Document slots hold storage references, not file contents.
type Application struct {
	ID                int64             `json:"id" db:"id"`
	UserID            int64             `json:"user_id" db:"user_id"`
	BusinessName      string            `json:"business_name" db:"business_name"`
	BusinessType      string            `json:"business_type" db:"business_type"`
	Address           string            `json:"address" db:"address"`
	BarangayClearance *string           `json:"barangay_clearance" db:"barangay_clearance"`
	DTICertificate    *string           `json:"dti_certificate" db:"dti_certificate"`
	LeaseContract     *string           `json:"lease_contract" db:"lease_contract"`
	Status            ApplicationStatus `json:"status" db:"status"`
	Fee               float64           `json:"fee" db:"fee"`
	PaymentStatus     PaymentState      `json:"payment_status" db:"payment_status"`
	PermitFile        *string           `json:"permit_file" db:"permit_file"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
}

// ApplicationWithOwner is an application joined with its owner's display name
type ApplicationWithOwner struct {
	Application
	OwnerName string `json:"owner_name" db:"owner_name"`
}

// CreateApplicationRequest is the payload for submitting a new application
type CreateApplicationRequest struct {
	BusinessName      string  `json:"business_name" binding:"required"`
	BusinessType      string  `json:"business_type" binding:"required"`
	Address           string  `json:"address" binding:"required"`
	BarangayClearance *string `json:"barangay_clearance"`
	DTICertificate    *string `json:"dti_certificate"`
	LeaseContract     *string `json:"lease_contract"`
}

// UpdateApplicationRequest is the payload for editing an application.
// Document slots keep their stored value when omitted.
type UpdateApplicationRequest struct {
	BusinessName      string  `json:"business_name" binding:"required"`
	BusinessType      string  `json:"business_type" binding:"required"`
	Address           string  `json:"address" binding:"required"`
	BarangayClearance *string `json:"barangay_clearance"`
	DTICertificate    *string `json:"dti_certificate"`
	LeaseContract     *string `json:"lease_contract"`
}

// UpdateStatusRequest is the payload for a staff decision on an application
type UpdateStatusRequest struct {
	Status  ApplicationStatus `json:"status" binding:"required"`
	Fee     float64           `json:"fee"`
	Remarks string            `json:"remarks"`
}

// Document represents a supplementary upload attached to an application,
// distinct from the three named document slots.
type Document struct {
	ID            int64     `json:"id" db:"id"`
	ApplicationID int64     `json:"application_id" db:"application_id"`
	FileName      string    `json:"file_name" db:"file_name"`
	FilePath      string    `json:"file_path" db:"file_path"`
	UploadedAt    time.Time `json:"uploaded_at" db:"uploaded_at"`
}
