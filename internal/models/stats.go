package models

import (
	"time"
)

// OverviewStats holds the staff/admin dashboard counters
type OverviewStats struct {
	TotalApplications        int64 `json:"total_applications"`
	PendingApplications      int64 `json:"pending_applications"`
	ApprovedApplications     int64 `json:"approved_applications"`
	RejectedApplications     int64 `json:"rejected_applications"`
	PermitIssuedApplications int64 `json:"permit_issued_applications"`
	TotalBusinessOwners      int64 `json:"total_business_owners"`
}

// OwnerStats holds the per-owner dashboard counters
type OwnerStats struct {
	Total        int64 `json:"total"`
	Pending      int64 `json:"pending"`
	Approved     int64 `json:"approved"`
	Rejected     int64 `json:"rejected"`
	PermitIssued int64 `json:"permit_issued"`
}

// MonthlyCount is one point of the applications-per-month chart
type MonthlyCount struct {
	Month        string `json:"month" db:"month"`
	Pending      int64  `json:"pending" db:"pending"`
	Approved     int64  `json:"approved" db:"approved"`
	Rejected     int64  `json:"rejected" db:"rejected"`
	PermitIssued int64  `json:"permit_issued" db:"permit_issued"`
}

// RecentApplication is a trimmed application row for dashboard listings
type RecentApplication struct {
	ID           int64             `json:"id" db:"id"`
	BusinessName string            `json:"business_name" db:"business_name"`
	Status       ApplicationStatus `json:"status" db:"status"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	OwnerName    string            `json:"owner_name,omitempty" db:"owner_name"`
}
