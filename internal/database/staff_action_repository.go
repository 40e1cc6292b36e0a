package database

import (
	"fmt"

	"github.com/genmacebiz/permit-portal-backend/internal/models"
)

// StaffActionRepository handles database operations for the staff_actions
// table. The table is append-only: there are no update or delete methods.
type StaffActionRepository struct {
	db DB
}

// NewStaffActionRepository creates a new StaffActionRepository
func NewStaffActionRepository(db DB) *StaffActionRepository {
	return &StaffActionRepository{db: db}
}

// Create appends an audit entry for a staff decision
func (r *StaffActionRepository) Create(staffID, applicationID int64, action string, remarks *string) (*models.StaffAction, error) {
	query := `
		INSERT INTO staff_actions (staff_id, application_id, action, remarks)
		VALUES ($1, $2, $3, $4)
		RETURNING id, staff_id, application_id, action, remarks, created_at
	`

	entry := &models.StaffAction{}
	err := r.db.QueryRow(query, staffID, applicationID, action, remarks).Scan(
		&entry.ID, &entry.StaffID, &entry.ApplicationID,
		&entry.Action, &entry.Remarks, &entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record staff action: %w", err)
	}

	return entry, nil
}

// ListByApplication retrieves the audit trail for an application, newest
// first, with the acting staff's display name joined in.
func (r *StaffActionRepository) ListByApplication(applicationID int64) ([]models.StaffActionWithName, error) {
	query := `
		SELECT sa.id, sa.staff_id, sa.application_id, sa.action, sa.remarks, sa.created_at,
		       u.name AS staff_name
		FROM staff_actions sa
		JOIN users u ON sa.staff_id = u.id
		WHERE sa.application_id = $1
		ORDER BY sa.created_at DESC
	`

	rows, err := r.db.Query(query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	actions := []models.StaffActionWithName{}
	for rows.Next() {
		var action models.StaffActionWithName
		err := rows.Scan(
			&action.ID, &action.StaffID, &action.ApplicationID,
			&action.Action, &action.Remarks, &action.CreatedAt,
			&action.StaffName,
		)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}

	return actions, rows.Err()
}
