package database

import (
	"fmt"

	"github.com/genmacebiz/permit-portal-backend/internal/models"
)

// ApplicationRepository handles database operations for the applications table
type ApplicationRepository struct {
	db DB
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `
	id, user_id, business_name, business_type, address,
	barangay_clearance, dti_certificate, lease_contract,
	status, fee, payment_status, permit_file, created_at, updated_at
`

// Create inserts a new application in the pending state
func (r *ApplicationRepository) Create(userID int64, req *models.CreateApplicationRequest) (*models.Application, error) {
	query := `
		INSERT INTO applications (
			user_id, business_name, business_type, address,
			barangay_clearance, dti_certificate, lease_contract, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + applicationColumns

	app := &models.Application{}
	err := r.db.QueryRow(
		query,
		userID, req.BusinessName, req.BusinessType, req.Address,
		req.BarangayClearance, req.DTICertificate, req.LeaseContract,
		models.StatusPending,
	).Scan(scanApplicationFields(app)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	return app, nil
}

// GetByID retrieves an application by id
func (r *ApplicationRepository) GetByID(id int64) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	app := &models.Application{}
	err := r.db.QueryRow(query, id).Scan(scanApplicationFields(app)...)
	if err != nil {
		return nil, err
	}

	return app, nil
}

// GetWithOwner retrieves an application joined with its owner's name
func (r *ApplicationRepository) GetWithOwner(id int64) (*models.ApplicationWithOwner, error) {
	query := `
		SELECT
			a.id, a.user_id, a.business_name, a.business_type, a.address,
			a.barangay_clearance, a.dti_certificate, a.lease_contract,
			a.status, a.fee, a.payment_status, a.permit_file, a.created_at, a.updated_at,
			u.name AS owner_name
		FROM applications a
		JOIN users u ON a.user_id = u.id
		WHERE a.id = $1
	`

	app := &models.ApplicationWithOwner{}
	fields := scanApplicationFields(&app.Application)
	fields = append(fields, &app.OwnerName)
	err := r.db.QueryRow(query, id).Scan(fields...)
	if err != nil {
		return nil, err
	}

	return app, nil
}

// ListAll retrieves all applications with owner names, newest first
func (r *ApplicationRepository) ListAll() ([]models.ApplicationWithOwner, error) {
	query := `
		SELECT
			a.id, a.user_id, a.business_name, a.business_type, a.address,
			a.barangay_clearance, a.dti_certificate, a.lease_contract,
			a.status, a.fee, a.payment_status, a.permit_file, a.created_at, a.updated_at,
			u.name AS owner_name
		FROM applications a
		JOIN users u ON a.user_id = u.id
		ORDER BY a.created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []models.ApplicationWithOwner{}
	for rows.Next() {
		var app models.ApplicationWithOwner
		fields := scanApplicationFields(&app.Application)
		fields = append(fields, &app.OwnerName)
		if err := rows.Scan(fields...); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

// ListByOwner retrieves the applications submitted by one owner, newest first
func (r *ApplicationRepository) ListByOwner(userID int64) ([]models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []models.Application{}
	for rows.Next() {
		var app models.Application
		if err := rows.Scan(scanApplicationFields(&app)...); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

// Update rewrites the editable fields and forces the given status. Document
// slots passed as nil keep their stored value.
func (r *ApplicationRepository) Update(id int64, req *models.UpdateApplicationRequest, status models.ApplicationStatus) error {
	query := `
		UPDATE applications SET
			business_name = $1, business_type = $2, address = $3,
			barangay_clearance = COALESCE($4, barangay_clearance),
			dti_certificate = COALESCE($5, dti_certificate),
			lease_contract = COALESCE($6, lease_contract),
			status = $7, updated_at = NOW()
		WHERE id = $8
	`

	result, err := r.db.Exec(
		query,
		req.BusinessName, req.BusinessType, req.Address,
		req.BarangayClearance, req.DTICertificate, req.LeaseContract,
		status, id,
	)
	if err != nil {
		return err
	}
	return requireRowsAffected(result)
}

// UpdateStatus applies a staff decision: status plus the assessed fee
func (r *ApplicationRepository) UpdateStatus(id int64, status models.ApplicationStatus, fee float64) error {
	query := `UPDATE applications SET status = $1, fee = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.db.Exec(query, status, fee, id)
	if err != nil {
		return err
	}
	return requireRowsAffected(result)
}

// MarkIssued transitions an application to permit_issued with its permit file
func (r *ApplicationRepository) MarkIssued(id int64, permitFile string) error {
	query := `
		UPDATE applications SET
			status = $1, payment_status = $2, permit_file = $3, updated_at = NOW()
		WHERE id = $4
	`
	result, err := r.db.Exec(query, models.StatusPermitIssued, models.PaymentCompleted, permitFile, id)
	if err != nil {
		return err
	}
	return requireRowsAffected(result)
}

// Delete removes an application
func (r *ApplicationRepository) Delete(id int64) error {
	query := `DELETE FROM applications WHERE id = $1`
	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}
	return requireRowsAffected(result)
}

// CountByStatus returns the number of applications in the given status
func (r *ApplicationRepository) CountByStatus(status models.ApplicationStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM applications WHERE status = $1`
	var count int64
	err := r.db.QueryRow(query, status).Scan(&count)
	return count, err
}

// Count returns the total number of applications
func (r *ApplicationRepository) Count() (int64, error) {
	query := `SELECT COUNT(*) FROM applications`
	var count int64
	err := r.db.QueryRow(query).Scan(&count)
	return count, err
}

// OwnerStats returns the per-status counters for one owner's applications
func (r *ApplicationRepository) OwnerStats(userID int64) (*models.OwnerStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'rejected'),
			COUNT(*) FILTER (WHERE status = 'permit_issued')
		FROM applications WHERE user_id = $1
	`

	stats := &models.OwnerStats{}
	err := r.db.QueryRow(query, userID).Scan(
		&stats.Total, &stats.Pending, &stats.Approved, &stats.Rejected, &stats.PermitIssued,
	)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// MonthlyChart returns per-month status counts for one owner's applications
func (r *ApplicationRepository) MonthlyChart(userID int64) ([]models.MonthlyCount, error) {
	query := `
		SELECT
			to_char(created_at, 'YYYY-MM') AS month,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'approved') AS approved,
			COUNT(*) FILTER (WHERE status = 'rejected') AS rejected,
			COUNT(*) FILTER (WHERE status = 'permit_issued') AS permit_issued
		FROM applications
		WHERE user_id = $1
		GROUP BY to_char(created_at, 'YYYY-MM')
		ORDER BY month
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []models.MonthlyCount{}
	for rows.Next() {
		var point models.MonthlyCount
		err := rows.Scan(&point.Month, &point.Pending, &point.Approved, &point.Rejected, &point.PermitIssued)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}

	return points, rows.Err()
}

// Recent returns the latest applications with owner names, limited
func (r *ApplicationRepository) Recent(limit int) ([]models.RecentApplication, error) {
	query := `
		SELECT a.id, a.business_name, a.status, a.created_at, u.name AS owner_name
		FROM applications a
		JOIN users u ON a.user_id = u.id
		ORDER BY a.created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []models.RecentApplication{}
	for rows.Next() {
		var app models.RecentApplication
		if err := rows.Scan(&app.ID, &app.BusinessName, &app.Status, &app.CreatedAt, &app.OwnerName); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

// RecentByOwner returns one owner's latest applications, limited
func (r *ApplicationRepository) RecentByOwner(userID int64, limit int) ([]models.RecentApplication, error) {
	query := `
		SELECT id, business_name, status, created_at
		FROM applications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []models.RecentApplication{}
	for rows.Next() {
		var app models.RecentApplication
		if err := rows.Scan(&app.ID, &app.BusinessName, &app.Status, &app.CreatedAt); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

// ExpiringPermits returns issued applications whose one-year permits expire
// within the given window, joined with owner ids for notification.
func (r *ApplicationRepository) ExpiringPermits(withinDays int) ([]models.ApplicationWithOwner, error) {
	query := `
		SELECT
			a.id, a.user_id, a.business_name, a.business_type, a.address,
			a.barangay_clearance, a.dti_certificate, a.lease_contract,
			a.status, a.fee, a.payment_status, a.permit_file, a.created_at, a.updated_at,
			u.name AS owner_name
		FROM applications a
		JOIN users u ON a.user_id = u.id
		JOIN payments p ON p.application_id = a.id AND p.status = 'completed'
		WHERE a.status = 'permit_issued'
		  AND p.payment_date + INTERVAL '1 year' BETWEEN NOW() AND NOW() + ($1 * INTERVAL '1 day')
	`

	rows, err := r.db.Query(query, withinDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []models.ApplicationWithOwner{}
	for rows.Next() {
		var app models.ApplicationWithOwner
		fields := scanApplicationFields(&app.Application)
		fields = append(fields, &app.OwnerName)
		if err := rows.Scan(fields...); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

// scanApplicationFields returns scan destinations in applicationColumns order
func scanApplicationFields(app *models.Application) []interface{} {
	return []interface{}{
		&app.ID, &app.UserID, &app.BusinessName, &app.BusinessType, &app.Address,
		&app.BarangayClearance, &app.DTICertificate, &app.LeaseContract,
		&app.Status, &app.Fee, &app.PaymentStatus, &app.PermitFile,
		&app.CreatedAt, &app.UpdatedAt,
	}
}
