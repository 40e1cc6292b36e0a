package database

import (
	"fmt"

	"github.com/genmacebiz/permit-portal-backend/internal/models"
)

// PaymentRepository handles database operations for the payments table
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a payment row
func (r *PaymentRepository) Create(applicationID int64, amount float64, status models.PaymentStatus, transactionID string) (*models.Payment, error) {
	query := `
		INSERT INTO payments (application_id, amount, status, transaction_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, application_id, amount, status, payment_date, transaction_id
	`

	payment := &models.Payment{}
	err := r.db.QueryRow(query, applicationID, amount, status, transactionID).Scan(
		&payment.ID, &payment.ApplicationID, &payment.Amount,
		&payment.Status, &payment.PaymentDate, &payment.TransactionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	return payment, nil
}

// GetLatestByApplication retrieves the most recent payment for an application
func (r *PaymentRepository) GetLatestByApplication(applicationID int64) (*models.Payment, error) {
	query := `
		SELECT id, application_id, amount, status, payment_date, transaction_id
		FROM payments
		WHERE application_id = $1
		ORDER BY payment_date DESC
		LIMIT 1
	`

	payment := &models.Payment{}
	err := r.db.QueryRow(query, applicationID).Scan(
		&payment.ID, &payment.ApplicationID, &payment.Amount,
		&payment.Status, &payment.PaymentDate, &payment.TransactionID,
	)
	if err != nil {
		return nil, err
	}

	return payment, nil
}

// ListAll retrieves all payments joined with business and owner names,
// newest first (staff-facing listing).
func (r *PaymentRepository) ListAll() ([]models.PaymentWithDetails, error) {
	query := `
		SELECT p.id, p.application_id, p.amount, p.status, p.payment_date, p.transaction_id,
		       a.business_name, u.name AS owner_name
		FROM payments p
		JOIN applications a ON p.application_id = a.id
		JOIN users u ON a.user_id = u.id
		ORDER BY p.payment_date DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []models.PaymentWithDetails{}
	for rows.Next() {
		var payment models.PaymentWithDetails
		err := rows.Scan(
			&payment.ID, &payment.ApplicationID, &payment.Amount,
			&payment.Status, &payment.PaymentDate, &payment.TransactionID,
			&payment.BusinessName, &payment.OwnerName,
		)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

// CountCompletedByApplication returns the number of completed payments
// recorded against an application.
func (r *PaymentRepository) CountCompletedByApplication(applicationID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM payments WHERE application_id = $1 AND status = 'completed'`
	var count int64
	err := r.db.QueryRow(query, applicationID).Scan(&count)
	return count, err
}
