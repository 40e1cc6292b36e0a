package database

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genmacebiz/permit-portal-backend/internal/models"
)

// mockDatabase adapts a sqlmock connection to the DB interface
type mockDatabase struct {
	db *sql.DB
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("not implemented in mock")
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("not implemented in mock")
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}

var applicationRows = []string{
	"id", "user_id", "business_name", "business_type", "address",
	"barangay_clearance", "dti_certificate", "lease_contract",
	"status", "fee", "payment_status", "permit_file", "created_at", "updated_at",
}

func TestCreateApplication(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewApplicationRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		clearance := "uploads/docs/clearance.pdf"
		req := &models.CreateApplicationRequest{
			BusinessName:      "Santos Sari-Sari Store",
			BusinessType:      "Retail",
			Address:           "Purok 3, Brgy. Vigan",
			BarangayClearance: &clearance,
		}

		mock.ExpectQuery(`INSERT INTO applications`).
			WithArgs(int64(42), req.BusinessName, req.BusinessType, req.Address,
				&clearance, nil, nil, models.StatusPending).
			WillReturnRows(sqlmock.NewRows(applicationRows).AddRow(
				int64(1), int64(42), req.BusinessName, req.BusinessType, req.Address,
				clearance, nil, nil,
				"pending", 0.0, "not_paid", nil, now, now,
			))

		app, err := repo.Create(42, req)
		require.NoError(t, err)
		assert.Equal(t, int64(1), app.ID)
		assert.Equal(t, models.StatusPending, app.Status)
		assert.Equal(t, models.PaymentNotPaid, app.PaymentStatus)
		assert.Nil(t, app.PermitFile)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		req := &models.CreateApplicationRequest{
			BusinessName: "Santos Sari-Sari Store",
			BusinessType: "Retail",
			Address:      "Purok 3, Brgy. Vigan",
		}

		mock.ExpectQuery(`INSERT INTO applications`).
			WillReturnError(fmt.Errorf("database error"))

		app, err := repo.Create(42, req)
		assert.Error(t, err)
		assert.Nil(t, app)
		assert.Contains(t, err.Error(), "failed to create application")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetApplicationByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewApplicationRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		permitFile := "/uploads/permits/permit_7.pdf"

		mock.ExpectQuery(`SELECT (.+) FROM applications WHERE id`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(applicationRows).AddRow(
				int64(7), int64(42), "Santos Sari-Sari Store", "Retail", "Purok 3",
				nil, nil, nil,
				"permit_issued", 1500.0, "completed", permitFile, now, now,
			))

		app, err := repo.GetByID(7)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPermitIssued, app.Status)
		assert.Equal(t, 1500.0, app.Fee)
		require.NotNil(t, app.PermitFile)
		assert.Equal(t, permitFile, *app.PermitFile)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM applications WHERE id`).
			WithArgs(int64(999)).
			WillReturnError(sql.ErrNoRows)

		app, err := repo.GetByID(999)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, app)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateApplicationStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewApplicationRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE applications SET status`).
			WithArgs(models.StatusApproved, 1500.0, int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(7, models.StatusApproved, 1500.0)
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectExec(`UPDATE applications SET status`).
			WithArgs(models.StatusApproved, 1500.0, int64(999)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(999, models.StatusApproved, 1500.0)
		assert.ErrorIs(t, err, sql.ErrNoRows)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMarkIssued(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewApplicationRepository(mockDB)

	mock.ExpectExec(`UPDATE applications SET`).
		WithArgs(models.StatusPermitIssued, models.PaymentCompleted, "/uploads/permits/permit_7.pdf", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkIssued(7, "/uploads/permits/permit_7.pdf")
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOwnerEditResetsStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewApplicationRepository(mockDB)

	req := &models.UpdateApplicationRequest{
		BusinessName: "Santos General Merchandise",
		BusinessType: "Retail",
		Address:      "Purok 3, Brgy. Vigan",
	}

	mock.ExpectExec(`UPDATE applications SET`).
		WithArgs(req.BusinessName, req.BusinessType, req.Address,
			nil, nil, nil, models.StatusPending, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Update(7, req, models.StatusPending)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOwnerEditKeepsStoredDocuments(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewApplicationRepository(mockDB)

	// Text-only edit: every document slot omitted. The stored references
	// must survive, so the statement coalesces nil slots onto the columns.
	req := &models.UpdateApplicationRequest{
		BusinessName: "Santos General Merchandise",
		BusinessType: "Retail",
		Address:      "Purok 3, Brgy. Vigan",
	}

	mock.ExpectExec(`UPDATE applications SET (.+)barangay_clearance = COALESCE\(\$4, barangay_clearance\), dti_certificate = COALESCE\(\$5, dti_certificate\), lease_contract = COALESCE\(\$6, lease_contract\)`).
		WithArgs(req.BusinessName, req.BusinessType, req.Address,
			nil, nil, nil, models.StatusPending, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Update(7, req, models.StatusPending)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOwnerStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewApplicationRepository(mockDB)

	mock.ExpectQuery(`SELECT (.+) FROM applications WHERE user_id`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{
			"count", "pending", "approved", "rejected", "permit_issued",
		}).AddRow(int64(5), int64(2), int64(1), int64(1), int64(1)))

	stats, err := repo.OwnerStats(42)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(1), stats.PermitIssued)

	assert.NoError(t, mock.ExpectationsWereMet())
}
