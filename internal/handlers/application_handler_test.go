package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genmacebiz/permit-portal-backend/internal/database"
	"github.com/genmacebiz/permit-portal-backend/internal/models"
	"github.com/genmacebiz/permit-portal-backend/internal/notify"
	"github.com/genmacebiz/permit-portal-backend/internal/services"
)

var applicationRows = []string{
	"id", "user_id", "business_name", "business_type", "address",
	"barangay_clearance", "dti_certificate", "lease_contract",
	"status", "fee", "payment_status", "permit_file", "created_at", "updated_at",
}

func applicationRow(id, userID int64, status models.ApplicationStatus, fee float64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(applicationRows).AddRow(
		id, userID, "Santos Sari-Sari Store", "Retail", "Purok 3, Brgy. Vigan",
		nil, nil, nil,
		string(status), fee, "not_paid", nil, now, now,
	)
}

func setupApplicationHandler(t *testing.T) (*ApplicationHandler, sqlmock.Sqlmock, *recordingDispatcher) {
	t.Helper()

	mockDB, mock := setupMockDB(t)
	dispatcher := newRecordingDispatcher()

	appRepo := database.NewApplicationRepository(mockDB)
	actionRepo := database.NewStaffActionRepository(mockDB)
	lifecycleSvc := services.NewLifecycleService(appRepo, actionRepo, dispatcher, testLogger())

	return NewApplicationHandler(lifecycleSvc, appRepo, actionRepo), mock, dispatcher
}

func TestCreateApplication(t *testing.T) {
	handler, mock, dispatcher := setupApplicationHandler(t)

	router := newTestRouter()
	router.POST("/applications", asUser(42, "Maria Santos", models.RoleOwner), handler.Create)

	mock.ExpectQuery(`INSERT INTO applications`).
		WillReturnRows(applicationRow(1, 42, models.StatusPending, 0))

	body, _ := json.Marshal(models.CreateApplicationRequest{
		BusinessName: "Santos Sari-Sari Store",
		BusinessType: "Retail",
		Address:      "Purok 3, Brgy. Vigan",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/applications", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)

	require.Len(t, dispatcher.staffEvents, 1)
	assert.Equal(t, notify.EventApplicationSubmitted, dispatcher.staffEvents[0].Type)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusApprove(t *testing.T) {
	handler, mock, dispatcher := setupApplicationHandler(t)

	router := newTestRouter()
	router.PUT("/applications/:id/status", asUser(3, "Jose Cruz", models.RoleStaff), handler.UpdateStatus)

	mock.ExpectQuery(`SELECT (.+) FROM applications WHERE id`).
		WithArgs(int64(7)).
		WillReturnRows(applicationRow(7, 42, models.StatusPending, 0))
	mock.ExpectExec(`UPDATE applications SET status`).
		WithArgs(models.StatusApproved, 1500.0, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO staff_actions`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "staff_id", "application_id", "action", "remarks", "created_at",
		}).AddRow(int64(1), int64(3), int64(7), "approved", nil, time.Now()))
	mock.ExpectQuery(`SELECT (.+) FROM applications WHERE id`).
		WithArgs(int64(7)).
		WillReturnRows(applicationRow(7, 42, models.StatusApproved, 1500))

	body, _ := json.Marshal(models.UpdateStatusRequest{Status: models.StatusApproved, Fee: 1500})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/applications/7/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"approved"`)
	require.Len(t, dispatcher.ownerEvents[42], 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusRejectWithoutRemarks(t *testing.T) {
	handler, _, _ := setupApplicationHandler(t)

	router := newTestRouter()
	router.PUT("/applications/:id/status", asUser(3, "Jose Cruz", models.RoleStaff), handler.UpdateStatus)

	body, _ := json.Marshal(models.UpdateStatusRequest{Status: models.StatusRejected})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/applications/7/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Remarks")
}

func TestUpdateStatusOnIssuedPermit(t *testing.T) {
	handler, mock, _ := setupApplicationHandler(t)

	router := newTestRouter()
	router.PUT("/applications/:id/status", asUser(3, "Jose Cruz", models.RoleStaff), handler.UpdateStatus)

	mock.ExpectQuery(`SELECT (.+) FROM applications WHERE id`).
		WithArgs(int64(7)).
		WillReturnRows(applicationRow(7, 42, models.StatusPermitIssued, 1500))

	body, _ := json.Marshal(models.UpdateStatusRequest{Status: models.StatusApproved, Fee: 1500})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/applications/7/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateByStaffKeepsStatus(t *testing.T) {
	handler, mock, dispatcher := setupApplicationHandler(t)

	router := newTestRouter()
	router.PUT("/applications/:id", asUser(3, "Jose Cruz", models.RoleStaff), handler.Update)

	mock.ExpectQuery(`SELECT (.+) FROM applications WHERE id`).
		WithArgs(int64(7)).
		WillReturnRows(applicationRow(7, 42, models.StatusApproved, 1500))
	mock.ExpectExec(`UPDATE applications SET`).
		WithArgs("Santos General Merchandise", "Retail", "Purok 3, Brgy. Vigan",
			nil, nil, nil, models.StatusApproved, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM applications WHERE id`).
		WithArgs(int64(7)).
		WillReturnRows(applicationRow(7, 42, models.StatusApproved, 1500))

	body, _ := json.Marshal(models.UpdateApplicationRequest{
		BusinessName: "Santos General Merchandise",
		BusinessType: "Retail",
		Address:      "Purok 3, Brgy. Vigan",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/applications/7", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"approved"`)
	assert.Empty(t, dispatcher.staffEvents)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetApplicationForbiddenForOtherOwner(t *testing.T) {
	handler, mock, _ := setupApplicationHandler(t)

	router := newTestRouter()
	router.GET("/applications/:id", asUser(99, "Other Owner", models.RoleOwner), handler.Get)

	ownerRows := append(append([]string{}, applicationRows...), "owner_name")
	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM applications a`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(ownerRows).AddRow(
			int64(7), int64(42), "Santos Sari-Sari Store", "Retail", "Purok 3",
			nil, nil, nil,
			"pending", 0.0, "not_paid", nil, now, now,
			"Maria Santos",
		))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/applications/7", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListApplicationsByRole(t *testing.T) {
	t.Run("Owner sees own", func(t *testing.T) {
		handler, mock, _ := setupApplicationHandler(t)

		router := newTestRouter()
		router.GET("/applications", asUser(42, "Maria Santos", models.RoleOwner), handler.List)

		mock.ExpectQuery(`SELECT (.+) FROM applications WHERE user_id`).
			WithArgs(int64(42)).
			WillReturnRows(applicationRow(1, 42, models.StatusPending, 0))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/applications", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Staff sees all with owner names", func(t *testing.T) {
		handler, mock, _ := setupApplicationHandler(t)

		router := newTestRouter()
		router.GET("/applications", asUser(3, "Jose Cruz", models.RoleStaff), handler.List)

		ownerRows := append(append([]string{}, applicationRows...), "owner_name")
		now := time.Now()
		mock.ExpectQuery(`SELECT (.+) FROM applications a`).
			WillReturnRows(sqlmock.NewRows(ownerRows).AddRow(
				int64(1), int64(42), "Santos Sari-Sari Store", "Retail", "Purok 3",
				nil, nil, nil,
				"pending", 0.0, "not_paid", nil, now, now,
				"Maria Santos",
			))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/applications", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "owner_name")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteApplicationInvalidID(t *testing.T) {
	handler, _, _ := setupApplicationHandler(t)

	router := newTestRouter()
	router.DELETE("/applications/:id", asUser(42, "Maria Santos", models.RoleOwner), handler.Delete)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/applications/abc", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
