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
	"github.com/genmacebiz/permit-portal-backend/pkg/storage"
)

func setupPaymentHandler(t *testing.T) (*PaymentHandler, sqlmock.Sqlmock, *recordingDispatcher) {
	t.Helper()

	mockDB, mock := setupMockDB(t)
	dispatcher := newRecordingDispatcher()

	appRepo := database.NewApplicationRepository(mockDB)
	paymentRepo := database.NewPaymentRepository(mockDB)
	issuerSvc := services.NewIssuerService(
		appRepo,
		paymentRepo,
		services.NewPermitRenderer(""),
		storage.NewLocalStorage(t.TempDir(), "/uploads"),
		nil,
		dispatcher,
		testLogger(),
	)

	return NewPaymentHandler(issuerSvc, paymentRepo), mock, dispatcher
}

func TestRecordPayment(t *testing.T) {
	t.Run("Issues Permit", func(t *testing.T) {
		handler, mock, dispatcher := setupPaymentHandler(t)

		router := newTestRouter()
		router.POST("/payments", asUser(42, "Maria Santos", models.RoleOwner), handler.Record)

		ownerRows := append(append([]string{}, applicationRows...), "owner_name")
		now := time.Now()
		mock.ExpectQuery(`SELECT (.+) FROM applications a`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(ownerRows).AddRow(
				int64(7), int64(42), "Santos Sari-Sari Store", "Retail", "Purok 3",
				nil, nil, nil,
				"approved", 1500.0, "not_paid", nil, now, now,
				"Maria Santos",
			))
		mock.ExpectQuery(`INSERT INTO payments`).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "application_id", "amount", "status", "payment_date", "transaction_id",
			}).AddRow(int64(1), int64(7), 1500.0, "completed", now, "pi_3abc123"))
		mock.ExpectExec(`UPDATE applications SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT (.+) FROM applications WHERE id`).
			WithArgs(int64(7)).
			WillReturnRows(applicationRow(7, 42, models.StatusPermitIssued, 1500))

		body, _ := json.Marshal(models.RecordPaymentRequest{
			ApplicationID: 7,
			Amount:        1500,
			TransactionID: "pi_3abc123",
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"permit_issued"`)

		require.Len(t, dispatcher.ownerEvents[42], 1)
		assert.Equal(t, notify.EventPermitIssued, dispatcher.ownerEvents[42][0].Type)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rejected When Not Approved", func(t *testing.T) {
		handler, mock, _ := setupPaymentHandler(t)

		router := newTestRouter()
		router.POST("/payments", asUser(42, "Maria Santos", models.RoleOwner), handler.Record)

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

		body, _ := json.Marshal(models.RecordPaymentRequest{ApplicationID: 7, Amount: 1500})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPaymentStatusEndpoint(t *testing.T) {
	handler, mock, _ := setupPaymentHandler(t)

	router := newTestRouter()
	router.GET("/payments/application/:id", asUser(42, "Maria Santos", models.RoleOwner), handler.Status)

	mock.ExpectQuery(`SELECT (.+) FROM applications WHERE id`).
		WithArgs(int64(7)).
		WillReturnRows(applicationRow(7, 42, models.StatusPermitIssued, 1500))
	mock.ExpectQuery(`SELECT (.+) FROM payments`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "application_id", "amount", "status", "payment_date", "transaction_id",
		}).AddRow(int64(1), int64(7), 1500.0, "completed", time.Now(), "pi_3abc123"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/payments/application/7", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"paid":true`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
