package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/genmacebiz/permit-portal-backend/internal/database"
	"github.com/genmacebiz/permit-portal-backend/internal/models"
	"github.com/genmacebiz/permit-portal-backend/internal/services"
)

var userRows = []string{"id", "name", "email", "password_hash", "role", "profile_pic", "created_at"}

func setupAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, *recordingDispatcher) {
	t.Helper()

	mockDB, mock := setupMockDB(t)
	dispatcher := newRecordingDispatcher()

	handler := NewAuthHandler(
		database.NewUserRepository(mockDB),
		testJWTService(),
		services.NewAuditService(database.NewAuditLogRepository(mockDB), testLogger()),
		dispatcher,
		bcrypt.MinCost,
	)
	return handler, mock, dispatcher
}

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mock, dispatcher := setupAuthHandler(t)

		router := newTestRouter()
		router.POST("/auth/register", handler.Register)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE email`).
			WithArgs("maria@example.com", int64(0)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("Maria Santos", "maria@example.com", sqlmock.AnyArg(), models.RoleOwner).
			WillReturnRows(sqlmock.NewRows(userRows).AddRow(
				int64(1), "Maria Santos", "maria@example.com", "hash", "owner", "defaultProfile.png", time.Now(),
			))
		mock.ExpectQuery(`INSERT INTO audit_logs`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		body, _ := json.Marshal(models.RegisterRequest{
			Name:     "Maria Santos",
			Email:    "Maria@Example.com",
			Password: "secret123",
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp["access_token"])
		assert.NotEmpty(t, resp["refresh_token"])
		// Password hash must never appear in the response.
		assert.NotContains(t, w.Body.String(), "password_hash")

		require.Len(t, dispatcher.staffEvents, 1)
		assert.Equal(t, "user_registered", dispatcher.staffEvents[0].Type)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		handler, mock, _ := setupAuthHandler(t)

		router := newTestRouter()
		router.POST("/auth/register", handler.Register)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE email`).
			WithArgs("maria@example.com", int64(0)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		body, _ := json.Marshal(models.RegisterRequest{
			Name:     "Maria Santos",
			Email:    "maria@example.com",
			Password: "secret123",
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Invalid Body", func(t *testing.T) {
		handler, _, _ := setupAuthHandler(t)

		router := newTestRouter()
		router.POST("/auth/register", handler.Register)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte(`{"email": "not-an-email"}`)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		handler, mock, _ := setupAuthHandler(t)

		router := newTestRouter()
		router.POST("/auth/login", handler.Login)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WithArgs("maria@example.com").
			WillReturnRows(sqlmock.NewRows(userRows).AddRow(
				int64(1), "Maria Santos", "maria@example.com", string(hash), "owner", "defaultProfile.png", time.Now(),
			))
		mock.ExpectQuery(`INSERT INTO audit_logs`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		body, _ := json.Marshal(models.LoginRequest{Email: "maria@example.com", Password: "secret123"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "access_token")

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Wrong Password", func(t *testing.T) {
		handler, mock, _ := setupAuthHandler(t)

		router := newTestRouter()
		router.POST("/auth/login", handler.Login)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WithArgs("maria@example.com").
			WillReturnRows(sqlmock.NewRows(userRows).AddRow(
				int64(1), "Maria Santos", "maria@example.com", string(hash), "owner", "defaultProfile.png", time.Now(),
			))
		mock.ExpectQuery(`INSERT INTO audit_logs`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		body, _ := json.Marshal(models.LoginRequest{Email: "maria@example.com", Password: "wrong"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Email", func(t *testing.T) {
		handler, mock, _ := setupAuthHandler(t)

		router := newTestRouter()
		router.POST("/auth/login", handler.Login)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`INSERT INTO audit_logs`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		body, _ := json.Marshal(models.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
