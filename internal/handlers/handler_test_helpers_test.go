package handlers

import (
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/genmacebiz/permit-portal-backend/internal/middleware"
	"github.com/genmacebiz/permit-portal-backend/internal/models"
	"github.com/genmacebiz/permit-portal-backend/internal/notify"
	"github.com/genmacebiz/permit-portal-backend/pkg/jwt"
)

// mockDatabase adapts a sqlmock connection to the database.DB interface
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

// recordingDispatcher captures notifications for assertions
type recordingDispatcher struct {
	mu          sync.Mutex
	ownerEvents map[int64][]notify.Event
	staffEvents []notify.Event
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{ownerEvents: make(map[int64][]notify.Event)}
}

func (d *recordingDispatcher) NotifyOwner(ownerID int64, event notify.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ownerEvents[ownerID] = append(d.ownerEvents[ownerID], event)
}

func (d *recordingDispatcher) NotifyStaff(event notify.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.staffEvents = append(d.staffEvents, event)
}

func setupMockDB(t *testing.T) (*mockDatabase, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &mockDatabase{db: db}, mock
}

func testJWTService() *jwt.Service {
	return jwt.NewService("test-secret", "test-refresh-secret", time.Hour, 7*24*time.Hour)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// asUser injects a user context the way AuthMiddleware would
func asUser(userID int64, name string, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserContextKey, middleware.UserContext{
			UserID: userID,
			Email:  "user@example.com",
			Name:   name,
			Role:   role,
		})
		c.Next()
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}
