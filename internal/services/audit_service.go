package services

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/genmacebiz/permit-portal-backend/internal/database"
	"github.com/genmacebiz/permit-portal-backend/internal/models"
	"github.com/genmacebiz/permit-portal-backend/internal/utils"
)

// Audit event actions
const (
	AuditLoginSuccess = "login_success"
	AuditLoginFailed  = "login_failed"
	AuditRegistered   = "user_registered"
	AuditUserCreated  = "user_created"
	AuditUserUpdated  = "user_updated"
	AuditPwdReset     = "password_reset"
)

// AuditService records security events. Writes are best effort: an audit
// failure is logged but never fails the request that triggered it.
type AuditService struct {
	auditRepo *database.AuditLogRepository
	logger    *logrus.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(auditRepo *database.AuditLogRepository, logger *logrus.Logger) *AuditService {
	return &AuditService{auditRepo: auditRepo, logger: logger}
}

// LoginSuccess records a successful credential check.
func (s *AuditService) LoginSuccess(userID int64, ipAddress, userAgent string) {
	s.write(&models.AuditLog{
		UserID:     &userID,
		Action:     AuditLoginSuccess,
		EntityType: "user",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    deviceDetails(userAgent),
	})
}

// LoginFailed records a failed credential check. The attempted email is kept
// in details so repeated attempts can be traced without a user id.
func (s *AuditService) LoginFailed(email, ipAddress, userAgent string) {
	details := deviceDetails(userAgent)
	details["email"] = email
	s.write(&models.AuditLog{
		Action:     AuditLoginFailed,
		EntityType: "user",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// Registered records a self-service owner registration.
func (s *AuditService) Registered(userID int64, ipAddress, userAgent string) {
	s.write(&models.AuditLog{
		UserID:     &userID,
		Action:     AuditRegistered,
		EntityType: "user",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    deviceDetails(userAgent),
	})
}

// AccountManaged records an admin creating or updating another account.
func (s *AuditService) AccountManaged(adminID, targetID int64, action, ipAddress, userAgent string) {
	target := strconv.FormatInt(targetID, 10)
	s.write(&models.AuditLog{
		UserID:     &adminID,
		Action:     action,
		EntityType: "user",
		EntityID:   &target,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	})
}

func (s *AuditService) write(entry *models.AuditLog) {
	entry.ID = uuid.New()
	if err := s.auditRepo.Create(entry); err != nil {
		s.logger.WithError(err).WithField("action", entry.Action).Error("Failed to write audit log")
	}
}

func deviceDetails(userAgent string) models.JSONB {
	device := utils.ParseUserAgent(userAgent)
	return models.JSONB{
		"device_type": device.DeviceType,
		"os":          device.OS,
		"browser":     device.Browser,
		"is_bot":      device.IsBot,
	}
}
