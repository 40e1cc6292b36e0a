package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/genmacebiz/permit-portal-backend/internal/database"
	"github.com/genmacebiz/permit-portal-backend/internal/notify"
)

// expiryWindowDays is how far ahead of permit expiry owners are warned.
const expiryWindowDays = 30

// ExpiryService warns owners whose one-year permits are approaching expiry.
type ExpiryService struct {
	appRepo    *database.ApplicationRepository
	dispatcher notify.Dispatcher
	logger     *logrus.Logger
}

// NewExpiryService creates a new ExpiryService
func NewExpiryService(appRepo *database.ApplicationRepository, dispatcher notify.Dispatcher, logger *logrus.Logger) *ExpiryService {
	return &ExpiryService{
		appRepo:    appRepo,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Sweep finds permits expiring within the warning window and notifies their
// owners. Notification is best effort: offline owners are simply skipped.
func (s *ExpiryService) Sweep() {
	apps, err := s.appRepo.ExpiringPermits(expiryWindowDays)
	if err != nil {
		s.logger.WithError(err).Error("Permit expiry sweep failed")
		return
	}

	for _, app := range apps {
		s.dispatcher.NotifyOwner(app.UserID, notify.Event{
			Type:          notify.EventPermitExpiring,
			Message:       fmt.Sprintf("Your business permit for %s expires within %d days. Please renew.", app.BusinessName, expiryWindowDays),
			ApplicationID: app.ID,
			Status:        string(app.Status),
		})
	}

	s.logger.WithField("expiring_count", len(apps)).Info("Permit expiry sweep completed")
}
