package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/genmacebiz/permit-portal-backend/internal/database"
	"github.com/genmacebiz/permit-portal-backend/internal/models"
	"github.com/genmacebiz/permit-portal-backend/internal/notify"
)

// LifecycleService owns the application state machine: submission, owner
// edits, staff decisions and deletion. Every staff decision is appended to
// the staff_actions trail, and every state change is pushed to the relevant
// websocket audience.
type LifecycleService struct {
	appRepo    *database.ApplicationRepository
	actionRepo *database.StaffActionRepository
	dispatcher notify.Dispatcher
	logger     *logrus.Logger
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(
	appRepo *database.ApplicationRepository,
	actionRepo *database.StaffActionRepository,
	dispatcher notify.Dispatcher,
	logger *logrus.Logger,
) *LifecycleService {
	return &LifecycleService{
		appRepo:    appRepo,
		actionRepo: actionRepo,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Submit creates a new application in the pending state and alerts staff.
func (s *LifecycleService) Submit(ownerID int64, ownerName string, req *models.CreateApplicationRequest) (*models.Application, error) {
	app, err := s.appRepo.Create(ownerID, req)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"application_id": app.ID,
		"user_id":        ownerID,
		"business_name":  app.BusinessName,
	}).Info("Application submitted")

	s.dispatcher.NotifyStaff(notify.Event{
		Type:          notify.EventApplicationSubmitted,
		Message:       fmt.Sprintf("New permit application from %s: %s", ownerName, app.BusinessName),
		ApplicationID: app.ID,
		Status:        string(app.Status),
	})

	return app, nil
}

// OwnerUpdate rewrites an application's editable fields. Only the owner may
// edit, and any edit sends the application back to pending for re-review.
func (s *LifecycleService) OwnerUpdate(ownerID int64, ownerName string, id int64, req *models.UpdateApplicationRequest) (*models.Application, error) {
	app, err := s.appRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if app.UserID != ownerID {
		return nil, ErrForbidden
	}

	if err := s.appRepo.Update(id, req, models.StatusPending); err != nil {
		return nil, err
	}

	updated, err := s.appRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"application_id":  id,
		"user_id":         ownerID,
		"previous_status": app.Status,
	}).Info("Application edited by owner, reset to pending")

	s.dispatcher.NotifyStaff(notify.Event{
		Type:          notify.EventApplicationUpdated,
		Message:       fmt.Sprintf("%s updated application for %s, pending re-review", ownerName, updated.BusinessName),
		ApplicationID: id,
		Status:        string(updated.Status),
	})

	return updated, nil
}

// StaffUpdate rewrites an application's editable fields on behalf of staff
// or admin. Unlike an owner edit, the current status is kept.
func (s *LifecycleService) StaffUpdate(staffID int64, id int64, req *models.UpdateApplicationRequest) (*models.Application, error) {
	app, err := s.appRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.appRepo.Update(id, req, app.Status); err != nil {
		return nil, err
	}

	updated, err := s.appRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"application_id": id,
		"staff_id":       staffID,
		"status":         updated.Status,
	}).Info("Application edited by staff")

	return updated, nil
}

// Decide applies a staff approval or rejection. Approvals carry the assessed
// fee; rejections must carry remarks. Applications already holding an issued
// permit are immutable.
func (s *LifecycleService) Decide(staffID int64, id int64, req *models.UpdateStatusRequest) (*models.Application, error) {
	if req.Status != models.StatusApproved && req.Status != models.StatusRejected {
		return nil, ErrInvalidTransition
	}
	if req.Status == models.StatusRejected && strings.TrimSpace(req.Remarks) == "" {
		return nil, ErrRemarksRequired
	}
	if req.Fee < 0 {
		return nil, ErrNegativeFee
	}

	app, err := s.appRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if app.Status == models.StatusPermitIssued {
		return nil, ErrInvalidTransition
	}

	if err := s.appRepo.UpdateStatus(id, req.Status, req.Fee); err != nil {
		return nil, err
	}

	action := "approved"
	if req.Status == models.StatusRejected {
		action = "rejected"
	}

	var remarks *string
	if strings.TrimSpace(req.Remarks) != "" {
		trimmed := strings.TrimSpace(req.Remarks)
		remarks = &trimmed
	}

	if _, err := s.actionRepo.Create(staffID, id, action, remarks); err != nil {
		// The decision has already been applied, so surface the trail
		// failure in logs but do not roll back the status change.
		s.logger.WithError(err).WithFields(logrus.Fields{
			"application_id": id,
			"staff_id":       staffID,
		}).Error("Failed to append staff action")
	}

	updated, err := s.appRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"application_id": id,
		"staff_id":       staffID,
		"status":         updated.Status,
		"fee":            updated.Fee,
	}).Info("Application decision recorded")

	event := notify.Event{
		Type:          notify.EventStatusChanged,
		ApplicationID: id,
		Status:        string(updated.Status),
		Remarks:       remarks,
	}
	if updated.Status == models.StatusApproved {
		fee := fmt.Sprintf("%.2f", updated.Fee)
		event.Fee = &fee
		event.Message = fmt.Sprintf("Your application for %s has been approved. Permit fee: PHP %s", updated.BusinessName, fee)
	} else {
		event.Message = fmt.Sprintf("Your application for %s has been rejected", updated.BusinessName)
	}
	s.dispatcher.NotifyOwner(updated.UserID, event)

	return updated, nil
}

// Delete removes an application. Owners may delete their own; staff and
// admin may delete any.
func (s *LifecycleService) Delete(userID int64, role models.Role, id int64) error {
	app, err := s.appRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if !role.IsStaff() && app.UserID != userID {
		return ErrForbidden
	}

	if err := s.appRepo.Delete(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"application_id": id,
		"user_id":        userID,
		"role":           role,
	}).Info("Application deleted")

	return nil
}

// Get retrieves an application enforcing ownership: owners see only their
// own records while staff and admin see any.
func (s *LifecycleService) Get(userID int64, role models.Role, id int64) (*models.ApplicationWithOwner, error) {
	app, err := s.appRepo.GetWithOwner(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !role.IsStaff() && app.UserID != userID {
		return nil, ErrForbidden
	}

	return app, nil
}
