package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/genmacebiz/permit-portal-backend/internal/database"
	"github.com/genmacebiz/permit-portal-backend/internal/models"
	"github.com/genmacebiz/permit-portal-backend/internal/notify"
	"github.com/genmacebiz/permit-portal-backend/pkg/storage"
)

// IssuerService settles permit fees and issues permits. A successful payment
// against an approved application renders the permit PDF, stores it, and
// moves the application to permit_issued in one pass.
type IssuerService struct {
	appRepo     *database.ApplicationRepository
	paymentRepo *database.PaymentRepository
	renderer    *PermitRenderer
	storage     storage.FileStorage
	gateway     *CardGateway
	dispatcher  notify.Dispatcher
	logger      *logrus.Logger
}

// NewIssuerService creates a new IssuerService
func NewIssuerService(
	appRepo *database.ApplicationRepository,
	paymentRepo *database.PaymentRepository,
	renderer *PermitRenderer,
	fileStorage storage.FileStorage,
	gateway *CardGateway,
	dispatcher notify.Dispatcher,
	logger *logrus.Logger,
) *IssuerService {
	return &IssuerService{
		appRepo:     appRepo,
		paymentRepo: paymentRepo,
		renderer:    renderer,
		storage:     fileStorage,
		gateway:     gateway,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// RecordPayment records a completed payment for an approved application and
// issues the permit. Manual payments without an upstream transaction id are
// minted a MANUAL- reference. The permit file is written before the issued
// state is committed, so an application is never marked issued without a
// retrievable permit.
func (s *IssuerService) RecordPayment(ownerID int64, role models.Role, req *models.RecordPaymentRequest) (*models.Payment, *models.Application, error) {
	app, err := s.appRepo.GetWithOwner(req.ApplicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	if !role.IsStaff() && app.UserID != ownerID {
		return nil, nil, ErrForbidden
	}

	if app.Status != models.StatusApproved && app.Status != models.StatusPermitIssued {
		return nil, nil, ErrNotApproved
	}

	transactionID := req.TransactionID
	if transactionID == "" {
		transactionID = "MANUAL-" + uuid.NewString()
	}

	payment, err := s.paymentRepo.Create(req.ApplicationID, req.Amount, models.PaymentStatusCompleted, transactionID)
	if err != nil {
		return nil, nil, err
	}

	issuedAt := time.Now()
	pdfBytes, err := s.renderer.Render(&app.Application, app.OwnerName, issuedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate permit: %w", err)
	}

	fileName := fmt.Sprintf("permits/permit_%d.pdf", app.ID)
	permitPath, err := s.storage.Save(fileName, pdfBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to store permit: %w", err)
	}

	if err := s.appRepo.MarkIssued(app.ID, permitPath); err != nil {
		return nil, nil, err
	}

	updated, err := s.appRepo.GetByID(app.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"application_id": app.ID,
		"payment_id":     payment.ID,
		"transaction_id": transactionID,
		"amount":         payment.Amount,
		"permit_file":    permitPath,
	}).Info("Payment recorded and permit issued")

	s.dispatcher.NotifyOwner(app.UserID, notify.Event{
		Type:          notify.EventPermitIssued,
		Message:       fmt.Sprintf("Payment received. Your business permit for %s has been issued.", app.BusinessName),
		ApplicationID: app.ID,
		Status:        string(models.StatusPermitIssued),
	})
	s.dispatcher.NotifyStaff(notify.Event{
		Type:          notify.EventPaymentReceived,
		Message:       fmt.Sprintf("Payment of PHP %.2f received for %s", payment.Amount, app.BusinessName),
		ApplicationID: app.ID,
		Status:        string(models.StatusPermitIssued),
	})

	return payment, updated, nil
}

// PaymentStatus returns the latest payment for an application, if any.
// Owners may only query their own applications.
func (s *IssuerService) PaymentStatus(ownerID int64, role models.Role, applicationID int64) (*models.Payment, error) {
	app, err := s.appRepo.GetByID(applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !role.IsStaff() && app.UserID != ownerID {
		return nil, ErrForbidden
	}

	payment, err := s.paymentRepo.GetLatestByApplication(applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return payment, nil
}

// CreateIntent registers a card-payment intent for an approved application.
func (s *IssuerService) CreateIntent(ownerID int64, role models.Role, req *models.CreateIntentRequest) (*PaymentIntent, error) {
	app, err := s.appRepo.GetByID(req.ApplicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !role.IsStaff() && app.UserID != ownerID {
		return nil, ErrForbidden
	}

	if app.Status != models.StatusApproved {
		return nil, ErrNotApproved
	}

	return s.gateway.CreateIntent(req.ApplicationID, req.Amount)
}
