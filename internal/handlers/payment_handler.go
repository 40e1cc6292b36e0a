package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/genmacebiz/permit-portal-backend/internal/database"
	"github.com/genmacebiz/permit-portal-backend/internal/middleware"
	"github.com/genmacebiz/permit-portal-backend/internal/models"
	"github.com/genmacebiz/permit-portal-backend/internal/services"
)

// PaymentHandler handles fee settlement and payment lookups
type PaymentHandler struct {
	issuerSvc   *services.IssuerService
	paymentRepo *database.PaymentRepository
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(issuerSvc *services.IssuerService, paymentRepo *database.PaymentRepository) *PaymentHandler {
	return &PaymentHandler{
		issuerSvc:   issuerSvc,
		paymentRepo: paymentRepo,
	}
}

// Record records a completed payment and issues the permit
// POST /api/v1/payments
func (h *PaymentHandler) Record(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	payment, app, err := h.issuerSvc.RecordPayment(userCtx.UserID, userCtx.Role, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"payment":     payment,
		"application": app,
	})
}

// Status returns the latest payment for an application, if any
// GET /api/v1/payments/application/:id
func (h *PaymentHandler) Status(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := applicationID(c)
	if !ok {
		return
	}

	payment, err := h.issuerSvc.PaymentStatus(userCtx.UserID, userCtx.Role, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if payment == nil {
		c.JSON(http.StatusOK, gin.H{"paid": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"paid":    payment.Status == models.PaymentStatusCompleted,
		"payment": payment,
	})
}

// List returns every recorded payment (staff review)
// GET /api/v1/payments
func (h *PaymentHandler) List(c *gin.Context) {
	payments, err := h.paymentRepo.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}

// CreateIntent registers a card-payment intent with the gateway
// POST /api/v1/payments/intent
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	intent, err := h.issuerSvc.CreateIntent(userCtx.UserID, userCtx.Role, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"client_secret": intent.ClientSecret,
		"intent_id":     intent.ID,
	})
}
