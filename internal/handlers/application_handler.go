package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/genmacebiz/permit-portal-backend/internal/database"
	"github.com/genmacebiz/permit-portal-backend/internal/middleware"
	"github.com/genmacebiz/permit-portal-backend/internal/models"
	"github.com/genmacebiz/permit-portal-backend/internal/services"
)

// ApplicationHandler handles the permit application endpoints
type ApplicationHandler struct {
	lifecycleSvc *services.LifecycleService
	appRepo      *database.ApplicationRepository
	actionRepo   *database.StaffActionRepository
}

// NewApplicationHandler creates a new ApplicationHandler
func NewApplicationHandler(
	lifecycleSvc *services.LifecycleService,
	appRepo *database.ApplicationRepository,
	actionRepo *database.StaffActionRepository,
) *ApplicationHandler {
	return &ApplicationHandler{
		lifecycleSvc: lifecycleSvc,
		appRepo:      appRepo,
		actionRepo:   actionRepo,
	}
}

func applicationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application id"})
		return 0, false
	}
	return id, true
}

// writeServiceError maps service sentinel errors to HTTP responses
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "Status change not allowed from the current state"})
	case errors.Is(err, services.ErrRemarksRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Remarks are required when rejecting an application"})
	case errors.Is(err, services.ErrNegativeFee):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fee must not be negative"})
	case errors.Is(err, services.ErrNotApproved):
		c.JSON(http.StatusConflict, gin.H{"error": "Application must be approved before payment"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// Create submits a new application for the authenticated owner
// POST /api/v1/applications
func (h *ApplicationHandler) Create(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	app, err := h.lifecycleSvc.Submit(userCtx.UserID, userCtx.Name, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit application"})
		return
	}

	c.JSON(http.StatusCreated, app)
}

// List returns applications: staff see every application with owner names,
// owners see only their own.
// GET /api/v1/applications
func (h *ApplicationHandler) List(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if userCtx.Role.IsStaff() {
		apps, err := h.appRepo.ListAll()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
			return
		}
		c.JSON(http.StatusOK, apps)
		return
	}

	apps, err := h.appRepo.ListByOwner(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}
	c.JSON(http.StatusOK, apps)
}

// Get returns one application
// GET /api/v1/applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := applicationID(c)
	if !ok {
		return
	}

	app, err := h.lifecycleSvc.Get(userCtx.UserID, userCtx.Role, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// Update edits an application. An owner edit resets it to pending for
// re-review; a staff or admin edit keeps the current status.
// PUT /api/v1/applications/:id
func (h *ApplicationHandler) Update(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := applicationID(c)
	if !ok {
		return
	}

	var req models.UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	var app *models.Application
	var err error
	if userCtx.Role.IsStaff() {
		app, err = h.lifecycleSvc.StaffUpdate(userCtx.UserID, id, &req)
	} else {
		app, err = h.lifecycleSvc.OwnerUpdate(userCtx.UserID, userCtx.Name, id, &req)
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// UpdateStatus applies a staff approval or rejection
// PUT /api/v1/applications/:id/status
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := applicationID(c)
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	app, err := h.lifecycleSvc.Decide(userCtx.UserID, id, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// Delete removes an application
// DELETE /api/v1/applications/:id
func (h *ApplicationHandler) Delete(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := applicationID(c)
	if !ok {
		return
	}

	if err := h.lifecycleSvc.Delete(userCtx.UserID, userCtx.Role, id); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Application deleted"})
}

// Actions returns the staff decision trail for an application
// GET /api/v1/applications/:id/actions
func (h *ApplicationHandler) Actions(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := applicationID(c)
	if !ok {
		return
	}

	// Ownership check rides on the same rules as viewing the application.
	if _, err := h.lifecycleSvc.Get(userCtx.UserID, userCtx.Role, id); err != nil {
		writeServiceError(c, err)
		return
	}

	actions, err := h.actionRepo.ListByApplication(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch actions"})
		return
	}

	c.JSON(http.StatusOK, actions)
}
