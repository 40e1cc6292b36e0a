package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/genmacebiz/permit-portal-backend/internal/database"
	"github.com/genmacebiz/permit-portal-backend/internal/middleware"
	"github.com/genmacebiz/permit-portal-backend/internal/models"
)

const (
	staffRecentLimit = 10
	ownerRecentLimit = 5
)

// DashboardHandler serves the aggregated counters behind the portal
// dashboards.
type DashboardHandler struct {
	appRepo  *database.ApplicationRepository
	userRepo *database.UserRepository
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(appRepo *database.ApplicationRepository, userRepo *database.UserRepository) *DashboardHandler {
	return &DashboardHandler{
		appRepo:  appRepo,
		userRepo: userRepo,
	}
}

// Overview returns the staff dashboard counters
// GET /api/v1/dashboard/overview
func (h *DashboardHandler) Overview(c *gin.Context) {
	stats := models.OverviewStats{}
	var err error

	if stats.TotalApplications, err = h.appRepo.Count(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	if stats.PendingApplications, err = h.appRepo.CountByStatus(models.StatusPending); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	if stats.ApprovedApplications, err = h.appRepo.CountByStatus(models.StatusApproved); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	if stats.RejectedApplications, err = h.appRepo.CountByStatus(models.StatusRejected); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	if stats.PermitIssuedApplications, err = h.appRepo.CountByStatus(models.StatusPermitIssued); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	if stats.TotalBusinessOwners, err = h.userRepo.CountByRole(models.RoleOwner); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Recent returns the latest applications across all owners (staff)
// GET /api/v1/dashboard/recent
func (h *DashboardHandler) Recent(c *gin.Context) {
	apps, err := h.appRepo.Recent(staffRecentLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent applications"})
		return
	}

	c.JSON(http.StatusOK, apps)
}

// Owner returns the authenticated owner's dashboard: counters, the
// per-month chart and their latest applications.
// GET /api/v1/dashboard/owner
func (h *DashboardHandler) Owner(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	stats, err := h.appRepo.OwnerStats(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	chart, err := h.appRepo.MonthlyChart(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute chart"})
		return
	}

	recent, err := h.appRepo.RecentByOwner(userCtx.UserID, ownerRecentLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":  stats,
		"chart":  chart,
		"recent": recent,
	})
}
