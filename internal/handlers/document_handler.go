package handlers

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/genmacebiz/permit-portal-backend/internal/database"
	"github.com/genmacebiz/permit-portal-backend/internal/middleware"
	"github.com/genmacebiz/permit-portal-backend/pkg/storage"
)

// maxDocumentSize caps uploaded supporting documents at 10 MB
const maxDocumentSize = 10 << 20

var allowedDocumentExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// DocumentHandler handles supplementary document uploads for applications
type DocumentHandler struct {
	documentRepo *database.DocumentRepository
	appRepo      *database.ApplicationRepository
	storage      storage.FileStorage
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentRepo *database.DocumentRepository, appRepo *database.ApplicationRepository, fileStorage storage.FileStorage) *DocumentHandler {
	return &DocumentHandler{
		documentRepo: documentRepo,
		appRepo:      appRepo,
		storage:      fileStorage,
	}
}

// checkAccess loads the application and verifies the caller may touch it
func (h *DocumentHandler) checkAccess(c *gin.Context, id int64) bool {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return false
	}

	app, err := h.appRepo.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
			return false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch application"})
		return false
	}

	if !userCtx.Role.IsStaff() && app.UserID != userCtx.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return false
	}

	return true
}

// Upload attaches a supporting document to an application
// POST /api/v1/applications/:id/documents
func (h *DocumentHandler) Upload(c *gin.Context) {
	id, ok := applicationID(c)
	if !ok {
		return
	}
	if !h.checkAccess(c, id) {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A file field is required"})
		return
	}
	if fileHeader.Size > maxDocumentSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds the 10MB limit"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedDocumentExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF and image files are accepted"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxDocumentSize+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}

	baseName := filepath.Base(fileHeader.Filename)
	storedName := fmt.Sprintf("documents/%d/%s", id, baseName)
	publicPath, err := h.storage.Save(storedName, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store document"})
		return
	}

	doc, err := h.documentRepo.Create(id, baseName, publicPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach document"})
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// List returns the supporting documents attached to an application
// GET /api/v1/applications/:id/documents
func (h *DocumentHandler) List(c *gin.Context) {
	id, ok := applicationID(c)
	if !ok {
		return
	}
	if !h.checkAccess(c, id) {
		return
	}

	docs, err := h.documentRepo.ListByApplication(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}

	c.JSON(http.StatusOK, docs)
}
