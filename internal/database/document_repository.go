package database

import (
	"fmt"

	"github.com/genmacebiz/permit-portal-backend/internal/models"
)

// DocumentRepository handles database operations for the documents table
// (supplementary uploads, distinct from the three named document slots).
type DocumentRepository struct {
	db DB
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a document reference for an application
func (r *DocumentRepository) Create(applicationID int64, fileName, filePath string) (*models.Document, error) {
	query := `
		INSERT INTO documents (application_id, file_name, file_path)
		VALUES ($1, $2, $3)
		RETURNING id, application_id, file_name, file_path, uploaded_at
	`

	doc := &models.Document{}
	err := r.db.QueryRow(query, applicationID, fileName, filePath).Scan(
		&doc.ID, &doc.ApplicationID, &doc.FileName, &doc.FilePath, &doc.UploadedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to attach document: %w", err)
	}

	return doc, nil
}

// ListByApplication retrieves all documents attached to an application
func (r *DocumentRepository) ListByApplication(applicationID int64) ([]models.Document, error) {
	query := `
		SELECT id, application_id, file_name, file_path, uploaded_at
		FROM documents
		WHERE application_id = $1
		ORDER BY uploaded_at DESC
	`

	rows, err := r.db.Query(query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.ID, &doc.ApplicationID, &doc.FileName, &doc.FilePath, &doc.UploadedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}
