package services

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/genmacebiz/permit-portal-backend/internal/models"
)

// PermitRenderer produces the official business permit PDF for an approved
// and paid application. Rendering is pure: the caller persists the bytes.
type PermitRenderer struct {
	assetsDir string
}

// NewPermitRenderer creates a renderer. assetsDir may hold optional artwork
// (permit-bg.png, municipal-logo.png); missing files are tolerated.
func NewPermitRenderer(assetsDir string) *PermitRenderer {
	return &PermitRenderer{assetsDir: assetsDir}
}

// Render builds the permit document. The permit is valid for one year from
// the issue date.
func (r *PermitRenderer) Render(app *models.Application, ownerName string, issuedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Business Permit No. %d", app.ID), false)
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()

	if bg := r.assetPath("permit-bg.png"); bg != "" {
		pdf.ImageOptions(bg, 0, 0, pageWidth, pageHeight, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}
	if logo := r.assetPath("municipal-logo.png"); logo != "" {
		pdf.ImageOptions(logo, pageWidth/2-12.5, 18, 25, 25, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	pdf.SetY(48)
	pdf.SetFont("Times", "", 12)
	pdf.CellFormat(0, 6, "Republic of the Philippines", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Province of Eastern Samar", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Municipality of General MacArthur", "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Times", "B", 13)
	pdf.CellFormat(0, 7, "OFFICE OF THE MAYOR", "", 1, "C", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Times", "B", 22)
	pdf.CellFormat(0, 10, "BUSINESS PERMIT", "", 1, "C", false, 0, "")

	pdf.SetFont("Times", "I", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Permit No. %d  Series of %d", app.ID, issuedAt.Year()), "", 1, "C", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Times", "", 12)
	pdf.MultiCell(0, 6, "This is to certify that the business named below has complied with the requirements of this municipality and is hereby granted permission to operate within its territorial jurisdiction.", "", "C", false)

	pdf.Ln(6)
	r.field(pdf, "Business Name", app.BusinessName)
	r.field(pdf, "Business Type", app.BusinessType)
	r.field(pdf, "Owner", ownerName)
	r.field(pdf, "Address", app.Address)
	r.field(pdf, "Permit Fee", fmt.Sprintf("PHP %.2f", app.Fee))
	r.field(pdf, "Date Issued", issuedAt.Format("January 2, 2006"))
	r.field(pdf, "Valid Until", issuedAt.AddDate(1, 0, 0).Format("January 2, 2006"))

	pdf.Ln(14)
	pdf.SetFont("Times", "", 11)
	pdf.MultiCell(0, 6, "This permit is non-transferable and shall be displayed in a conspicuous place within the business premises. It is subject to revocation for violation of applicable ordinances.", "", "C", false)

	pdf.Ln(18)
	pdf.SetX(pageWidth - 90)
	pdf.SetFont("Times", "B", 12)
	pdf.CellFormat(70, 6, "MUNICIPAL MAYOR", "T", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render permit: %w", err)
	}

	return buf.Bytes(), nil
}

func (r *PermitRenderer) field(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetX(35)
	pdf.SetFont("Times", "B", 12)
	pdf.CellFormat(45, 8, label+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Times", "", 12)
	pdf.CellFormat(0, 8, value, "", 1, "L", false, 0, "")
}

func (r *PermitRenderer) assetPath(name string) string {
	if r.assetsDir == "" {
		return ""
	}
	path := filepath.Join(r.assetsDir, name)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
