package documents

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/mycoledger/mycoledger/internal/shared"
)

// PDFContentType is the MIME type of rendered documents.
const PDFContentType = "application/pdf"

// Filename is the attachment name of a rendered view.
func Filename(v View) string {
	return fmt.Sprintf("%s-%s.pdf", strings.ToLower(string(v.Type)), v.InvoiceID)
}

// RenderPDF lays the view out on an A4 page.
func RenderPDF(v View) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// Header band
	r, g, b := hexColor(v.AccentColor)
	pdf.SetFillColor(r, g, b)
	pdf.Rect(0, 0, pageW, 42, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(15, 12)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(contentW/2, 10, tr(v.Title), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW/2, 8, tr(v.Company.Name), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetX(15)
	pdf.CellFormat(contentW/2, 6, tr(v.Subtitle), "", 0, "L", false, 0, "")
	for i, line := range v.Company.Address {
		if i > 0 {
			pdf.SetX(15 + contentW/2)
		}
		pdf.CellFormat(contentW/2, 5, tr(line), "", 1, "R", false, 0, "")
	}
	pdf.SetTextColor(30, 41, 59)
	pdf.SetY(50)

	// Party and dates
	top := pdf.GetY()
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW/2, 5, strings.ToUpper(v.Party.Label), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW/2, 8, tr(v.Party.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range []string{v.Party.Email, v.Party.Phone} {
		if line != "" {
			pdf.CellFormat(contentW/2, 5, tr(line), "", 1, "L", false, 0, "")
		}
	}
	bottom := pdf.GetY()
	pdf.SetXY(15+contentW/2, top)
	pdf.CellFormat(contentW/2, 5, "Date: "+v.Date.Format("02 Jan 2006"), "", 2, "R", false, 0, "")
	if v.ValidUntil != nil {
		pdf.CellFormat(contentW/2, 5, "Valid Until: "+v.ValidUntil.Format("02 Jan 2006"), "", 2, "R", false, 0, "")
	}
	if pdf.GetY() > bottom {
		bottom = pdf.GetY()
	}
	pdf.SetY(bottom + 8)

	// Lines
	itemW, qtyW, priceW := contentW*0.5, contentW*0.14, contentW*0.18
	if !v.ShowPrices {
		itemW, qtyW = contentW*0.8, contentW*0.2
	}
	pdf.SetFillColor(248, 250, 252)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(itemW, 7, "ITEM", "B", 0, "L", true, 0, "")
	if v.ShowPrices {
		pdf.CellFormat(qtyW, 7, "QTY", "B", 0, "C", true, 0, "")
		pdf.CellFormat(priceW, 7, "PRICE", "B", 0, "R", true, 0, "")
		pdf.CellFormat(priceW, 7, "TOTAL", "B", 1, "R", true, 0, "")
	} else {
		pdf.CellFormat(qtyW, 7, "QTY", "B", 1, "C", true, 0, "")
	}
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range v.Lines {
		label := line.Item
		if line.Packaging != "" {
			label += " (" + line.Packaging + ")"
		}
		pdf.CellFormat(itemW, 7, tr(label), "", 0, "L", false, 0, "")
		if v.ShowPrices {
			pdf.CellFormat(qtyW, 7, strconv.Itoa(line.Quantity), "", 0, "C", false, 0, "")
			pdf.CellFormat(priceW, 7, FormatMoney(line.UnitPrice), "", 0, "R", false, 0, "")
			pdf.CellFormat(priceW, 7, FormatMoney(line.LineTotal), "", 1, "R", false, 0, "")
		} else {
			pdf.CellFormat(qtyW, 7, strconv.Itoa(line.Quantity), "", 1, "C", false, 0, "")
		}
	}
	pdf.Ln(4)

	// Footer
	if v.Total != nil {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(contentW*0.7, 9, "Total", "T", 0, "R", false, 0, "")
		pdf.CellFormat(contentW*0.3, 9, shared.FormatAmountGrouped(*v.Total), "T", 1, "R", false, 0, "")
	}
	if v.PaymentTerms != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(contentW, 5, tr("Payment terms: "+v.PaymentTerms), "", "L", false)
	}
	if v.PaidMarker != "" {
		pdf.Ln(6)
		pdf.SetTextColor(22, 163, 74)
		pdf.SetDrawColor(22, 163, 74)
		pdf.SetFont("Helvetica", "B", 16)
		pdf.SetX(15 + contentW - 60)
		pdf.CellFormat(60, 12, v.PaidMarker, "1", 1, "C", false, 0, "")
		pdf.SetTextColor(30, 41, 59)
	}
	if v.Signature != nil {
		pdf.Ln(24)
		y := pdf.GetY()
		half := contentW/2 - 10
		pdf.Line(15, y, 15+half, y)
		pdf.Line(15+contentW-half, y, 15+contentW, y)
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW-half, 5, "AUTHORIZED SIGNATURE", "", 0, "L", false, 0, "")
		pdf.CellFormat(half, 5, "RECEIVED BY", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW-half, 5, tr(v.Signature.AuthorizedBy), "", 0, "L", false, 0, "")
		pdf.CellFormat(half, 5, tr(v.Signature.ReceivedBy), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render %s: %w", v.Type, err)
	}
	return buf.Bytes(), nil
}

// SavePDF writes rendered bytes under dir and returns the file path.
func SavePDF(dir string, v View, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	path := filepath.Join(dir, Filename(v))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return path, nil
}

func hexColor(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 30, 41, 59
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 30, 41, 59
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
