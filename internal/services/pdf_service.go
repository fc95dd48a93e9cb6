// internal/services/pdf_service.go
package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/innovatech/storefront-backend/internal/models"
)

// PDFService renders purchase invoices for email attachment and download.
type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// RenderInvoice produces a single-page A4 invoice for a purchase. Line
// items must be preloaded with their products.
func (s *PDFService) RenderInvoice(purchase *models.Purchase, customer *models.Customer) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Invoice %s", purchase.ID), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "InnovaTech")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Purchase Invoice")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, fmt.Sprintf("Invoice: %s", purchase.ID))
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("Date: %s", purchase.PurchasedAt.Format("2006-01-02 15:04 MST")))
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("Customer: %s (%s)", customer.FullName, customer.Email))
	pdf.Ln(10)

	// Line item table header
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(90, 7, "Product", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 7, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, "Subtotal", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range purchase.Items {
		name := item.Product.Name
		if name == "" {
			name = item.ProductID.String()
		}
		pdf.CellFormat(90, 7, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, formatMoney(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, formatMoney(item.Subtotal), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	s.totalRow(pdf, "Subtotal", purchase.Subtotal, false)
	s.totalRow(pdf, "Tax", purchase.Tax, false)
	if purchase.DiscountAmount.IsPositive() {
		label := "Discount"
		if purchase.CouponCode != nil {
			label = fmt.Sprintf("Discount (%s)", *purchase.CouponCode)
		}
		s.totalRow(pdf, label, purchase.DiscountAmount.Neg(), false)
	}
	s.totalRow(pdf, "Total", purchase.Total, true)

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 5, "Thank you for shopping with InnovaTech.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *PDFService) totalRow(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal, bold bool) {
	if bold {
		pdf.SetFont("Helvetica", "B", 10)
	} else {
		pdf.SetFont("Helvetica", "", 10)
	}
	pdf.CellFormat(145, 6, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, formatMoney(amount), "", 1, "R", false, 0, "")
}

func formatMoney(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}
