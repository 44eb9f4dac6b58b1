package receipt

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/polkiloo/digistore/internal/domain/model"
)

const currency = "DZD"

// Generator renders order receipts as PDF files under a directory.
type Generator struct {
	dir       string
	storeName string
	support   string
	now       func() time.Time
	logger    *slog.Logger
}

// NewGenerator constructs Generator.
func NewGenerator(dir, storeName, support string, logger *slog.Logger) *Generator {
	return &Generator{dir: dir, storeName: storeName, support: support, now: time.Now, logger: logger}
}

// Generate writes receipt_<id>.pdf and returns its path. An existing receipt
// for the same order is replaced.
func (g *Generator) Generate(ctx context.Context, order *model.OrderDetails) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("create receipt dir: %w", err)
	}

	pdf := g.render(order)
	if err := pdf.Error(); err != nil {
		return "", fmt.Errorf("render receipt: %w", err)
	}

	path := filepath.Join(g.dir, fmt.Sprintf("receipt_%d.pdf", order.ID))
	tmp, err := os.CreateTemp(g.dir, ".receipt-*.pdf")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if err := pdf.Output(tmp); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write receipt: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}

	g.logger.Info("receipt generated", slog.Int64("order_id", order.ID), slog.String("path", path))
	return path, nil
}

func (g *Generator) render(order *model.OrderDetails) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Receipt #%d", order.ID), true)
	pdf.SetAuthor(g.storeName, true)
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTextColor(44, 62, 80)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 12, tr(g.storeName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, "RECEIPT", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	issued := g.now()
	if order.ConfirmedAt != nil {
		issued = *order.ConfirmedAt
	}

	section(pdf, "Order Information")
	row(pdf, tr, "Order ID:", fmt.Sprintf("#%d", order.ID))
	row(pdf, tr, "Date:", issued.Format("January 02, 2006 at 03:04 PM"))
	row(pdf, tr, "Status:", strings.ToUpper(string(model.OrderStatusConfirmed)))
	pdf.Ln(4)

	section(pdf, "Customer Information")
	row(pdf, tr, "Name:", order.BuyerName)
	row(pdf, tr, "Email:", orNotProvided(order.Email))
	row(pdf, tr, "Phone:", orNotProvided(order.Phone))
	telegram := ""
	if order.TelegramUsername != "" {
		telegram = "@" + strings.TrimPrefix(order.TelegramUsername, "@")
	}
	row(pdf, tr, "Telegram:", orNotProvided(telegram))
	pdf.Ln(4)

	section(pdf, "Order Summary")
	price := order.Product.Price.StringFixed(2) + " " + currency
	pdf.SetFillColor(52, 73, 94)
	pdf.SetTextColor(245, 245, 245)
	pdf.SetDrawColor(189, 195, 199)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(95, 9, "Product", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 9, "Quantity", "1", 0, "C", true, 0, "")
	pdf.CellFormat(49, 9, "Price", "1", 1, "C", true, 0, "")
	pdf.SetTextColor(44, 62, 80)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(95, 9, tr(order.Product.Name), "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 9, "1", "1", 0, "C", false, 0, "")
	pdf.CellFormat(49, 9, price, "1", 1, "R", false, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(39, 174, 96)
	pdf.CellFormat(125, 9, "Total Amount:", "", 0, "R", false, 0, "")
	pdf.CellFormat(49, 9, price, "", 1, "R", false, 0, "")
	pdf.SetTextColor(44, 62, 80)
	pdf.Ln(4)

	section(pdf, "Payment")
	row(pdf, tr, "Method:", strings.ToUpper(string(order.PaymentMethod)))
	row(pdf, tr, "Transaction ID:", orNotProvided(order.TransactionID))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 5, tr(fmt.Sprintf("Thank you for your purchase from %s. For any questions about this order contact %s.", g.storeName, g.support)), "", "C", false)
	return pdf
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func row(pdf *fpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(45, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
}

func orNotProvided(v string) string {
	if v == "" {
		return "Not provided"
	}
	return v
}
