// Package receipt renders a saved bill into a paginated PDF document.
package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"storebill/backend/internal/domain"
)

const title = "Store Billing Receipt"

// Render formats the bill as a PDF: a centered title, the customer header
// lines, one table row per line item and a trailing total. Page breaks and
// page numbers are handled by the document engine.
func Render(bill domain.Bill) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		col.New(12).Add(
			text.New(title, props.Text{
				Size:  18,
				Style: fontstyle.Bold,
				Align: align.Center,
			}),
		),
	)

	addHeaderLine(m, fmt.Sprintf("Customer: %s", bill.Username))
	addHeaderLine(m, fmt.Sprintf("Phone: %s", bill.PhoneNumber))
	addHeaderLine(m, fmt.Sprintf("Date: %s", bill.Date))

	m.AddRow(4, line.NewCol(12))

	m.AddRow(8,
		headerCol(4, "Product"),
		headerCol(2, "Price per Quantity"),
		headerCol(2, "Price per Kg"),
		headerCol(2, "Quantity"),
		headerCol(2, "Total Price"),
	)
	m.AddRow(2, line.NewCol(12))

	for _, item := range bill.CartItems {
		m.AddRow(7,
			cellCol(4, item.Product, align.Left),
			cellCol(2, item.PricePerQuantity, align.Right),
			cellCol(2, item.PricePerKg, align.Right),
			cellCol(2, formatQuantity(item.Quantity), align.Right),
			cellCol(2, fmt.Sprintf("%.2f", item.TotalPrice), align.Right),
		)
	}

	m.AddRow(3, line.NewCol(12))
	m.AddRow(8,
		col.New(8),
		col.New(4).Add(
			text.New(fmt.Sprintf("Total Amount: %.2f", bill.TotalAmount), props.Text{
				Size:  12,
				Style: fontstyle.Bold,
				Align: align.Right,
			}),
		),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate receipt: %w", err)
	}
	return doc.GetBytes(), nil
}

// FileName builds the download name for a rendered receipt,
// {customer}_bill_{unix_ms}.pdf.
func FileName(bill domain.Bill, at time.Time) string {
	customer := strings.TrimSpace(bill.Username)
	customer = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, customer)
	return fmt.Sprintf("%s_bill_%d.pdf", customer, at.UnixMilli())
}

func addHeaderLine(m core.Maroto, value string) {
	m.AddRow(6,
		col.New(12).Add(
			text.New(value, props.Text{Size: 12}),
		),
	)
}

func headerCol(size int, label string) core.Col {
	return col.New(size).Add(
		text.New(label, props.Text{
			Size:  10,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
}

func cellCol(size int, value string, alignment align.Type) core.Col {
	return col.New(size).Add(
		text.New(value, props.Text{
			Size:  9,
			Align: alignment,
		}),
	)
}

func formatQuantity(qty float64) string {
	if qty == float64(int64(qty)) {
		return fmt.Sprintf("%d", int64(qty))
	}
	return fmt.Sprintf("%g", qty)
}
