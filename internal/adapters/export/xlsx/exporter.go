// Package xlsx genera planillas del catálogo y de los pedidos.
package xlsx

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/phenrril/storefront/internal/domain"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	productHeader = []any{"ID", "Name", "Category", "Price", "Availability", "Sortiment", "Images", "Image"}
	orderHeader   = []any{"ID", "Created", "Status", "Customer", "Email", "Phone", "Shipping", "Payment", "Items", "Subtotal", "Shipping price", "Total", "Company", "ICO"}
)

type Exporter struct {
	Catalog domain.ProductRepo
	Sales   domain.OrderRepo
}

func (e *Exporter) WriteProducts(ctx context.Context, w io.Writer) error {
	list, err := e.Catalog.List(ctx, domain.ProductFilter{})
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	rows := make([][]any, 0, len(list))
	for _, p := range list {
		cat := ""
		if p.Category != nil {
			cat = p.Category.Name
		}
		tags := make([]string, 0, len(p.Sortiment))
		for _, s := range p.Sortiment {
			tags = append(tags, s.Slug)
		}
		rows = append(rows, []any{
			p.ID.String(), p.Name, cat, p.Price.InexactFloat64(), string(p.Availability),
			strings.Join(tags, ", "), len(p.Images), p.Image,
		})
	}
	return writeSheet(w, "Products", productHeader, rows, map[string]float64{"A": 38, "B": 36, "C": 22, "H": 40})
}

func (e *Exporter) WriteOrders(ctx context.Context, w io.Writer) error {
	list, err := e.Sales.List(ctx, "", 0)
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}
	rows := make([][]any, 0, len(list))
	for _, o := range list {
		items := 0
		for _, it := range o.Items {
			items += it.Quantity
		}
		name := strings.TrimSpace(o.Contact.FirstName + " " + o.Contact.LastName)
		company, ico := "", ""
		if o.IsCompany {
			company, ico = o.Company.Name, o.Company.ICO
		}
		rows = append(rows, []any{
			o.ID.String(), o.CreatedAt.Format("2006-01-02 15:04"), string(o.Status), name, o.Contact.Email,
			o.Contact.Phone, string(o.ShippingMethod), o.PaymentMethod, items,
			o.Subtotal.InexactFloat64(), o.ShippingPrice.InexactFloat64(), o.Total.InexactFloat64(), company, ico,
		})
	}
	return writeSheet(w, "Orders", orderHeader, rows, map[string]float64{"A": 38, "B": 18, "D": 26, "E": 30})
}

func writeSheet(w io.Writer, sheet string, header []any, rows [][]any, widths map[string]float64) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	for col, width := range widths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	return f.Write(w)
}
