// Package export renders back-office spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/chanthanathaicook/backend/internal/history"
)

const ordersSheet = "Commandes"

var orderHeader = []string{
	"N° commande", "Client", "Email", "Date de commande", "Retrait souhaité",
	"Statut", "Paiement", "Moyen de paiement", "Livraison", "Événement", "Articles", "Total (€)",
}

// WriteOrders writes one row per order to w as an XLSX workbook.
func WriteOrders(w io.Writer, orders []history.OrderView) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	header := make([]any, len(orderHeader))
	for i, h := range orderHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(ordersSheet, "A1", &header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(orderHeader), 1)
	if err := f.SetCellStyle(ordersSheet, "A1", last, bold); err != nil {
		return err
	}

	for i, o := range orders {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		total, _ := o.Total.Round(2).Float64()
		row := []any{
			o.ID, clientName(o), clientEmail(o), deref(o.PlacedAt), deref(o.PickupAt),
			deref(o.Status), deref(o.PaymentStatus), o.PaymentMeans, deref(o.DeliveryType),
			deref(o.EventName), itemsSummary(o), total,
		}
		if err := f.SetSheetRow(ordersSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(ordersSheet, "A", "L", 20); err != nil {
		return err
	}
	return f.Write(w)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func clientName(o history.OrderView) string {
	if o.Client == nil {
		return ""
	}
	return strings.TrimSpace(deref(o.Client.FirstName) + " " + deref(o.Client.LastName))
}

func clientEmail(o history.OrderView) string {
	if o.Client == nil {
		return ""
	}
	return deref(o.Client.Email)
}

// itemsSummary lists "2 x Pad Thaï, 1 x Riz gluant".
func itemsSummary(o history.OrderView) string {
	parts := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		name := deref(it.DishName)
		switch {
		case it.Extra != nil:
			name = it.Extra.Name
		case name == "" && it.Dish != nil:
			name = it.Dish.Name
		}
		parts = append(parts, fmt.Sprintf("%d x %s", it.Quantity, name))
	}
	return strings.Join(parts, ", ")
}
