package invoice

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX документ счёта: шапка, позиции, итоги и оплаты.
func ExportXLSX(inv Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, "Invoice"); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	sheet = "Invoice"

	rows := [][]interface{}{
		{"Invoice", inv.Number},
		{"Supplier", inv.Supplier},
		{"Address", inv.Address},
		{"Issued", inv.IssueDate.Format("2006-01-02")},
		{"Due", inv.DueDate.Format("2006-01-02")},
		{},
		{"description", "quantity", "unit", "unit_price", "amount"},
	}
	for _, it := range inv.Items {
		rows = append(rows, []interface{}{it.Description, it.Quantity, it.Unit, it.UnitPrice.String(), it.Amount().String()})
	}
	rows = append(rows,
		[]interface{}{},
		[]interface{}{"Subtotal", "", "", "", inv.Subtotal().String()},
		[]interface{}{"Tax", "", "", "", inv.Tax().String()},
		[]interface{}{"Total", "", "", "", inv.Total().String()},
		[]interface{}{"Paid", "", "", "", inv.Paid().String()},
		[]interface{}{"Balance", "", "", "", inv.Balance().String()},
	)
	if len(inv.Payments) > 0 {
		rows = append(rows, []interface{}{}, []interface{}{"payment_date", "amount", "method", "note"})
		for _, p := range inv.Payments {
			rows = append(rows, []interface{}{p.Date.Format("2006-01-02"), p.Amount.String(), p.Method, p.Note})
		}
	}

	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
