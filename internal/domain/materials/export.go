package materials

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []interface{}{
	"id",
	"name",
	"unit",
	"quantity",
	"supplier",
	"received_date",
	"description",
}

// ExportXLSX выгружает записи в том порядке, в каком они переданы.
func ExportXLSX(items []Material) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, m := range items {
		row := []interface{}{
			m.ID,
			m.Name,
			string(m.Unit),
			m.Quantity.InexactFloat64(),
			m.Supplier,
			m.ReceivedDate.Format("2006-01-02"),
			m.Description,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
