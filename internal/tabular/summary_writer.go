package tabular

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"sampletrack/internal/model"
)

// SummaryColumn binds one report header to the AggregateRow field it
// renders.
type SummaryColumn struct {
	Header string
	Value  func(model.AggregateRow) interface{}
}

// ABMColumns is the per-ABM summary layout used in ZBM reports.
func ABMColumns() []SummaryColumn {
	return append([]SummaryColumn{
		{"Area Name", func(r model.AggregateRow) interface{} { return r.Key }},
		{"ABM Name", func(r model.AggregateRow) interface{} { return r.Name }},
		{"# Unique HCPs", func(r model.AggregateRow) interface{} { return r.UniqueDoctors }},
	}, countColumns()...)
}

// ZBMColumns is the per-ZBM summary layout used in Division reports.
func ZBMColumns() []SummaryColumn {
	return append([]SummaryColumn{
		{"ZBM Code", func(r model.AggregateRow) interface{} { return r.Key }},
		{"ZBM Name", func(r model.AggregateRow) interface{} { return r.Name }},
		{"# Unique TBMs", func(r model.AggregateRow) interface{} { return r.UniqueTBMs }},
		{"# Unique HCPs", func(r model.AggregateRow) interface{} { return r.UniqueDoctors }},
	}, countColumns()...)
}

// countColumns is the tally block shared by every summary layout.
func countColumns() []SummaryColumn {
	return []SummaryColumn{
		{"# Requests Raised", func(r model.AggregateRow) interface{} { return r.Total }},
		{"Request Cancelled Out of Stock", func(r model.AggregateRow) interface{} { return r.Cancelled }},
		{"Action Pending at HO", func(r model.AggregateRow) interface{} { return r.ActionPendingHO }},
		{"Sent to HUB", func(r model.AggregateRow) interface{} { return r.SentToHub }},
		{"Pending for Invoicing", func(r model.AggregateRow) interface{} { return r.PendingInvoicing }},
		{"Pending for Dispatch", func(r model.AggregateRow) interface{} { return r.PendingDispatch }},
		{"Requests Dispatched", func(r model.AggregateRow) interface{} { return r.Dispatched }},
		{"Delivered", func(r model.AggregateRow) interface{} { return r.Delivered }},
		{"Dispatched & In Transit", func(r model.AggregateRow) interface{} { return r.InTransit }},
		{"RTO", func(r model.AggregateRow) interface{} { return r.RTO }},
		{"Incomplete Address", func(r model.AggregateRow) interface{} { return r.IncompleteAddress }},
		{"Doctor Refused to Accept", func(r model.AggregateRow) interface{} { return r.DoctorRefused }},
		{"Doctor Non Contactable", func(r model.AggregateRow) interface{} { return r.DoctorNonContactable }},
		{"Hold Delivery", func(r model.AggregateRow) interface{} { return r.HoldDelivery }},
	}
}

// SummaryWriter renders aggregate rows into a summary workbook. When a
// template is configured and readable its sheet formatting is preserved
// and only the data region is rewritten; otherwise a fresh styled sheet
// is generated.
type SummaryWriter struct {
	TemplatePath string
	SheetName    string
}

// Write renders rows under the given title and saves the workbook at
// outPath.
func (w *SummaryWriter) Write(title string, columns []SummaryColumn, rows []model.AggregateRow, outPath string) error {
	if f, headerRow, ok := w.openTemplate(columns); ok {
		defer f.Close()
		if err := w.fillTemplate(f, headerRow, columns, rows); err != nil {
			return err
		}
		return f.SaveAs(outPath)
	}

	f, err := w.buildFresh(title, columns, rows)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(outPath)
}

// openTemplate opens the configured template and locates the header row
// by scanning for the layout's first header text. Any failure falls back
// to fresh generation.
func (w *SummaryWriter) openTemplate(columns []SummaryColumn) (*excelize.File, int, bool) {
	if w.TemplatePath == "" {
		return nil, 0, false
	}
	if _, err := os.Stat(w.TemplatePath); err != nil {
		return nil, 0, false
	}
	f, err := excelize.OpenFile(w.TemplatePath)
	if err != nil {
		return nil, 0, false
	}

	sheet := w.sheet(f)
	rows, err := f.GetRows(sheet)
	if err != nil {
		f.Close()
		return nil, 0, false
	}
	for i, row := range rows {
		if i >= 15 {
			break
		}
		for _, cell := range row {
			if cell == columns[0].Header {
				return f, i + 1, true
			}
		}
	}
	f.Close()
	return nil, 0, false
}

func (w *SummaryWriter) sheet(f *excelize.File) string {
	if w.SheetName != "" {
		if idx, err := f.GetSheetIndex(w.SheetName); err == nil && idx >= 0 {
			return w.SheetName
		}
	}
	return f.GetSheetList()[0]
}

// fillTemplate clears the template's data region below the header row
// and writes the rows into it, bolding the Total row.
func (w *SummaryWriter) fillTemplate(f *excelize.File, headerRow int, columns []SummaryColumn, rows []model.AggregateRow) error {
	sheet := w.sheet(f)

	clearRows := len(rows) + 50
	for r := headerRow + 1; r <= headerRow+clearRows; r++ {
		for c := 1; c <= len(columns); c++ {
			cell, _ := excelize.CoordinatesToCellName(c, r)
			_ = f.SetCellValue(sheet, cell, nil)
		}
	}

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("total style: %w", err)
	}

	for i, row := range rows {
		r := headerRow + 1 + i
		for c, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(c+1, r)
			if err := f.SetCellValue(sheet, cell, col.Value(row)); err != nil {
				return fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
		if row.IsTotal {
			first, _ := excelize.CoordinatesToCellName(1, r)
			last, _ := excelize.CoordinatesToCellName(len(columns), r)
			_ = f.SetCellStyle(sheet, first, last, boldStyle)
		}
	}
	return nil
}

// buildFresh generates a styled workbook from scratch: title cell,
// shaded header row, data rows, bold Total.
func (w *SummaryWriter) buildFresh(title string, columns []SummaryColumn, rows []model.AggregateRow) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Summary"
	f.SetSheetName(f.GetSheetList()[0], sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 10},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D3D3D3"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("total style: %w", err)
	}

	_ = f.SetCellValue(sheet, "A1", title)
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	if err == nil {
		_ = f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	}

	const headerRow = 3
	for c, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(c+1, headerRow)
		if err := f.SetCellValue(sheet, cell, col.Header); err != nil {
			return nil, fmt.Errorf("write header %q: %w", col.Header, err)
		}
		width := float64(len(col.Header))
		if width < 12 {
			width = 12
		}
		name, _ := excelize.ColumnNumberToName(c + 1)
		_ = f.SetColWidth(sheet, name, name, width+2)
	}
	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	last, _ := excelize.CoordinatesToCellName(len(columns), headerRow)
	_ = f.SetCellStyle(sheet, first, last, headerStyle)

	for i, row := range rows {
		r := headerRow + 1 + i
		for c, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(c+1, r)
			if err := f.SetCellValue(sheet, cell, col.Value(row)); err != nil {
				return nil, fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
		if row.IsTotal {
			rowFirst, _ := excelize.CoordinatesToCellName(1, r)
			rowLast, _ := excelize.CoordinatesToCellName(len(columns), r)
			_ = f.SetCellStyle(sheet, rowFirst, rowLast, boldStyle)
		}
	}
	return f, nil
}
