package tabular

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"sampletrack/internal/model"
)

// consolidatedColumn binds one extract header to the raw-record field it
// renders. Final Status is injected from the classification.
type consolidatedColumn struct {
	header string
	value  func(*model.RawRecord) string
}

var consolidatedColumns = []consolidatedColumn{
	{"Assigned Request Ids", func(r *model.RawRecord) string { return r.RequestID }},
	{"Doctor: SAP Customer Code(New)", func(r *model.RawRecord) string { return r.DoctorSAPCode }},
	{"Doctor: Customer Code", func(r *model.RawRecord) string { return r.DoctorCode }},
	{"Doctor: Account Name", func(r *model.RawRecord) string { return r.DoctorName }},
	{"Item Code", func(r *model.RawRecord) string { return r.ItemCode }},
	{"SKU", func(r *model.RawRecord) string { return r.SKU }},
	{"Requested Quantity", func(r *model.RawRecord) string { return r.Quantity }},
	{"TBM Division", func(r *model.RawRecord) string { return r.Division }},
	{"AFFILIATE", func(r *model.RawRecord) string { return r.Affiliate }},
	{"DIV_NAME", func(r *model.RawRecord) string { return r.DivisionName }},
	{"Date", func(r *model.RawRecord) string { return r.Date }},
	{"Month", func(r *model.RawRecord) string { return r.Month }},
	{"Invoice #", func(r *model.RawRecord) string { return r.InvoiceNo }},
	{"Invoice Date", func(r *model.RawRecord) string { return r.InvoiceDate }},
	{"Dispatch Date", func(r *model.RawRecord) string { return r.DispatchDate }},
	{"Delivery Date", func(r *model.RawRecord) string { return r.DeliveryDate }},
	{"Docket Number", func(r *model.RawRecord) string { return r.DocketNumber }},
	{"Transporter Name", func(r *model.RawRecord) string { return r.TransporterName }},
	{"Request Status", func(r *model.RawRecord) string { return r.Status }},
	{"Rto Reason", func(r *model.RawRecord) string { return r.RTOReason }},
	{"Input Sample Request: Created By", func(r *model.RawRecord) string { return r.CreatedBy }},
	{"TBM HQ", func(r *model.RawRecord) string { return r.TBMHQ }},
	{"ABM Name", func(r *model.RawRecord) string { return r.ABMName }},
	{"ABM Terr Code", func(r *model.RawRecord) string { return r.ABMCode }},
	{"ZBM Terr Code", func(r *model.RawRecord) string { return r.ZBMCode }},
	{"ZBM Name", func(r *model.RawRecord) string { return r.ZBMName }},
}

// finalStatusHeader is appended after Request Status in the extract.
const finalStatusHeader = "Final Status"

// ConsolidatedWriter renders one entity's flat line-item extract: every
// raw row, pass-through columns, and the resolved final status.
type ConsolidatedWriter struct{}

// Write saves the extract for records at outPath. answers maps request
// ids to their resolved canonical answer.
func (w *ConsolidatedWriter) Write(records []model.RawRecord, answers map[string]string, outPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Consolidated Data"
	f.SetSheetName(f.GetSheetList()[0], sheet)

	ordered := make([]model.RawRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].ABMCode != ordered[j].ABMCode {
			return ordered[i].ABMCode < ordered[j].ABMCode
		}
		return ordered[i].RequestID < ordered[j].RequestID
	})

	headers := make([]string, 0, len(consolidatedColumns)+1)
	statusIdx := -1
	for _, col := range consolidatedColumns {
		headers = append(headers, col.header)
		if col.header == "Request Status" {
			statusIdx = len(headers) - 1
		}
	}
	// Final Status sits right after Request Status.
	headers = append(headers[:statusIdx+1], append([]string{finalStatusHeader}, headers[statusIdx+1:]...)...)

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 10},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D3D3D3"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for c, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write header %q: %w", h, err)
		}
	}
	firstCell, _ := excelize.CoordinatesToCellName(1, 1)
	lastCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, firstCell, lastCell, headerStyle)

	for i := range ordered {
		rec := &ordered[i]
		r := i + 2
		c := 0
		for _, col := range consolidatedColumns {
			v := col.value(rec)
			cell, _ := excelize.CoordinatesToCellName(c+1, r)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write cell %s: %w", cell, err)
			}
			if len(v) > widths[c] {
				widths[c] = len(v)
			}
			c++
			if col.header == "Request Status" {
				final := answers[rec.RequestID]
				cell, _ := excelize.CoordinatesToCellName(c+1, r)
				if err := f.SetCellValue(sheet, cell, final); err != nil {
					return fmt.Errorf("write cell %s: %w", cell, err)
				}
				if len(final) > widths[c] {
					widths[c] = len(final)
				}
				c++
			}
		}
	}

	for c := range headers {
		width := widths[c] + 2
		if width > 50 {
			width = 50
		}
		name, _ := excelize.ColumnNumberToName(c + 1)
		_ = f.SetColWidth(sheet, name, name, float64(width))
	}

	return f.SaveAs(outPath)
}
