package tabular

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"sampletrack/internal/model"
)

// MasterReader loads the master tracker workbook into RawRecords.
type MasterReader struct {
	// ZBMCodePrefix restricts rows to ZBM codes carrying this prefix.
	// Empty keeps everything.
	ZBMCodePrefix string
}

// ReadResult carries the loaded records plus the cleaning tallies the
// run log records.
type ReadResult struct {
	Records      []model.RawRecord
	TotalRows    int
	FilteredRows int
}

// Read opens the tracker at path and parses its first sheet. Structural
// problems (unreadable file, empty sheet, missing required columns) are
// fatal; individual dirty rows are filtered and counted, never fatal.
func (m *MasterReader) Read(path string) (*ReadResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &model.LoadError{Source: "master tracker", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &model.LoadError{Source: "master tracker", Err: fmt.Errorf("workbook has no sheets")}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &model.LoadError{Source: "master tracker", Err: err}
	}
	if len(rows) < 2 {
		return nil, &model.LoadError{Source: "master tracker", Err: fmt.Errorf("sheet %q has no data rows", sheets[0])}
	}

	cols, err := ResolveColumns("master tracker", rows[0])
	if err != nil {
		return nil, err
	}

	result := &ReadResult{TotalRows: len(rows) - 1}
	for _, row := range rows[1:] {
		rec := m.parseRow(row, cols)
		if !rec.HasCriticalIDs() {
			result.FilteredRows++
			continue
		}
		if m.ZBMCodePrefix != "" && !strings.HasPrefix(rec.ZBMCode, m.ZBMCodePrefix) {
			result.FilteredRows++
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

// parseRow builds one RawRecord. Every value is whitespace-trimmed;
// hierarchy codes are upper-cased so grouping keys compare cleanly.
func (m *MasterReader) parseRow(row []string, cols map[Field]int) model.RawRecord {
	get := func(field Field) string {
		idx, ok := cols[field]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	return model.RawRecord{
		RequestID: get(FieldRequestID),
		Status:    get(FieldStatus),
		RTOReason: get(FieldRTOReason),

		TBMHQ:        get(FieldTBMHQ),
		TBMEmail:     get(FieldTBMEmail),
		ABMCode:      strings.ToUpper(get(FieldABMCode)),
		ABMName:      get(FieldABMName),
		ABMEmail:     get(FieldABMEmail),
		ZBMCode:      strings.ToUpper(get(FieldZBMCode)),
		ZBMName:      get(FieldZBMName),
		ZBMEmail:     get(FieldZBMEmail),
		Division:     get(FieldDivision),
		DivisionName: get(FieldDivisionName),
		Affiliate:    get(FieldAffiliate),

		DoctorCode:    get(FieldDoctorCode),
		DoctorSAPCode: get(FieldDoctorSAPCode),
		DoctorName:    get(FieldDoctorName),
		CreatedBy:     get(FieldCreatedBy),

		ItemCode:        get(FieldItemCode),
		SKU:             get(FieldSKU),
		Quantity:        get(FieldQuantity),
		Date:            get(FieldDate),
		Month:           get(FieldMonth),
		InvoiceNo:       get(FieldInvoiceNo),
		InvoiceDate:     get(FieldInvoiceDate),
		DispatchDate:    get(FieldDispatchDate),
		DeliveryDate:    get(FieldDeliveryDate),
		DocketNumber:    get(FieldDocketNumber),
		TransporterName: get(FieldTransporterName),
	}
}
