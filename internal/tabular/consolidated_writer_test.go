package tabular

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"sampletrack/internal/model"
)

func TestConsolidatedWriter_FinalStatusAfterRequestStatus(t *testing.T) {
	t.Parallel()

	records := []model.RawRecord{
		{RequestID: "R2", Status: "RTO", ABMCode: "AB2", ZBMCode: "ZN01", SKU: "SKU-9"},
		{RequestID: "R1", Status: "Delivered", ABMCode: "AB1", ZBMCode: "ZN01", SKU: "SKU-1"},
	}
	answers := map[string]string{
		"R1": model.AnswerDelivered,
		"R2": model.AnswerReturned,
	}

	out := filepath.Join(t.TempDir(), "extract.xlsx")
	w := &ConsolidatedWriter{}
	if err := w.Write(records, answers, out); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	sheet := f.GetSheetList()[0]
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("want header + 2 rows, got %d", len(rows))
	}

	header := rows[0]
	statusIdx, finalIdx := -1, -1
	for i, h := range header {
		switch h {
		case "Request Status":
			statusIdx = i
		case "Final Status":
			finalIdx = i
		}
	}
	if statusIdx < 0 || finalIdx != statusIdx+1 {
		t.Fatalf("final status must follow request status: %d %d", statusIdx, finalIdx)
	}

	// rows are ABM-then-request ordered, so R1 under AB1 comes first
	if rows[1][0] != "R1" || rows[2][0] != "R2" {
		t.Fatalf("row order: %q %q", rows[1][0], rows[2][0])
	}
	if rows[1][finalIdx] != model.AnswerDelivered {
		t.Fatalf("R1 final status: %q", rows[1][finalIdx])
	}
	if rows[2][finalIdx] != model.AnswerReturned {
		t.Fatalf("R2 final status: %q", rows[2][finalIdx])
	}
}

func TestConsolidatedWriter_EmptyInputStillWritesHeader(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "empty.xlsx")
	w := &ConsolidatedWriter{}
	if err := w.Write(nil, nil, out); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows(f.GetSheetList()[0])
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 1 || rows[0][0] != "Assigned Request Ids" {
		t.Fatalf("header row missing: %v", rows)
	}
}
