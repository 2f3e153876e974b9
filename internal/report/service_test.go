package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"sampletrack/internal/config"
	"sampletrack/internal/model"
	"sampletrack/internal/store"
)

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
}

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Paths.MasterPath = filepath.Join(dir, "tracker.xlsx")
	cfg.Paths.RulesPath = filepath.Join(dir, "logic.xlsx")
	cfg.Paths.RuleSheet = "Sheet1"
	cfg.Paths.TemplatePath = ""
	cfg.Paths.OutputDir = filepath.Join(dir, "reports")
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Mail.Enabled = false

	header := []interface{}{
		"Assigned Request Ids", "Request Status", "RTO Reason", "TBM HQ",
		"ABM Terr Code", "ABM Name", "ZBM Terr Code", "ZBM Name",
		"TBM Division", "Doctor: Customer Code",
	}
	writeWorkbook(t, cfg.Paths.MasterPath, [][]interface{}{
		header,
		{"R1", "Delivered", "", "HQ1", "AB1", "Alice", "ZN01", "Zoe", "DIV1", "DOC1"},
		{"R1", "In Transit", "", "HQ1", "AB1", "Alice", "ZN01", "Zoe", "DIV1", "DOC1"},
		{"R2", "RTO", "Doctor refused to accept", "HQ1", "AB2", "Bob", "ZN01", "Zoe", "DIV1", "DOC2"},
		{"R3", "Request Raised", "", "HQ2", "AB3", "Cara", "ZN02", "Yan", "DIV1", "DOC3"},
	})
	writeWorkbook(t, cfg.Paths.RulesPath, [][]interface{}{
		{"Status 1", "Status 2", "Final Answer"},
		{"Delivered", "", "Delivered"},
		{"Delivered", "In Transit", "Delivered"},
		{"RTO", "", "Returned"},
		{"Request Raised", "", "Request Raised"},
	})
	return cfg
}

func TestServiceRun_EndToEnd(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	st, err := store.New(cfg.DBPath())
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	svc := NewService(cfg, nil, st, nil, nil)
	result, err := svc.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Run.TotalRows != 4 {
		t.Fatalf("total rows: %d", result.Run.TotalRows)
	}
	if result.Run.UniqueRequests != 3 || result.Run.ClassifiedRows != 3 {
		t.Fatalf("request counts: %+v", result.Run)
	}
	if len(result.ZBMs) != 2 {
		t.Fatalf("want 2 ZBM reports, got %d", len(result.ZBMs))
	}
	if len(result.Divisions) != 1 {
		t.Fatalf("want 1 Division report, got %d", len(result.Divisions))
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("clean input must not warn: %v", result.Warnings)
	}

	for _, rep := range append(result.ZBMs, result.Divisions...) {
		if rep.SummaryPath == "" || rep.ConsolidatedPath == "" {
			t.Fatalf("entity %s missing outputs: %+v", rep.Key, rep)
		}
		for _, p := range []string{rep.SummaryPath, rep.ConsolidatedPath} {
			if _, err := os.Stat(p); err != nil {
				t.Fatalf("output not written: %v", err)
			}
		}
	}

	run, err := st.GetRun(result.Run.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if run.Status != store.RunCompleted {
		t.Fatalf("run status: %q", run.Status)
	}
	outputs, err := st.ListOutputs(run.ID)
	if err != nil {
		t.Fatalf("list outputs: %v", err)
	}
	// 2 files per ZBM + 2 per Division
	if len(outputs) != 6 {
		t.Fatalf("want 6 recorded outputs, got %d", len(outputs))
	}
}

func TestServiceRun_HeuristicFallbackWhenRulesUnreadable(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Paths.RulesPath = filepath.Join(t.TempDir(), "missing.xlsx")

	svc := NewService(cfg, nil, nil, nil, nil)
	result, err := svc.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var sawFallback bool
	for _, w := range result.Warnings {
		if w.Kind == model.WarnHeuristicFallback {
			sawFallback = true
		}
	}
	if !sawFallback {
		t.Fatalf("expected heuristic-fallback warnings: %v", result.Warnings)
	}
	// the heuristic still resolves the well-known statuses
	for _, rep := range result.ZBMs {
		for _, row := range rep.Rows {
			if row.Unmapped != 0 {
				t.Fatalf("heuristic left rows unmapped: %+v", row)
			}
		}
	}
}

func TestServiceRun_RejectsOverlappingTrigger(t *testing.T) {
	t.Parallel()

	// The cron schedule, the file watcher, and the HTTP trigger share one
	// service; a trigger landing mid-run must be rejected, not interleaved
	// over the same output paths.
	cfg := testConfig(t)
	svc := NewService(cfg, nil, nil, nil, nil)

	svc.running.Lock()
	_, err := svc.Run()
	svc.running.Unlock()
	if !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("want ErrRunInProgress, got %v", err)
	}

	// once the running trigger finishes, the next one proceeds
	if _, err := svc.Run(); err != nil {
		t.Fatalf("run after release: %v", err)
	}
}

func TestServiceRun_MissingTrackerFails(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Paths.MasterPath = filepath.Join(t.TempDir(), "absent.xlsx")

	svc := NewService(cfg, nil, nil, nil, nil)
	if _, err := svc.Run(); err == nil {
		t.Fatalf("expected error for missing tracker")
	}
}
