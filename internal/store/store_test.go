package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"sampletrack/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "sampletrack.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestRunLifecycle(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	started := time.Now().Truncate(time.Second)
	if err := st.CreateRun("run-1", "tracker.xlsx", started); err != nil {
		t.Fatalf("create run: %v", err)
	}

	run, err := st.GetRun("run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if run.Status != RunRunning {
		t.Fatalf("fresh run status: %q", run.Status)
	}
	if run.InputFile != "tracker.xlsx" {
		t.Fatalf("input file: %q", run.InputFile)
	}

	run.Status = RunCompleted
	run.TotalRows = 100
	run.FilteredRows = 5
	run.UniqueRequests = 40
	run.ClassifiedRows = 42
	run.WarningCount = 2
	if err := st.FinishRun(run); err != nil {
		t.Fatalf("finish run: %v", err)
	}

	got, err := st.GetRun("run-1")
	if err != nil {
		t.Fatalf("get finished run: %v", err)
	}
	if got.Status != RunCompleted || got.TotalRows != 100 || got.UniqueRequests != 40 {
		t.Fatalf("finished run: %+v", got)
	}
	if got.FinishedAt == nil {
		t.Fatalf("finished_at not set")
	}
}

func TestFailedRunKeepsError(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	if err := st.CreateRun("run-err", "tracker.xlsx", time.Now()); err != nil {
		t.Fatalf("create run: %v", err)
	}
	if err := st.FinishRun(&Run{ID: "run-err", Status: RunFailed, Error: "file not found"}); err != nil {
		t.Fatalf("finish run: %v", err)
	}

	got, err := st.GetRun("run-err")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got.Status != RunFailed || got.Error != "file not found" {
		t.Fatalf("failed run: %+v", got)
	}
}

func TestListRuns_NewestFirst(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	base := time.Now()
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		if err := st.CreateRun(id, "tracker.xlsx", base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	runs, err := st.ListRuns(2)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("limit ignored: %d runs", len(runs))
	}
	if runs[0].ID != "run-c" || runs[1].ID != "run-b" {
		t.Fatalf("order: %s %s", runs[0].ID, runs[1].ID)
	}
}

func TestWarningsRoundTrip(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	if err := st.CreateRun("run-w", "tracker.xlsx", time.Now()); err != nil {
		t.Fatalf("create run: %v", err)
	}

	warnings := []model.Warning{
		{Kind: model.WarnUnmappedStatus, Subject: "R1", Detail: "no rule for status set {weird}"},
		{Kind: model.WarnTallyMismatch, Subject: "ZBM ZN01", Detail: "computed total 4 != observed requests 5"},
	}
	if err := st.AddWarnings("run-w", warnings); err != nil {
		t.Fatalf("add warnings: %v", err)
	}

	got, err := st.ListWarnings("run-w")
	if err != nil {
		t.Fatalf("list warnings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 warnings, got %d", len(got))
	}
	if got[0].Kind != model.WarnUnmappedStatus || got[0].Subject != "R1" {
		t.Fatalf("first warning: %+v", got[0])
	}
}

func TestOutputsAndNotifications(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	if err := st.CreateRun("run-o", "tracker.xlsx", time.Now()); err != nil {
		t.Fatalf("create run: %v", err)
	}

	out := Output{
		RunID:     "run-o",
		Level:     "ZBM",
		EntityKey: "ZN01",
		Kind:      "summary",
		Path:      "reports/ZBM_Summary_ZN01_Zoe_20260830.xlsx",
	}
	if err := st.AddOutput(out); err != nil {
		t.Fatalf("add output: %v", err)
	}

	outputs, err := st.ListOutputs("run-o")
	if err != nil {
		t.Fatalf("list outputs: %v", err)
	}
	if len(outputs) != 1 || outputs[0].EntityKey != "ZN01" {
		t.Fatalf("outputs: %+v", outputs)
	}

	if err := st.AddNotification("run-o", "email", "zoe@example.com", "Summary", nil); err != nil {
		t.Fatalf("add notification: %v", err)
	}
	if err := st.AddNotification("run-o", "email", "bad@example.com", "Summary", errors.New("smtp refused")); err != nil {
		t.Fatalf("add failed notification: %v", err)
	}
}

func TestGetRun_Missing(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	if _, err := st.GetRun("nope"); err == nil {
		t.Fatalf("expected error for unknown run")
	}
}
