package store

import (
	"database/sql"
	"fmt"
	"time"

	"sampletrack/internal/model"
)

// Run statuses.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Run is one recorded pipeline execution.
type Run struct {
	ID             string     `json:"id"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	InputFile      string     `json:"input_file"`
	Status         string     `json:"status"`
	Error          string     `json:"error,omitempty"`
	TotalRows      int        `json:"total_rows"`
	FilteredRows   int        `json:"filtered_rows"`
	UniqueRequests int        `json:"unique_requests"`
	ClassifiedRows int        `json:"classified_rows"`
	WarningCount   int        `json:"warning_count"`
}

// Output is one file a run produced.
type Output struct {
	RunID     string `json:"run_id"`
	Level     string `json:"level"`
	EntityKey string `json:"entity_key"`
	Kind      string `json:"kind"`
	Path      string `json:"path"`
}

// CreateRun records a run start.
func (s *Store) CreateRun(id, inputFile string, startedAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, started_at, input_file, status) VALUES (?, ?, ?, ?)`,
		id, startedAt.UTC().Format(time.RFC3339), inputFile, RunRunning)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// FinishRun records a run's terminal state and tallies.
func (s *Store) FinishRun(run *Run) error {
	finished := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, status = ?, error = ?,
		        total_rows = ?, filtered_rows = ?, unique_requests = ?,
		        classified_rows = ?, warning_count = ?
		 WHERE id = ?`,
		finished, run.Status, run.Error,
		run.TotalRows, run.FilteredRows, run.UniqueRequests,
		run.ClassifiedRows, run.WarningCount, run.ID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// AddWarnings persists a run's data-quality findings.
func (s *Store) AddWarnings(runID string, warnings []model.Warning) error {
	if len(warnings) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("add warnings: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO run_warnings (run_id, kind, subject, detail) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("add warnings: %w", err)
	}
	defer stmt.Close()
	for _, w := range warnings {
		if _, err := stmt.Exec(runID, string(w.Kind), w.Subject, w.Detail); err != nil {
			tx.Rollback()
			return fmt.Errorf("add warnings: %w", err)
		}
	}
	return tx.Commit()
}

// AddOutput records one generated file.
func (s *Store) AddOutput(out Output) error {
	_, err := s.db.Exec(
		`INSERT INTO run_outputs (run_id, level, entity_key, kind, path) VALUES (?, ?, ?, ?, ?)`,
		out.RunID, out.Level, out.EntityKey, out.Kind, out.Path)
	if err != nil {
		return fmt.Errorf("add output: %w", err)
	}
	return nil
}

// AddNotification records one delivery attempt, successful or not.
func (s *Store) AddNotification(runID, channel, recipient, subject string, sendErr error) error {
	errText := ""
	if sendErr != nil {
		errText = sendErr.Error()
	}
	_, err := s.db.Exec(
		`INSERT INTO notifications (run_id, channel, recipient, subject, sent_at, error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, channel, recipient, subject, time.Now().UTC().Format(time.RFC3339), errText)
	if err != nil {
		return fmt.Errorf("add notification: %w", err)
	}
	return nil
}

// GetRun fetches one run by id.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, started_at, finished_at, input_file, status, COALESCE(error, ''),
		        total_rows, filtered_rows, unique_requests, classified_rows, warning_count
		 FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, started_at, finished_at, input_file, status, COALESCE(error, ''),
		        total_rows, filtered_rows, unique_requests, classified_rows, warning_count
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

// ListWarnings returns a run's findings in insertion order.
func (s *Store) ListWarnings(runID string) ([]model.Warning, error) {
	rows, err := s.db.Query(
		`SELECT kind, subject, detail FROM run_warnings WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list warnings: %w", err)
	}
	defer rows.Close()

	var out []model.Warning
	for rows.Next() {
		var kind, subject, detail string
		if err := rows.Scan(&kind, &subject, &detail); err != nil {
			return nil, fmt.Errorf("list warnings: %w", err)
		}
		out = append(out, model.Warning{Kind: model.WarningKind(kind), Subject: subject, Detail: detail})
	}
	return out, rows.Err()
}

// ListOutputs returns the files a run produced.
func (s *Store) ListOutputs(runID string) ([]Output, error) {
	rows, err := s.db.Query(
		`SELECT run_id, level, entity_key, kind, path FROM run_outputs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list outputs: %w", err)
	}
	defer rows.Close()

	var out []Output
	for rows.Next() {
		var o Output
		if err := rows.Scan(&o.RunID, &o.Level, &o.EntityKey, &o.Kind, &o.Path); err != nil {
			return nil, fmt.Errorf("list outputs: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (*Run, error) {
	var run Run
	var started string
	var finished sql.NullString
	err := sc.Scan(&run.ID, &started, &finished, &run.InputFile, &run.Status, &run.Error,
		&run.TotalRows, &run.FilteredRows, &run.UniqueRequests, &run.ClassifiedRows, &run.WarningCount)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, started); err == nil {
		run.StartedAt = t
	}
	if finished.Valid {
		if t, err := time.Parse(time.RFC3339, finished.String); err == nil {
			run.FinishedAt = &t
		}
	}
	return &run, nil
}
