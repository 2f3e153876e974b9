package report

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sampletrack/internal/aggregate"
	"sampletrack/internal/classify"
	"sampletrack/internal/config"
	"sampletrack/internal/model"
	"sampletrack/internal/notify"
	"sampletrack/internal/rules"
	"sampletrack/internal/store"
	"sampletrack/internal/tabular"
)

// ErrRunInProgress is returned when a trigger arrives while another run
// is still executing.
var ErrRunInProgress = errors.New("a run is already in progress")

// Service runs the full pipeline: read the master tracker, classify and
// deduplicate requests, aggregate per hierarchy level, write summary
// reports and consolidated extracts, record the run, and send the
// per-entity notifications.
//
// Runs never overlap. The cron schedule, the file watcher, and the HTTP
// trigger all share one Service; output paths depend only on entity and
// date, so two concurrent runs would save over each other's workbooks
// and double the notification sends.
type Service struct {
	cfg        *config.AppConfig
	recipients *config.Recipients
	store      *store.Store
	mailer     notify.Notifier
	ops        *notify.OpsNotifier

	running sync.Mutex
}

// NewService wires the pipeline. store, mailer and ops may be nil; the
// corresponding side effects are skipped.
func NewService(cfg *config.AppConfig, recipients *config.Recipients, st *store.Store, mailer notify.Notifier, ops *notify.OpsNotifier) *Service {
	if recipients == nil {
		recipients = &config.Recipients{}
	}
	return &Service{
		cfg:        cfg,
		recipients: recipients,
		store:      st,
		mailer:     mailer,
		ops:        ops,
	}
}

// EntityReport is one hierarchy node's rendered output.
type EntityReport struct {
	Key              string               `json:"key"`
	Name             string               `json:"name"`
	Email            string               `json:"email,omitempty"`
	Rows             []model.AggregateRow `json:"rows"`
	SummaryPath      string               `json:"summary_path,omitempty"`
	ConsolidatedPath string               `json:"consolidated_path,omitempty"`
}

// RunResult is everything one pipeline execution produced.
type RunResult struct {
	Run       store.Run       `json:"run"`
	Warnings  []model.Warning `json:"warnings"`
	ZBMs      []EntityReport  `json:"zbms"`
	Divisions []EntityReport  `json:"divisions"`
}

// Run executes one batch. Structural input problems abort; data-quality
// findings are collected and reported, never fatal. A trigger arriving
// while another run is executing is rejected with ErrRunInProgress
// rather than queued.
func (s *Service) Run() (*RunResult, error) {
	if !s.running.TryLock() {
		log.Printf("run trigger skipped: %v", ErrRunInProgress)
		return nil, ErrRunInProgress
	}
	defer s.running.Unlock()

	runID := uuid.New().String()
	startedAt := time.Now()
	asOf := startedAt.Format("20060102")

	if s.store != nil {
		if err := s.store.CreateRun(runID, s.cfg.Paths.MasterPath, startedAt); err != nil {
			log.Printf("run %s: %v", runID, err)
		}
	}

	result, err := s.execute(runID, asOf)
	if err != nil {
		s.finishRun(&store.Run{ID: runID, Status: store.RunFailed, Error: err.Error()})
		s.postOps(fmt.Sprintf(":x: sampletrack run %s failed: %v", runID, err))
		return nil, err
	}

	run := &result.Run
	run.ID = runID
	run.Status = store.RunCompleted
	run.WarningCount = len(result.Warnings)
	s.finishRun(run)
	if s.store != nil {
		if err := s.store.AddWarnings(runID, result.Warnings); err != nil {
			log.Printf("run %s: %v", runID, err)
		}
	}
	s.postOps(fmt.Sprintf(
		"sampletrack run %s completed: %d rows -> %d requests (%d unique ids), %d ZBM reports, %d Division reports, %d warnings",
		runID, run.TotalRows, run.ClassifiedRows, run.UniqueRequests,
		len(result.ZBMs), len(result.Divisions), run.WarningCount))

	return result, nil
}

func (s *Service) execute(runID, asOf string) (*RunResult, error) {
	log.Printf("run %s: reading %s", runID, s.cfg.Paths.MasterPath)
	reader := &tabular.MasterReader{ZBMCodePrefix: s.cfg.Business.ZBMCodePrefix}
	read, err := reader.Read(s.cfg.Paths.MasterPath)
	if err != nil {
		return nil, err
	}
	log.Printf("run %s: %d rows loaded, %d filtered", runID, read.TotalRows, read.FilteredRows)

	result := &RunResult{
		Run: store.Run{
			InputFile:    s.cfg.Paths.MasterPath,
			TotalRows:    read.TotalRows,
			FilteredRows: read.FilteredRows,
		},
	}

	table, policy, ruleWarnings := s.loadRules(runID)
	result.Warnings = append(result.Warnings, ruleWarnings...)

	classifier := classify.NewClassifier(table, classify.Options{
		Policy:   policy,
		CatchAll: classify.ReturnCatchAll(s.cfg.Business.RTOCatchAll),
	})
	classification := classifier.Classify(read.Records)
	result.Warnings = append(result.Warnings, classification.Warnings...)
	result.Run.UniqueRequests = classification.UniqueRequestIDs
	result.Run.ClassifiedRows = len(classification.Requests)
	log.Printf("run %s: %d line items -> %d deduplicated requests (%d unique request ids)",
		runID, len(read.Records), len(classification.Requests), classification.UniqueRequestIDs)

	answers := answersByRequest(classification.Requests)

	zbms, warnings := s.processLevel(runID, asOf, levelSpec{
		level:        aggregate.LevelZBM,
		childLevel:   aggregate.LevelABM,
		columns:      tabular.ABMColumns(),
		reportDir:    "ZBM_Reports_" + asOf,
		extractDir:   "ZBM_Consolidated_Files_" + asOf,
		reportName:   "ZBM_Summary",
		extractName:  "ZBM_Consolidated",
	}, classification.Requests, read.Records, answers)
	result.ZBMs = zbms
	result.Warnings = append(result.Warnings, warnings...)

	divisions, warnings := s.processLevel(runID, asOf, levelSpec{
		level:        aggregate.LevelDivision,
		childLevel:   aggregate.LevelZBM,
		columns:      tabular.ZBMColumns(),
		reportDir:    "Division_Reports_" + asOf,
		extractDir:   "Division_Consolidated_Files_" + asOf,
		reportName:   "Division_Summary",
		extractName:  "Division_Consolidated",
	}, classification.Requests, read.Records, answers)
	result.Divisions = divisions
	result.Warnings = append(result.Warnings, warnings...)

	for _, w := range result.Warnings {
		log.Printf("run %s: warning %s", runID, w)
	}
	return result, nil
}

// loadRules reads the rule sheet, falling back to the hardcoded
// heuristic mapping when it is unreadable.
func (s *Service) loadRules(runID string) (*rules.Table, classify.UnmappedPolicy, []model.Warning) {
	policy := classify.UnmappedPolicy(s.cfg.Business.UnmappedPolicy)

	table, warnings, err := tabular.ReadRules(s.cfg.Paths.RulesPath, s.cfg.Paths.RuleSheet)
	if err != nil {
		log.Printf("run %s: %v; falling back to heuristic mapping", runID, err)
		empty, _, _ := rules.Load([]string{"Final Answer"}, nil)
		return empty, classify.UnmappedHeuristic, []model.Warning{{
			Kind:    model.WarnHeuristicFallback,
			Subject: s.cfg.Paths.RulesPath,
			Detail:  fmt.Sprintf("rule sheet unreadable (%v); classifying with heuristic mapping only", err),
		}}
	}
	log.Printf("run %s: %d rules loaded from %s", runID, table.Len(), s.cfg.Paths.RulesPath)
	return table, policy, warnings
}

// levelSpec describes one reporting level: which entities get a report,
// which child level fills its rows, and how its files are named.
type levelSpec struct {
	level       aggregate.Level
	childLevel  aggregate.Level
	columns     []tabular.SummaryColumn
	reportDir   string
	extractDir  string
	reportName  string
	extractName string
}

// processLevel builds, writes and sends every entity report at one
// level. Per-entity failures are logged and skipped; the rest of the
// level still goes out.
func (s *Service) processLevel(runID, asOf string, spec levelSpec, requests []model.ClassifiedRequest, records []model.RawRecord, answers map[string]string) ([]EntityReport, []model.Warning) {
	entities := aggregate.Entities(requests, spec.level)
	log.Printf("run %s: %d %s entities", runID, len(entities), spec.level)

	reportDir := filepath.Join(s.cfg.Paths.OutputDir, spec.reportDir)
	extractDir := filepath.Join(s.cfg.Paths.OutputDir, spec.extractDir)
	for _, dir := range []string{reportDir, extractDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("run %s: create %s: %v", runID, dir, err)
			return nil, nil
		}
	}

	recordsByKey := groupRecords(records, spec.level)
	writer := &tabular.SummaryWriter{TemplatePath: s.cfg.Paths.TemplatePath}
	extractWriter := &tabular.ConsolidatedWriter{}

	var out []EntityReport
	var warnings []model.Warning
	for _, e := range entities {
		rows := aggregate.Summarize(e.Requests, spec.childLevel)
		warnings = append(warnings, aggregate.ValidateAll(rows, spec.childLevel)...)

		report := EntityReport{Key: e.Key, Name: e.Name, Email: e.Email, Rows: rows}
		title := fmt.Sprintf("%s Summary - %s (%s) as of %s", spec.level, e.Name, e.Key, asOf)

		summaryPath := filepath.Join(reportDir,
			fmt.Sprintf("%s_%s_%s_%s.xlsx", spec.reportName, e.Key, safeName(e.Name), asOf))
		if err := writer.Write(title, spec.columns, rows, summaryPath); err != nil {
			log.Printf("run %s: %s %s summary: %v", runID, spec.level, e.Key, err)
		} else {
			report.SummaryPath = summaryPath
			s.recordOutput(runID, spec.level, e.Key, "summary", summaryPath)
		}

		extractPath := filepath.Join(extractDir,
			fmt.Sprintf("%s_%s_%s_%s.xlsx", spec.extractName, e.Key, safeName(e.Name), asOf))
		if err := extractWriter.Write(recordsByKey[e.Key], answers, extractPath); err != nil {
			log.Printf("run %s: %s %s extract: %v", runID, spec.level, e.Key, err)
		} else {
			report.ConsolidatedPath = extractPath
			s.recordOutput(runID, spec.level, e.Key, "consolidated", extractPath)
		}

		s.sendEntityMail(runID, asOf, spec, e, report)
		out = append(out, report)
	}
	return out, warnings
}

// sendEntityMail composes and delivers one entity's summary email.
func (s *Service) sendEntityMail(runID, asOf string, spec levelSpec, e aggregate.Entity, report EntityReport) {
	if s.mailer == nil || !s.cfg.Mail.Enabled {
		return
	}

	to := e.Email
	if spec.level == aggregate.LevelDivision {
		to = s.recipients.DivisionEmails[e.Key]
	}
	if !validEmail(to) {
		log.Printf("run %s: %s %s: no valid recipient, skipping mail", runID, spec.level, e.Key)
		return
	}

	table, err := notify.RenderSummaryTable(spec.columns, report.Rows)
	if err != nil {
		log.Printf("run %s: %s %s: %v", runID, spec.level, e.Key, err)
		return
	}
	body, err := notify.RenderEmailBody(e.Name, spec.level.String(), e.Key, asOf, table)
	if err != nil {
		log.Printf("run %s: %s %s: %v", runID, spec.level, e.Key, err)
		return
	}

	cc := abmEmails(e.Requests)
	if spec.level == aggregate.LevelDivision {
		cc = append(cc, s.recipients.CCFor(majorityAffiliate(e.Requests))...)
	}

	msg := notify.Message{
		To:         []string{to},
		CC:         dedupe(cc),
		Subject:    fmt.Sprintf("%s - %s Summary Report as of %s", s.cfg.Mail.Subject, spec.level, asOf),
		HTMLBody:   body,
		Attachment: report.ConsolidatedPath,
	}
	err = s.mailer.Send(msg)
	if err != nil {
		log.Printf("run %s: mail %s %s: %v", runID, spec.level, e.Key, err)
	} else {
		log.Printf("run %s: mailed %s summary to %s", runID, e.Key, to)
	}
	if s.store != nil {
		if dbErr := s.store.AddNotification(runID, "email", to, msg.Subject, err); dbErr != nil {
			log.Printf("run %s: %v", runID, dbErr)
		}
	}
}

func (s *Service) recordOutput(runID string, level aggregate.Level, key, kind, path string) {
	if s.store == nil {
		return
	}
	err := s.store.AddOutput(store.Output{
		RunID:     runID,
		Level:     level.String(),
		EntityKey: key,
		Kind:      kind,
		Path:      path,
	})
	if err != nil {
		log.Printf("run %s: %v", runID, err)
	}
}

func (s *Service) finishRun(run *store.Run) {
	if s.store == nil {
		return
	}
	if err := s.store.FinishRun(run); err != nil {
		log.Printf("run %s: %v", run.ID, err)
	}
}

func (s *Service) postOps(text string) {
	if s.ops == nil {
		return
	}
	if err := s.ops.Post(text); err != nil {
		log.Printf("ops notice: %v", err)
	}
}

// answersByRequest maps every request id to its resolved answer for the
// consolidated extracts' Final Status column.
func answersByRequest(requests []model.ClassifiedRequest) map[string]string {
	out := make(map[string]string, len(requests))
	for _, r := range requests {
		out[r.RequestID] = r.Answer
	}
	return out
}

// groupRecords partitions raw line items by the level's grouping key so
// each entity's extract carries only its own rows.
func groupRecords(records []model.RawRecord, level aggregate.Level) map[string][]model.RawRecord {
	out := make(map[string][]model.RawRecord)
	for _, r := range records {
		var key string
		switch level {
		case aggregate.LevelABM:
			key = r.ABMCode
		case aggregate.LevelZBM:
			key = r.ZBMCode
		default:
			key = r.Division
		}
		if key == "" {
			continue
		}
		out[key] = append(out[key], r)
	}
	return out
}

// abmEmails collects the distinct valid ABM addresses under an entity.
func abmEmails(requests []model.ClassifiedRequest) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range requests {
		addr := r.First.ABMEmail
		if !validEmail(addr) {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}

// majorityAffiliate picks the most frequent affiliate across an
// entity's requests, for CC routing.
func majorityAffiliate(requests []model.ClassifiedRequest) string {
	counts := make(map[string]int)
	best, bestCount := "", 0
	for _, r := range requests {
		a := r.First.Affiliate
		if a == "" {
			continue
		}
		counts[a]++
		if counts[a] > bestCount {
			best, bestCount = a, counts[a]
		}
	}
	return best
}

// validEmail rejects the placeholder values the tracker uses for
// missing addresses.
func validEmail(addr string) bool {
	switch strings.TrimSpace(addr) {
	case "", "0", "0.0":
		return false
	}
	return strings.Contains(addr, "@")
}

// safeName sanitizes an entity name for use in a file name.
func safeName(name string) string {
	r := strings.NewReplacer(" ", "_", "/", "_", "\\", "_")
	return r.Replace(name)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
