package model

// WarningKind identifies a class of non-fatal data-quality finding.
// Warnings never abort a run; they are collected and surfaced with the
// run's output so operators can repair source data before the next run.
type WarningKind string

const (
	WarnUnmappedStatus    WarningKind = "unmapped_status"
	WarnTallyMismatch     WarningKind = "tally_mismatch"
	WarnRTOBreakdown      WarningKind = "rto_breakdown_mismatch"
	WarnDuplicateRule     WarningKind = "duplicate_rule"
	WarnHeuristicFallback WarningKind = "heuristic_fallback"
)

// Warning is one data-quality finding. Subject names the request id or
// group key the finding is about.
type Warning struct {
	Kind    WarningKind
	Subject string
	Detail  string
}

func (w Warning) String() string {
	return string(w.Kind) + " [" + w.Subject + "]: " + w.Detail
}
