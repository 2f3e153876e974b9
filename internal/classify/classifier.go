package classify

import (
	"fmt"
	"sort"
	"strings"

	"sampletrack/internal/model"
	"sampletrack/internal/rules"
)

// pendingSubStatus is the bare in-process status some downstream reports
// flag separately from the resolved answer.
const pendingSubStatus = "action pending / in process"

// UnmappedPolicy controls what happens when a request's status set has no
// rule-table entry.
type UnmappedPolicy string

const (
	// UnmappedStrict classifies rule misses as AnswerUnmapped.
	UnmappedStrict UnmappedPolicy = "strict"
	// UnmappedHeuristic tries the fallback heuristic first and only then
	// settles on AnswerUnmapped.
	UnmappedHeuristic UnmappedPolicy = "heuristic_fallback"
)

// Classifier resolves every request in a batch to one canonical answer
// and collapses line items into deduplicated request rows. It holds no
// state between runs; the rule table and heuristic are injected.
type Classifier struct {
	table     *rules.Table
	heuristic rules.Heuristic
	policy    UnmappedPolicy
	catchAll  ReturnCatchAll
}

// Options configures a Classifier. Zero values mean strict unmapped
// handling, the default heuristic, and no RTO catch-all.
type Options struct {
	Policy    UnmappedPolicy
	Heuristic rules.Heuristic
	CatchAll  ReturnCatchAll
}

// NewClassifier creates a classifier around a loaded rule table.
func NewClassifier(table *rules.Table, opts Options) *Classifier {
	if opts.Policy == "" {
		opts.Policy = UnmappedStrict
	}
	if opts.Heuristic == nil {
		opts.Heuristic = rules.DefaultHeuristic
	}
	if opts.CatchAll == "" {
		opts.CatchAll = CatchAllNone
	}
	return &Classifier{
		table:     table,
		heuristic: opts.Heuristic,
		policy:    opts.Policy,
		catchAll:  opts.CatchAll,
	}
}

// resolution is the per-request-id outcome shared by every hierarchy
// triple that request id appears under.
type resolution struct {
	answer     string
	statuses   []string
	hasPending bool
}

// Classify runs one full pass: group line items by request id, resolve
// each id's status set against the rule table, then collapse rows into
// one ClassifiedRequest per (request id, ABM, ZBM) triple, keeping the
// first-observed record for pass-through fields.
//
// Every request id present in the input appears in the output; a rule
// miss yields AnswerUnmapped plus a warning, never a dropped request.
func (c *Classifier) Classify(records []model.RawRecord) model.Classification {
	statusesByID := make(map[string][]string)
	idOrder := make([]string, 0)
	for _, r := range records {
		if !r.HasCriticalIDs() {
			continue
		}
		if _, seen := statusesByID[r.RequestID]; !seen {
			idOrder = append(idOrder, r.RequestID)
		}
		statusesByID[r.RequestID] = append(statusesByID[r.RequestID], r.Status)
	}

	var warnings []model.Warning
	resolved := make(map[string]resolution, len(statusesByID))
	for _, id := range idOrder {
		res, warn := c.resolve(id, statusesByID[id])
		resolved[id] = res
		if warn != nil {
			warnings = append(warnings, *warn)
		}
	}

	// Collapse line items. One row per (request id, ABM, ZBM); the raw
	// data legitimately attaches some request ids to more than one pair,
	// which is tolerated, not rejected.
	type dedupKey struct{ id, abm, zbm string }
	byTriple := make(map[dedupKey]*model.ClassifiedRequest)
	tripleOrder := make([]dedupKey, 0)
	for _, r := range records {
		if !r.HasCriticalIDs() {
			continue
		}
		key := dedupKey{r.RequestID, r.ABMCode, r.ZBMCode}
		req, ok := byTriple[key]
		if !ok {
			res := resolved[r.RequestID]
			req = &model.ClassifiedRequest{
				RequestID:           r.RequestID,
				ABMCode:             r.ABMCode,
				ZBMCode:             r.ZBMCode,
				Answer:              res.answer,
				Statuses:            res.statuses,
				HasPendingSubStatus: res.hasPending,
				First:               r,
			}
			byTriple[key] = req
			tripleOrder = append(tripleOrder, key)
		}
		req.LineItems++
		req.RTOReason = appendReason(req.RTOReason, r.RTOReason)
	}

	out := make([]model.ClassifiedRequest, 0, len(tripleOrder))
	for _, key := range tripleOrder {
		req := byTriple[key]
		if req.Answer == model.AnswerReturned {
			req.ReturnCategory = ResolveReturnCategory(req.RTOReason, c.catchAll)
		}
		out = append(out, *req)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ZBMCode != b.ZBMCode {
			return a.ZBMCode < b.ZBMCode
		}
		if a.ABMCode != b.ABMCode {
			return a.ABMCode < b.ABMCode
		}
		return a.RequestID < b.RequestID
	})

	return model.Classification{
		Requests:         out,
		UniqueRequestIDs: len(statusesByID),
		Warnings:         warnings,
	}
}

// resolve maps one request id's raw statuses to its canonical answer.
func (c *Classifier) resolve(id string, statuses []string) (resolution, *model.Warning) {
	set := rules.NormalizeSet(statuses)
	res := resolution{statuses: set}
	for _, s := range set {
		if s == pendingSubStatus {
			res.hasPending = true
			break
		}
	}

	if answer, ok := c.table.Lookup(set); ok {
		res.answer = answer
		return res, nil
	}

	if c.policy == UnmappedHeuristic {
		if answer, ok := c.heuristic(set); ok {
			res.answer = answer
			return res, &model.Warning{
				Kind:    model.WarnHeuristicFallback,
				Subject: id,
				Detail:  fmt.Sprintf("no rule for {%s}; heuristic chose %q", strings.Join(set, ", "), answer),
			}
		}
	}

	res.answer = model.AnswerUnmapped
	return res, &model.Warning{
		Kind:    model.WarnUnmappedStatus,
		Subject: id,
		Detail:  fmt.Sprintf("no rule for status set {%s}", strings.Join(set, ", ")),
	}
}

// appendReason folds one line item's return reason into the consolidated
// text, keeping distinct values in first-observed order.
func appendReason(existing, raw string) string {
	reason := strings.TrimSpace(raw)
	if reason == "" {
		return existing
	}
	if existing == "" {
		return reason
	}
	for _, have := range strings.Split(existing, ", ") {
		if strings.EqualFold(have, reason) {
			return existing
		}
	}
	return existing + ", " + reason
}
