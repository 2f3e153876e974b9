package aggregate

import (
	"sort"

	"sampletrack/internal/model"
)

// Level selects the grouping key for one aggregation pass.
type Level int

const (
	LevelABM Level = iota
	LevelZBM
	LevelDivision
)

// String returns the level label used in diagnostics and report names.
func (l Level) String() string {
	switch l {
	case LevelABM:
		return "ABM"
	case LevelZBM:
		return "ZBM"
	default:
		return "Division"
	}
}

// keyOf extracts the grouping key for a request at this level.
func (l Level) keyOf(r *model.ClassifiedRequest) string {
	switch l {
	case LevelABM:
		return r.ABMCode
	case LevelZBM:
		return r.ZBMCode
	default:
		return r.First.Division
	}
}

// nameOf extracts the display name carried by a request for this level.
func (l Level) nameOf(r *model.ClassifiedRequest) string {
	switch l {
	case LevelABM:
		return r.First.ABMName
	case LevelZBM:
		return r.First.ZBMName
	default:
		return r.First.DivisionName
	}
}

// emailOf extracts the recipient address carried by a request for this
// level. Divisions have no address in the tracker; their routing comes
// from the recipients file.
func (l Level) emailOf(r *model.ClassifiedRequest) string {
	switch l {
	case LevelABM:
		return r.First.ABMEmail
	case LevelZBM:
		return r.First.ZBMEmail
	default:
		return ""
	}
}

// Entity is one hierarchy node at a level together with the deduplicated
// requests assigned to it. Name and Email are majority picks across the
// node's requests: source data occasionally spells a manager's name two
// ways under one code.
type Entity struct {
	Key      string
	Name     string
	Email    string
	Requests []model.ClassifiedRequest
}

// Entities partitions requests by the level's grouping key, ordered by
// key.
func Entities(requests []model.ClassifiedRequest, level Level) []Entity {
	byKey := make(map[string][]model.ClassifiedRequest)
	keys := make([]string, 0)
	for _, r := range requests {
		k := level.keyOf(&r)
		if k == "" {
			continue
		}
		if _, ok := byKey[k]; !ok {
			keys = append(keys, k)
		}
		byKey[k] = append(byKey[k], r)
	}
	sort.Strings(keys)

	out := make([]Entity, 0, len(keys))
	for _, k := range keys {
		group := byKey[k]
		out = append(out, Entity{
			Key:      k,
			Name:     majority(group, level.nameOf),
			Email:    majority(group, level.emailOf),
			Requests: group,
		})
	}
	return out
}

// Summarize aggregates requests into one row per group at the given
// level, sorted by key, with a synthetic Total row appended. Category
// counts on the Total row are sums of the data rows; its unique doctor
// and TBM counts are set cardinalities across the whole input, so a
// doctor shared by two groups is counted once.
func Summarize(requests []model.ClassifiedRequest, level Level) []model.AggregateRow {
	entities := Entities(requests, level)

	rows := make([]model.AggregateRow, 0, len(entities)+1)
	for _, e := range entities {
		row := tally(e.Requests)
		row.Key = e.Key
		row.Name = e.Name
		rows = append(rows, row)
	}

	total := tally(requests)
	total.Name = "Total"
	total.IsTotal = true
	rows = append(rows, total)
	return rows
}

// tally counts one group of requests into an AggregateRow. The named
// categories are counted from observed answers; Dispatched, SentToHub and
// Total are derived from the identity chain so the rollup reconciles by
// construction.
func tally(requests []model.ClassifiedRequest) model.AggregateRow {
	var row model.AggregateRow
	doctors := make(map[string]struct{})
	tbms := make(map[string]struct{})

	for _, r := range requests {
		row.Requests++
		if code := r.First.DoctorCode; code != "" {
			doctors[code] = struct{}{}
		}
		if tbm := r.First.TBMEmail; tbm != "" {
			tbms[tbm] = struct{}{}
		}

		switch model.CategoryFor(r.Answer) {
		case model.CategoryCancelled:
			row.Cancelled++
		case model.CategoryActionPendingHO:
			row.ActionPendingHO++
		case model.CategoryPendingInvoicing:
			row.PendingInvoicing++
		case model.CategoryPendingDispatch:
			row.PendingDispatch++
		case model.CategoryDelivered:
			row.Delivered++
		case model.CategoryInTransit:
			row.InTransit++
		case model.CategoryRTO:
			row.RTO++
			switch r.ReturnCategory {
			case model.ReturnIncompleteAddress:
				row.IncompleteAddress++
			case model.ReturnDoctorRefused:
				row.DoctorRefused++
			case model.ReturnDoctorNonContactable:
				row.DoctorNonContactable++
			case model.ReturnHoldDelivery:
				row.HoldDelivery++
			}
		default:
			row.Unmapped++
			row.UnmappedRequestIDs = append(row.UnmappedRequestIDs, r.RequestID)
		}
	}

	row.UniqueDoctors = len(doctors)
	row.UniqueTBMs = len(tbms)

	row.Dispatched = row.Delivered + row.InTransit + row.RTO
	row.SentToHub = row.PendingInvoicing + row.PendingDispatch + row.Dispatched
	row.Total = row.Cancelled + row.ActionPendingHO + row.SentToHub
	return row
}

// majority returns the most frequent non-empty value fn yields over the
// group, first observed winning ties.
func majority(requests []model.ClassifiedRequest, fn func(*model.ClassifiedRequest) string) string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, r := range requests {
		v := fn(&r)
		if v == "" {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best := ""
	bestCount := 0
	for _, v := range order {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}
