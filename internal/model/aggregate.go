package model

// AggregateRow is one hierarchy group's tallies: an ABM under a ZBM, a ZBM
// under a Division, or a whole Division. The derived fields (Dispatched,
// SentToHub, Total) are computed from the identities below, never counted
// independently, so child sums always reconcile with parent totals.
//
//	Dispatched = Delivered + InTransit + RTO
//	SentToHub  = PendingInvoicing + PendingDispatch + Dispatched
//	Total      = Cancelled + ActionPendingHO + SentToHub
//	RTO        = IncompleteAddress + DoctorRefused + DoctorNonContactable + HoldDelivery
type AggregateRow struct {
	Key  string
	Name string

	UniqueDoctors int
	UniqueTBMs    int

	Total            int
	Cancelled        int
	ActionPendingHO  int
	SentToHub        int
	PendingInvoicing int
	PendingDispatch  int
	Dispatched       int
	Delivered        int
	InTransit        int
	RTO              int

	IncompleteAddress    int
	DoctorRefused        int
	DoctorNonContactable int
	HoldDelivery         int

	// Unmapped counts requests whose Answer belongs to no named category.
	// Any non-zero value here shows up as a tally mismatch against the
	// group's observed request count. UnmappedRequestIDs names them so the
	// mismatch diagnostic points straight at the offending requests.
	Unmapped           int
	UnmappedRequestIDs []string

	// Requests is the observed deduplicated request count for the group,
	// kept separate from the computed Total so mismatches stay visible.
	Requests int

	// IsTotal marks the synthetic Total row appended after the data rows.
	IsTotal bool
}

// CategoryFor maps a canonical answer to the named-category counter it
// belongs to. The category sets partition the answer space: every answer
// lands in exactly one bucket, or in none for AnswerUnmapped.
func CategoryFor(answer string) string {
	switch answer {
	case AnswerOutOfStock, AnswerOnHold, AnswerNotPermitted:
		return CategoryCancelled
	case AnswerRequestRaised, AnswerPendingAtHO:
		return CategoryActionPendingHO
	case AnswerPendingAtHub:
		return CategoryPendingInvoicing
	case AnswerDispatchPending:
		return CategoryPendingDispatch
	case AnswerDelivered:
		return CategoryDelivered
	case AnswerInTransit:
		return CategoryInTransit
	case AnswerReturned:
		return CategoryRTO
	default:
		return CategoryUnmapped
	}
}

// Named category identifiers used by the aggregator and validator.
const (
	CategoryCancelled        = "cancelled_out_of_stock"
	CategoryActionPendingHO  = "action_pending_ho"
	CategoryPendingInvoicing = "pending_invoicing"
	CategoryPendingDispatch  = "pending_dispatch"
	CategoryDelivered        = "delivered"
	CategoryInTransit        = "in_transit"
	CategoryRTO              = "rto"
	CategoryUnmapped         = "unmapped"
)
