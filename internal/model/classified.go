package model

// Canonical lifecycle answers. These are the exact "Final Answer" strings
// the rule sheet maps status sets to; comparisons happen on the canonical
// form, never on raw tracker text.
const (
	AnswerDelivered       = "Delivered"
	AnswerInTransit       = "Dispatched & In Transit"
	AnswerDispatchPending = "Dispatch Pending"
	AnswerPendingAtHub    = "Action pending / In Process At Hub"
	AnswerPendingAtHO     = "Action pending / In Process At HO"
	AnswerOutOfStock      = "Out of stock"
	AnswerOnHold          = "On hold"
	AnswerNotPermitted    = "Not permitted"
	AnswerRequestRaised   = "Request Raised"
	AnswerReturned        = "Returned"

	// AnswerUnmapped is the sentinel for a status set with no rule-table
	// entry. It is a valid terminal answer: the request still flows through
	// aggregation and surfaces as a tally mismatch there.
	AnswerUnmapped = "Unmapped"
)

// ReturnCategory is the single RTO reason bucket a returned request is
// credited to.
type ReturnCategory int

const (
	ReturnNone ReturnCategory = iota
	ReturnIncompleteAddress
	ReturnDoctorRefused
	ReturnDoctorNonContactable
	ReturnHoldDelivery
)

// String returns the report label for the category.
func (c ReturnCategory) String() string {
	switch c {
	case ReturnIncompleteAddress:
		return "Incomplete Address"
	case ReturnDoctorRefused:
		return "Doctor Refused to Accept"
	case ReturnDoctorNonContactable:
		return "Doctor Non Contactable"
	case ReturnHoldDelivery:
		return "Hold Delivery"
	default:
		return "None"
	}
}

// ClassifiedRequest is one deduplicated request: exactly one row per
// (request id, ABM code, ZBM code) triple. First carries the first-observed
// raw record for pass-through fields (names, emails, doctor codes).
type ClassifiedRequest struct {
	RequestID string
	ABMCode   string
	ZBMCode   string

	// Answer is the resolved canonical status.
	Answer string

	// Statuses is the distinct set of normalized raw statuses observed
	// across the request's line items, in canonical (sorted) order.
	Statuses []string

	// HasPendingSubStatus marks requests whose status set contains the
	// bare "action pending / in process" sub-status. Independent of Answer.
	HasPendingSubStatus bool

	// RTOReason is the consolidated return-reason text (distinct non-empty
	// values joined with commas, first observed first).
	RTOReason string

	// ReturnCategory is assigned by the return-reason resolver for
	// requests whose Answer is AnswerReturned; ReturnNone otherwise.
	ReturnCategory ReturnCategory

	// LineItems is how many raw rows collapsed into this request.
	LineItems int

	First RawRecord
}

// Classification is the full output of one classifier pass.
type Classification struct {
	Requests []ClassifiedRequest

	// UniqueRequestIDs is the organization-wide distinct request-id count.
	// It can be smaller than len(Requests) when source data attaches the
	// same request id to more than one (ABM, ZBM) pair; per-node totals use
	// the triple-keyed rows, org-wide reporting uses this figure.
	UniqueRequestIDs int

	Warnings []Warning
}
