package rules

import (
	"testing"

	"sampletrack/internal/model"
)

func TestDefaultHeuristic_ProbePrecedence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		statuses []string
		want     string
	}{
		{[]string{"Delivered"}, model.AnswerDelivered},
		{[]string{"Dispatched & In Transit"}, model.AnswerInTransit},
		{[]string{"RTO Initiated"}, model.AnswerReturned},
		{[]string{"Returned to origin"}, model.AnswerReturned},
		{[]string{"Out of Stock"}, model.AnswerOutOfStock},
		{[]string{"Sample Not Permitted"}, model.AnswerNotPermitted},
		{[]string{"On Hold"}, model.AnswerOnHold},
		{[]string{"Dispatch Pending"}, model.AnswerDispatchPending},
		{[]string{"In Process At Hub"}, model.AnswerPendingAtHub},
		{[]string{"Request Raised"}, model.AnswerRequestRaised},
		{[]string{"In Process At HO"}, model.AnswerPendingAtHO},
		// "delivered" outranks "transit" when both appear
		{[]string{"In Transit", "Delivered"}, model.AnswerDelivered},
	}
	for _, tc := range cases {
		got, ok := DefaultHeuristic(tc.statuses)
		if !ok {
			t.Fatalf("%v: expected a hit", tc.statuses)
		}
		if got != tc.want {
			t.Fatalf("%v: want %q got %q", tc.statuses, tc.want, got)
		}
	}
}

func TestDefaultHeuristic_HoldNotShadowedByHO(t *testing.T) {
	t.Parallel()

	// "ho" is a substring of "hold"; the hold probe must win.
	got, ok := DefaultHeuristic([]string{"shipment hold"})
	if !ok || got != model.AnswerOnHold {
		t.Fatalf("want %q got %q ok=%v", model.AnswerOnHold, got, ok)
	}

	got, ok = DefaultHeuristic([]string{"pending at ho"})
	if !ok || got != model.AnswerPendingAtHO {
		t.Fatalf("want %q got %q ok=%v", model.AnswerPendingAtHO, got, ok)
	}
}

func TestDefaultHeuristic_NoMatch(t *testing.T) {
	t.Parallel()

	if _, ok := DefaultHeuristic([]string{"completely unknown"}); ok {
		t.Fatalf("expected no hit")
	}
	if _, ok := DefaultHeuristic(nil); ok {
		t.Fatalf("expected no hit for empty set")
	}
}
