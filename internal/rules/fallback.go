package rules

import (
	"strings"

	"sampletrack/internal/model"
)

// Heuristic resolves a normalized status set to an answer when the rule
// table has no entry for it. Implementations return false when they
// cannot decide either.
type Heuristic func(statuses []string) (string, bool)

// fallbackProbe is one substring test of the default heuristic. Probes
// run in order; the first hit wins, so the more specific tokens come
// before the generic ones ("transit" before "dispatch").
type fallbackProbe struct {
	token  string
	answer string
}

var fallbackProbes = []fallbackProbe{
	{"deliver", model.AnswerDelivered},
	{"transit", model.AnswerInTransit},
	{"rto", model.AnswerReturned},
	{"return", model.AnswerReturned},
	{"out of stock", model.AnswerOutOfStock},
	{"not permitted", model.AnswerNotPermitted},
	{"hold", model.AnswerOnHold},
	{"dispatch pending", model.AnswerDispatchPending},
	{"hub", model.AnswerPendingAtHub},
	{"raised", model.AnswerRequestRaised},
	// "ho" is a substring of "hold", so it must stay last.
	{"ho", model.AnswerPendingAtHO},
}

// DefaultHeuristic is the hardcoded fallback mapping used when the rule
// sheet is unreadable, or for rule misses under the heuristic_fallback
// policy. It is deliberately coarse: substring probes over the joined
// status set. Every hit is reported by the classifier as a
// heuristic-fallback warning.
func DefaultHeuristic(statuses []string) (string, bool) {
	joined := strings.Join(NormalizeSet(statuses), " ")
	if joined == "" {
		return "", false
	}
	for _, p := range fallbackProbes {
		if strings.Contains(joined, p.token) {
			return p.answer, true
		}
	}
	return "", false
}
