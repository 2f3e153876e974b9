package classify

import (
	"strings"

	"sampletrack/internal/model"
)

// ReturnCatchAll decides where a returned request with no recognizable
// reason text lands. Source data was inconsistent here, so it is a
// configuration choice rather than a guess.
type ReturnCatchAll string

const (
	// CatchAllNone leaves reason-less returns uncategorized; they show up
	// in the RTO-breakdown mismatch diagnostic.
	CatchAllNone ReturnCatchAll = "none"
	// CatchAllNonContactable folds reason-less returns into the doctor
	// non-contactable bucket.
	CatchAllNonContactable ReturnCatchAll = "doctor_non_contactable"
)

// returnProbes are tested in strict priority order; the first substring
// present in the reason text wins, so a request matching several reasons
// is credited exactly once, to the highest-priority bucket.
var returnProbes = []struct {
	token    string
	category model.ReturnCategory
}{
	{"incomplete address", model.ReturnIncompleteAddress},
	{"refused to accept", model.ReturnDoctorRefused},
	{"non contactable", model.ReturnDoctorNonContactable},
	{"hold delivery", model.ReturnHoldDelivery},
}

// ResolveReturnCategory assigns one return-reason bucket from the
// consolidated reason text. Matching is plain case-insensitive substring
// containment, nothing fuzzier.
func ResolveReturnCategory(reason string, catchAll ReturnCatchAll) model.ReturnCategory {
	text := strings.ToLower(reason)
	for _, p := range returnProbes {
		if strings.Contains(text, p.token) {
			return p.category
		}
	}
	if catchAll == CatchAllNonContactable {
		return model.ReturnDoctorNonContactable
	}
	return model.ReturnNone
}
