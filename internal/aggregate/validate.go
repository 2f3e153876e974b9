package aggregate

import (
	"fmt"
	"strings"

	"sampletrack/internal/model"
)

// Validate recomputes one row's identities and reports every mismatch.
// Nothing is fixed or dropped: the row goes out with its observed counts
// and the discrepancies travel alongside it for manual investigation.
func Validate(row model.AggregateRow, level Level) []model.Warning {
	subject := fmt.Sprintf("%s %s", level, row.Key)
	if row.IsTotal {
		subject = fmt.Sprintf("%s Total", level)
	}

	var warnings []model.Warning

	if row.Total != row.Requests {
		detail := fmt.Sprintf(
			"computed total %d != observed requests %d (cancelled=%d pendingHO=%d pendingInvoicing=%d pendingDispatch=%d delivered=%d inTransit=%d rto=%d unmapped=%d)",
			row.Total, row.Requests,
			row.Cancelled, row.ActionPendingHO, row.PendingInvoicing,
			row.PendingDispatch, row.Delivered, row.InTransit, row.RTO,
			row.Unmapped)
		if len(row.UnmappedRequestIDs) > 0 {
			detail += "; unmapped requests: " + strings.Join(row.UnmappedRequestIDs, ", ")
		}
		warnings = append(warnings, model.Warning{
			Kind:    model.WarnTallyMismatch,
			Subject: subject,
			Detail:  detail,
		})
	}

	breakdown := row.IncompleteAddress + row.DoctorRefused + row.DoctorNonContactable + row.HoldDelivery
	if breakdown != row.RTO {
		warnings = append(warnings, model.Warning{
			Kind:    model.WarnRTOBreakdown,
			Subject: subject,
			Detail: fmt.Sprintf(
				"rto sub-reasons sum %d != rto count %d (incompleteAddress=%d refused=%d nonContactable=%d holdDelivery=%d)",
				breakdown, row.RTO,
				row.IncompleteAddress, row.DoctorRefused,
				row.DoctorNonContactable, row.HoldDelivery),
		})
	}

	return warnings
}

// ValidateAll validates every row of one level's output.
func ValidateAll(rows []model.AggregateRow, level Level) []model.Warning {
	var warnings []model.Warning
	for _, row := range rows {
		warnings = append(warnings, Validate(row, level)...)
	}
	return warnings
}
