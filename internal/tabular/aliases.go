package tabular

import (
	"regexp"
	"strings"

	"sampletrack/internal/model"
)

// Field is a logical master-tracker column.
type Field string

const (
	FieldRequestID       Field = "request_id"
	FieldStatus          Field = "status"
	FieldRTOReason       Field = "rto_reason"
	FieldTBMHQ           Field = "tbm_hq"
	FieldTBMEmail        Field = "tbm_email"
	FieldABMCode         Field = "abm_code"
	FieldABMName         Field = "abm_name"
	FieldABMEmail        Field = "abm_email"
	FieldZBMCode         Field = "zbm_code"
	FieldZBMName         Field = "zbm_name"
	FieldZBMEmail        Field = "zbm_email"
	FieldDivision        Field = "division"
	FieldDivisionName    Field = "division_name"
	FieldAffiliate       Field = "affiliate"
	FieldDoctorCode      Field = "doctor_code"
	FieldDoctorSAPCode   Field = "doctor_sap_code"
	FieldDoctorName      Field = "doctor_name"
	FieldCreatedBy       Field = "created_by"
	FieldItemCode        Field = "item_code"
	FieldSKU             Field = "sku"
	FieldQuantity        Field = "quantity"
	FieldDate            Field = "date"
	FieldMonth           Field = "month"
	FieldInvoiceNo       Field = "invoice_no"
	FieldInvoiceDate     Field = "invoice_date"
	FieldDispatchDate    Field = "dispatch_date"
	FieldDeliveryDate    Field = "delivery_date"
	FieldDocketNumber    Field = "docket_number"
	FieldTransporterName Field = "transporter_name"
)

// fieldAlias lists the accepted header spellings for one logical field.
// Exact matches run on the normalized header; contains is a last-resort
// substring probe for fields the source system renames freely.
type fieldAlias struct {
	field    Field
	exact    []string
	contains string
	required bool
}

var fieldAliases = []fieldAlias{
	{FieldRequestID, []string{"assigned request ids", "request id", "request ids"}, "", true},
	{FieldStatus, []string{"request status", "status"}, "", true},
	{FieldRTOReason, []string{"rto reason"}, "", true},
	{FieldTBMHQ, []string{"tbm hq"}, "", true},
	{FieldTBMEmail, []string{"tbm email_id", "tbm email"}, "", false},
	{FieldABMCode, []string{"abm terr code", "abm code"}, "", true},
	{FieldABMName, []string{"abm name"}, "", true},
	{FieldABMEmail, []string{"abm email_id", "abm email"}, "", false},
	{FieldZBMCode, []string{"zbm terr code", "zbm code"}, "", true},
	{FieldZBMName, []string{"zbm name"}, "", true},
	{FieldZBMEmail, []string{"zbm email_id", "zbm email"}, "", false},
	{FieldDivision, []string{"tbm division", "division"}, "", true},
	{FieldDivisionName, []string{"div_name", "division name"}, "", false},
	{FieldAffiliate, []string{"affiliate"}, "", false},
	{FieldDoctorCode, []string{"doctor: customer code", "customer code"}, "", true},
	{FieldDoctorSAPCode, []string{"doctor: sap customer code(new)", "sap customer code"}, "", false},
	{FieldDoctorName, []string{"doctor: account name", "account name"}, "", false},
	{FieldCreatedBy, []string{"input sample request: created by"}, "created by", false},
	{FieldItemCode, []string{"item code"}, "", false},
	{FieldSKU, []string{"sku"}, "", false},
	{FieldQuantity, []string{"requested quantity", "quantity"}, "", false},
	{FieldDate, []string{"date"}, "", false},
	{FieldMonth, []string{"month"}, "", false},
	{FieldInvoiceNo, []string{"invoice #", "invoice no", "invoice number"}, "", false},
	{FieldInvoiceDate, []string{"invoice date"}, "", false},
	{FieldDispatchDate, []string{"dispatch date"}, "", false},
	{FieldDeliveryDate, []string{"delivery date"}, "", false},
	{FieldDocketNumber, []string{"docket number"}, "", false},
	{FieldTransporterName, []string{"transporter name"}, "", false},
}

var headerSpaceRe = regexp.MustCompile(`\s+`)

// normalizeHeader canonicalizes a header cell for alias matching: trim,
// lower-case, collapse internal whitespace.
func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	return headerSpaceRe.ReplaceAllString(h, " ")
}

// ResolveColumns maps every logical field to its column index in the
// header. Missing required fields abort with a MissingColumnsError
// naming everything absent and everything present, resolved once up
// front so nothing fails deep in processing.
func ResolveColumns(source string, header []string) (map[Field]int, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
	}

	cols := make(map[Field]int, len(fieldAliases))
	var missing []string
	for _, alias := range fieldAliases {
		idx := -1
		for i, h := range normalized {
			if h == "" {
				continue
			}
			for _, want := range alias.exact {
				if h == want {
					idx = i
					break
				}
			}
			if idx >= 0 {
				break
			}
		}
		if idx < 0 && alias.contains != "" {
			for i, h := range normalized {
				if strings.Contains(h, alias.contains) {
					idx = i
					break
				}
			}
		}
		if idx < 0 {
			if alias.required {
				missing = append(missing, alias.exact[0])
			}
			continue
		}
		cols[alias.field] = idx
	}

	if len(missing) > 0 {
		present := make([]string, 0, len(header))
		for _, h := range header {
			if strings.TrimSpace(h) != "" {
				present = append(present, strings.TrimSpace(h))
			}
		}
		return nil, &model.MissingColumnsError{
			Source:  source,
			Missing: missing,
			Present: present,
		}
	}
	return cols, nil
}
