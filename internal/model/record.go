package model

// RawRecord is one line item from the master tracker. A single sample
// request usually spans several line items (one per SKU), so many
// RawRecords can share a RequestID.
type RawRecord struct {
	RequestID string
	Status    string
	RTOReason string

	// Hierarchy
	TBMHQ        string
	TBMEmail     string
	ABMCode      string
	ABMName      string
	ABMEmail     string
	ZBMCode      string
	ZBMName      string
	ZBMEmail     string
	Division     string
	DivisionName string
	Affiliate    string

	// Doctor / creator
	DoctorCode    string
	DoctorSAPCode string
	DoctorName    string
	CreatedBy     string

	// Line item detail, passed through to consolidated extracts
	ItemCode        string
	SKU             string
	Quantity        string
	Date            string
	Month           string
	InvoiceNo       string
	InvoiceDate     string
	DispatchDate    string
	DeliveryDate    string
	DocketNumber    string
	TransporterName string
}

// HasCriticalIDs reports whether the record carries the identifiers the
// pipeline groups on. Records missing any of them are filtered out before
// classification, mirroring the source tracker's cleaning pass.
func (r *RawRecord) HasCriticalIDs() bool {
	return r.RequestID != "" && r.ABMCode != "" && r.ZBMCode != ""
}
