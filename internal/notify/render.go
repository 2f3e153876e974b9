package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"sampletrack/internal/model"
	"sampletrack/internal/tabular"
)

// summaryTableTmpl mirrors the spreadsheet layout: shaded header row,
// one row per group, shaded bold Total row.
var summaryTableTmpl = template.Must(template.New("summary_table").Parse(`<table border="1" cellpadding="5" cellspacing="0" style="border-collapse: collapse; font-family: Arial, sans-serif; font-size: 11px;">
  <thead>
    <tr style="background-color: #D3D3D3; font-weight: bold; text-align: center;">
{{- range .Headers}}
      <th style="padding: 8px; border: 1px solid #000;">{{.}}</th>
{{- end}}
    </tr>
  </thead>
  <tbody>
{{- range .Rows}}
    <tr{{if .IsTotal}} style="font-weight: bold; background-color: #E6E6E6;"{{end}}>
{{- range .Cells}}
      <td style="padding: 5px; border: 1px solid #000; text-align: center;">{{.}}</td>
{{- end}}
    </tr>
{{- end}}
  </tbody>
</table>`))

var emailBodyTmpl = template.Must(template.New("email_body").Parse(`<html>
<body style="font-family: Arial, sans-serif; font-size: 12px; color: #222;">
<p>Dear {{.Name}},</p>
<p>Please find below the sample dispatch summary for {{.Label}} <b>{{.Key}}</b> as of {{.AsOf}}.
The detailed consolidated file is attached.</p>
{{.Table}}
<p>This is an automated report. Please reply to the sender for any discrepancy.</p>
</body>
</html>`))

type renderedRow struct {
	Cells   []string
	IsTotal bool
}

// RenderSummaryTable renders aggregate rows as an HTML table using the
// same column layout the spreadsheet report uses.
func RenderSummaryTable(columns []tabular.SummaryColumn, rows []model.AggregateRow) (template.HTML, error) {
	data := struct {
		Headers []string
		Rows    []renderedRow
	}{}
	for _, col := range columns {
		data.Headers = append(data.Headers, col.Header)
	}
	for _, row := range rows {
		r := renderedRow{IsTotal: row.IsTotal}
		for _, col := range columns {
			r.Cells = append(r.Cells, fmt.Sprint(col.Value(row)))
		}
		data.Rows = append(data.Rows, r)
	}

	var buf bytes.Buffer
	if err := summaryTableTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render summary table: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// RenderEmailBody wraps a rendered summary table in the standard email
// body. label names the entity kind ("ZBM", "Division").
func RenderEmailBody(name, label, key, asOf string, table template.HTML) (string, error) {
	var buf bytes.Buffer
	err := emailBodyTmpl.Execute(&buf, struct {
		Name, Label, Key, AsOf string
		Table                  template.HTML
	}{name, label, key, asOf, table})
	if err != nil {
		return "", fmt.Errorf("render email body: %w", err)
	}
	return buf.String(), nil
}
