package tabular

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"sampletrack/internal/model"
	"sampletrack/internal/rules"
)

// ReadRules loads the rule sheet from the workbook at path and builds
// the rule table. Callers decide what a LoadError means: the pipeline
// substitutes the hardcoded heuristic and keeps going.
func ReadRules(path, sheet string) (*rules.Table, []model.Warning, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, &model.LoadError{Source: "rule sheet", Err: err}
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, &model.LoadError{Source: "rule sheet", Err: fmt.Errorf("sheet %q: %w", sheet, err)}
	}
	if len(rows) < 2 {
		return nil, nil, &model.LoadError{Source: "rule sheet", Err: fmt.Errorf("sheet %q has no rule rows", sheet)}
	}

	return rules.Load(rows[0], rows[1:])
}
