package rules

import (
	"fmt"
	"strings"

	"sampletrack/internal/model"
)

// answerHeaders are the accepted spellings of the rule sheet's answer
// column.
var answerHeaders = []string{"final answer", "answer"}

// Table maps a canonical, order-independent status set to one final
// answer. It is a partial function: misses return AnswerUnmapped via the
// classifier, never an error.
type Table struct {
	entries map[string]string
}

// Key builds the lookup key for a status set: normalized, deduplicated,
// sorted, joined with a separator no tracker status contains.
func Key(statuses []string) string {
	return strings.Join(NormalizeSet(statuses), "\x1f")
}

// Load builds a Table from a rule sheet: a header row with one answer
// column and N status columns, then one rule per data row. Rows whose
// answer cell is blank are skipped. When two rows reduce to the same key
// with different answers the later row wins and a duplicate-rule warning
// is recorded.
func Load(header []string, dataRows [][]string) (*Table, []model.Warning, error) {
	answerIdx := -1
	for i, h := range header {
		n := Normalize(h)
		for _, want := range answerHeaders {
			if n == want {
				answerIdx = i
				break
			}
		}
		if answerIdx >= 0 {
			break
		}
	}
	if answerIdx < 0 {
		return nil, nil, &model.LoadError{
			Source: "rule sheet",
			Err:    fmt.Errorf("no answer column among headers %v", header),
		}
	}

	t := &Table{entries: make(map[string]string, len(dataRows))}
	var warnings []model.Warning

	for _, row := range dataRows {
		if answerIdx >= len(row) {
			continue
		}
		answer := strings.TrimSpace(row[answerIdx])
		if answer == "" {
			continue
		}

		statuses := make([]string, 0, len(row))
		for i, cell := range row {
			if i == answerIdx {
				continue
			}
			statuses = append(statuses, cell)
		}
		key := Key(statuses)
		if key == "" {
			continue
		}

		if prev, ok := t.entries[key]; ok && prev != answer {
			warnings = append(warnings, model.Warning{
				Kind:    model.WarnDuplicateRule,
				Subject: strings.ReplaceAll(key, "\x1f", " + "),
				Detail:  fmt.Sprintf("answer %q overwrites earlier %q", answer, prev),
			})
		}
		t.entries[key] = answer
	}

	return t, warnings, nil
}

// Lookup resolves a raw status set to its final answer.
func (t *Table) Lookup(statuses []string) (string, bool) {
	answer, ok := t.entries[Key(statuses)]
	return answer, ok
}

// Len reports the number of distinct rule keys loaded.
func (t *Table) Len() int {
	return len(t.entries)
}
