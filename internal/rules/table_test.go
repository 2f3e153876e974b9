package rules

import (
	"errors"
	"testing"

	"sampletrack/internal/model"
)

func TestKey_OrderCaseAndSpacingInsensitive(t *testing.T) {
	t.Parallel()

	a := Key([]string{"Delivered", "RTO"})
	b := Key([]string{" rto ", "DELIVERED"})
	if a != b {
		t.Fatalf("keys differ: %q vs %q", a, b)
	}

	c := Key([]string{"Delivered", "Delivered", ""})
	d := Key([]string{"delivered"})
	if c != d {
		t.Fatalf("dedup/blank handling: %q vs %q", c, d)
	}
}

func TestLoad_ResolvesAnswerColumnByAlias(t *testing.T) {
	t.Parallel()

	header := []string{"Status 1", "Status 2", "Final Answer"}
	rows := [][]string{
		{"Delivered", "", "Delivered"},
		{"Delivered", "RTO", "Returned"},
	}
	table, warnings, err := Load(header, rows)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if table.Len() != 2 {
		t.Fatalf("want 2 rules, got %d", table.Len())
	}

	answer, ok := table.Lookup([]string{"rto", "delivered"})
	if !ok || answer != "Returned" {
		t.Fatalf("lookup rto+delivered: got %q ok=%v", answer, ok)
	}
}

func TestLoad_MissingAnswerColumn(t *testing.T) {
	t.Parallel()

	_, _, err := Load([]string{"Status 1", "Status 2"}, nil)
	if err == nil {
		t.Fatalf("expected error for missing answer column")
	}
	var le *model.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("want LoadError, got %T", err)
	}
}

func TestLoad_DuplicateRuleLastWins(t *testing.T) {
	t.Parallel()

	header := []string{"Status", "Answer"}
	rows := [][]string{
		{"On Hold", "On hold"},
		{"on hold ", "Not permitted"},
	}
	table, warnings, err := Load(header, rows)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(warnings) != 1 || warnings[0].Kind != model.WarnDuplicateRule {
		t.Fatalf("want one duplicate-rule warning, got %v", warnings)
	}
	if answer, _ := table.Lookup([]string{"On Hold"}); answer != "Not permitted" {
		t.Fatalf("later rule should win, got %q", answer)
	}
}

func TestLoad_SkipsBlankAnswerAndEmptyRows(t *testing.T) {
	t.Parallel()

	header := []string{"Status", "Final Answer"}
	rows := [][]string{
		{"Delivered", ""},
		{"", "Delivered"},
		{"Delivered", "Delivered"},
	}
	table, _, err := Load(header, rows)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("want 1 rule, got %d", table.Len())
	}
}

func TestLookup_MissReturnsFalse(t *testing.T) {
	t.Parallel()

	table, _, err := Load([]string{"Status", "Answer"}, [][]string{{"Delivered", "Delivered"}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := table.Lookup([]string{"never seen"}); ok {
		t.Fatalf("expected miss")
	}
}
