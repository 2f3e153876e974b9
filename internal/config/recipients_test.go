package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRecipients_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	r, err := LoadRecipients(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(r.DivisionEmails) != 0 || len(r.DefaultCC) != 0 {
		t.Fatalf("expected empty routing table: %+v", r)
	}
}

func TestLoadRecipients_Parse(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "recipients.yaml")
	content := `
division_emails:
  DIV1: head.div1@example.com
affiliate_cc:
  ACME:
    - ops@example.com
default_cc:
  - samples@example.com
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r, err := LoadRecipients(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if r.DivisionEmails["DIV1"] != "head.div1@example.com" {
		t.Fatalf("division email: %q", r.DivisionEmails["DIV1"])
	}
}

func TestCCFor_DedupesAndOrders(t *testing.T) {
	t.Parallel()

	r := &Recipients{
		DefaultCC:   []string{"samples@example.com", "ops@example.com"},
		AffiliateCC: map[string][]string{"ACME": {"ops@example.com", "acme@example.com"}},
	}
	got := r.CCFor("ACME")
	want := []string{"samples@example.com", "ops@example.com", "acme@example.com"}
	if len(got) != len(want) {
		t.Fatalf("cc list: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cc list: want %v got %v", want, got)
		}
	}

	if got := r.CCFor("UNKNOWN"); len(got) != 2 {
		t.Fatalf("unknown affiliate should still get defaults: %v", got)
	}
}
