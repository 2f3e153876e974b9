package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Recipients is the routing file for outbound summaries: who receives
// each Division report and which CC lists apply per affiliate. ZBM
// addresses come from the tracker itself, so they are not listed here.
type Recipients struct {
	// DivisionEmails maps a Division code to its recipient address.
	DivisionEmails map[string]string `yaml:"division_emails"`

	// AffiliateCC maps an affiliate name to extra CC addresses for its
	// divisions' reports.
	AffiliateCC map[string][]string `yaml:"affiliate_cc"`

	// DefaultCC is always added to the CC list.
	DefaultCC []string `yaml:"default_cc"`
}

// LoadRecipients reads the YAML routing file. A missing file yields an
// empty routing table, which simply means Division emails are skipped.
func LoadRecipients(path string) (*Recipients, error) {
	r := &Recipients{}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read recipients: %w", err)
	}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return r, nil
}

// CCFor assembles the CC list for one division's report: the default CC
// list plus the affiliate's, deduplicated in order.
func (r *Recipients) CCFor(affiliate string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(addrs []string) {
		for _, a := range addrs {
			if a == "" {
				continue
			}
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	add(r.DefaultCC)
	add(r.AffiliateCC[affiliate])
	return out
}
