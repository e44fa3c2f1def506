// Package reports derives financial totals, per-seller rollups, and
// outstanding balances from contract and batch collections. Everything here
// is pure: inputs in, values out, no storage access and no errors. Empty or
// malformed input degrades to zero values rather than failing.
package reports

import "github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/models"

// qualifying lists the contract statuses that contribute to revenue and
// cost totals. DRAFT contracts are unconfirmed sales: they are counted per
// status but never summed.
var qualifying = map[string]bool{
	models.ContractStatusSold:     true,
	models.ContractStatusRemitted: true,
	models.ContractStatusPaid:     true,
}

// Qualifies reports whether a contract in the given status contributes to
// financial totals.
func Qualifies(status string) bool {
	return qualifying[status]
}

// Totals summarizes a contract set. Counts cover every status; the money
// figures cover qualifying statuses only.
type Totals struct {
	CountByStatus map[string]int `json:"countByStatus"`
	Count         int            `json:"count"`
	RetailCents   int64          `json:"retailCents"`
	CostCents     int64          `json:"costCents"`
	MarginCents   int64          `json:"marginCents"`
}

// Summarize computes totals over the given contracts.
func Summarize(contracts []models.Contract) Totals {
	t := Totals{CountByStatus: make(map[string]int)}
	for i := range contracts {
		c := &contracts[i]
		t.Count++
		t.CountByStatus[c.Status]++
		if !Qualifies(c.Status) {
			continue
		}
		t.RetailCents += c.RetailCents()
		t.CostCents += c.CostCents()
	}
	t.MarginCents = t.RetailCents - t.CostCents
	return t
}
