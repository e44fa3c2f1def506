package reports

import (
	"sort"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/models"
)

// SellerRollup aggregates a seller's contracts. The count spans every
// status; the money figures span qualifying statuses only.
type SellerRollup struct {
	SellerEmail string `json:"sellerEmail"`
	Count       int    `json:"count"`
	RetailCents int64  `json:"retailCents"`
	CostCents   int64  `json:"costCents"`
	MarginCents int64  `json:"marginCents"`
}

// RollupBySeller groups contracts by normalized seller email (seller first,
// creator as fallback) and returns rollups sorted by count descending. Ties
// keep first-seen group order, so output is deterministic for a given input
// ordering.
func RollupBySeller(contracts []models.Contract) []SellerRollup {
	index := make(map[string]int)
	rollups := make([]SellerRollup, 0)

	for i := range contracts {
		c := &contracts[i]
		email := c.SellerEmail()
		at, ok := index[email]
		if !ok {
			at = len(rollups)
			index[email] = at
			rollups = append(rollups, SellerRollup{SellerEmail: email})
		}
		r := &rollups[at]
		r.Count++
		if Qualifies(c.Status) {
			r.RetailCents += c.RetailCents()
			r.CostCents += c.CostCents()
			r.MarginCents = r.RetailCents - r.CostCents
		}
	}

	sort.SliceStable(rollups, func(i, j int) bool {
		return rollups[i].Count > rollups[j].Count
	})
	return rollups
}
