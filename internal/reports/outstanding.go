package reports

import "github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/models"

// OutstandingCents sums batch totals that a dealer still owes: batches that
// are closed but not yet paid. dealerID scopes the sum; empty means all
// dealers (platform admin view).
func OutstandingCents(batches []models.Batch, dealerID string) int64 {
	var sum int64
	for i := range batches {
		b := &batches[i]
		if dealerID != "" && b.DealerID != dealerID {
			continue
		}
		if b.Outstanding() {
			sum += b.TotalCents
		}
	}
	return sum
}
