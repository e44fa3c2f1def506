package reports

import (
	"time"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/models"
)

// EffectiveDate picks the date a contract is reported under: the first
// present value among sold, remitted, paid, updated, and created timestamps.
// Returns the zero time when none is usable.
func EffectiveDate(c *models.Contract) time.Time {
	for _, t := range []*time.Time{c.SoldAt, c.RemittedAt, c.PaidAt} {
		if t != nil && !t.IsZero() {
			return *t
		}
	}
	if !c.UpdatedAt.IsZero() {
		return c.UpdatedAt
	}
	return c.CreatedAt
}

// InRange reports whether the contract's effective date falls within
// [start, end] at day granularity. The end boundary is made inclusive by
// advancing it one calendar day and comparing strictly less-than, so a
// record stamped anywhere on the end date passes. A contract with no usable
// date is always in range; hiding malformed records from reports would make
// them invisible exactly when someone needs to find them.
func InRange(c *models.Contract, start, end time.Time) bool {
	at := EffectiveDate(c)
	if at.IsZero() {
		return true
	}
	if !start.IsZero() && at.Before(start) {
		return false
	}
	if !end.IsZero() && !at.Before(end.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// FilterByDate returns the contracts whose effective date falls within the
// inclusive [start, end] day range. Zero boundaries leave that side open.
func FilterByDate(contracts []models.Contract, start, end time.Time) []models.Contract {
	out := make([]models.Contract, 0, len(contracts))
	for i := range contracts {
		if InRange(&contracts[i], start, end) {
			out = append(out, contracts[i])
		}
	}
	return out
}
