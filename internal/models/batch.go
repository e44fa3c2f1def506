package models

import (
	"time"

	"gorm.io/datatypes"
)

// Batch statuses. Status and payment status are independent axes: a batch is
// first CLOSED (freezing membership and totals), then marked PAID.
const (
	BatchStatusOpen   = "OPEN"
	BatchStatusClosed = "CLOSED"

	BatchPaymentUnpaid = "UNPAID"
	BatchPaymentPaid   = "PAID"
)

// Batch groups a dealer's contracts for remittance/payment reconciliation.
// Membership is a snapshot of contract identifiers, fixed once the batch is
// closed.
type Batch struct {
	ID            string                      `gorm:"primaryKey;size:36" json:"id"`
	BatchNumber   string                      `gorm:"size:64;not null" json:"batchNumber"`
	DealerID      string                      `gorm:"size:36;index" json:"dealerId,omitempty"`
	Status        string                      `gorm:"size:16;not null;index" json:"status"`
	PaymentStatus string                      `gorm:"size:16;not null" json:"paymentStatus"`
	ContractIDs   datatypes.JSONSlice[string] `json:"contractIds"`
	SubtotalCents int64                       `json:"subtotalCents"`
	TaxRatePct    float64                     `json:"taxRatePct"`
	TaxCents      int64                       `json:"taxCents"`
	TotalCents    int64                       `json:"totalCents"`
	PaidAt        *time.Time                  `json:"paidAt,omitempty"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

// Contains reports whether the batch membership includes the contract.
func (b *Batch) Contains(contractID string) bool {
	for _, id := range b.ContractIDs {
		if id == contractID {
			return true
		}
	}
	return false
}

// Outstanding reports whether the batch counts toward a dealer's outstanding
// balance: closed but not yet paid.
func (b *Batch) Outstanding() bool {
	return b.Status == BatchStatusClosed && b.PaymentStatus == BatchPaymentUnpaid
}
