package models

import "time"

// Remittance statuses. One-way, once: DUE -> PAID.
const (
	RemittanceStatusDue  = "DUE"
	RemittanceStatusPaid = "PAID"
)

// Remittance is a dealer's reported payment instrument, tracked
// independently of batches.
type Remittance struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	RemittanceNumber string    `gorm:"size:64;not null" json:"remittanceNumber"`
	DealerID         string    `gorm:"size:36;index" json:"dealerId,omitempty"`
	AmountCents      int64     `json:"amountCents"`
	Status           string    `gorm:"size:16;not null;index" json:"status"`
	CreatedByUserID  string    `gorm:"size:36" json:"createdByUserId,omitempty"`
	CreatedByEmail   string    `gorm:"size:255" json:"createdByEmail,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
