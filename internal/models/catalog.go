package models

import "time"

// Provider-owned catalog entities. Read-mostly from the lifecycle engine's
// perspective: referenced when snapshotting pricing at contract creation and
// when labelling aggregates.

type ProviderCompany struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Product struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ProviderID string    `gorm:"size:36;index" json:"providerId"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Type       string    `gorm:"size:64" json:"type,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ProductPricing is one published pricing plan for a product. Contracts copy
// these figures at sale time; later plan changes never touch sold contracts.
type ProductPricing struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	ProductID       string    `gorm:"size:36;index" json:"productId"`
	TermMonths      int       `json:"termMonths"`
	TermKm          int       `json:"termKm"`
	DeductibleCents int64     `json:"deductibleCents"`
	BasePriceCents  int64     `json:"basePriceCents"`
	DealerCostCents int64     `json:"dealerCostCents"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type ProductAddon struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ProductID   string    `gorm:"size:36;index" json:"productId"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	RetailCents int64     `json:"retailCents"`
	CostCents   int64     `json:"costCents"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
