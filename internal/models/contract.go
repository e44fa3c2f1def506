package models

import (
	"strings"
	"time"
)

// Contract statuses. The lifecycle is strictly forward:
// DRAFT -> SOLD -> REMITTED -> PAID. Contracts are never deleted.
const (
	ContractStatusDraft    = "DRAFT"
	ContractStatusSold     = "SOLD"
	ContractStatusRemitted = "REMITTED"
	ContractStatusPaid     = "PAID"
)

// Contract represents one sold warranty agreement between a dealer, a
// customer, and a provider's product. Pricing fields are snapshots captured
// at sale time and never re-fetched from the catalog.
type Contract struct {
	ID             string `gorm:"primaryKey;size:36" json:"id"`
	WarrantyID     string `gorm:"size:32;uniqueIndex" json:"warrantyId"`
	ContractNumber string `gorm:"size:64;not null" json:"contractNumber"`

	CustomerName       string `gorm:"size:255;not null" json:"customerName"`
	CustomerEmail      string `gorm:"size:255" json:"customerEmail,omitempty"`
	CustomerPhone      string `gorm:"size:64" json:"customerPhone,omitempty"`
	CustomerAddress    string `gorm:"size:255" json:"customerAddress,omitempty"`
	CustomerCity       string `gorm:"size:128" json:"customerCity,omitempty"`
	CustomerProvince   string `gorm:"size:64" json:"customerProvince,omitempty"`
	CustomerPostalCode string `gorm:"size:16" json:"customerPostalCode,omitempty"`

	VIN                 string `gorm:"size:17;index" json:"vin,omitempty"`
	VehicleYear         int    `json:"vehicleYear,omitempty"`
	VehicleMake         string `gorm:"size:64" json:"vehicleMake,omitempty"`
	VehicleModel        string `gorm:"size:64" json:"vehicleModel,omitempty"`
	VehicleTrim         string `gorm:"size:64" json:"vehicleTrim,omitempty"`
	VehicleMileageKm    int    `json:"vehicleMileageKm,omitempty"`
	VehicleBodyClass    string `gorm:"size:64" json:"vehicleBodyClass,omitempty"`
	VehicleEngine       string `gorm:"size:128" json:"vehicleEngine,omitempty"`
	VehicleTransmission string `gorm:"size:64" json:"vehicleTransmission,omitempty"`

	DealerID         string `gorm:"size:36;index" json:"dealerId,omitempty"`
	ProviderID       string `gorm:"size:36;index" json:"providerId,omitempty"`
	ProductID        string `gorm:"size:36" json:"productId,omitempty"`
	ProductPricingID string `gorm:"size:36" json:"productPricingId,omitempty"`

	// Pricing snapshot, fixed at sale time.
	PricingTermMonths      int   `json:"pricingTermMonths,omitempty"`
	PricingTermKm          int   `json:"pricingTermKm,omitempty"`
	PricingDeductibleCents int64 `json:"pricingDeductibleCents,omitempty"`
	PricingBasePriceCents  int64 `json:"pricingBasePriceCents,omitempty"`
	PricingDealerCostCents int64 `json:"pricingDealerCostCents,omitempty"`
	// Addon snapshot columns are newer than the rest of the schema; some
	// remote installs may not have them yet.
	AddonRetailCents int64 `json:"addonRetailCents,omitempty"`
	AddonCostCents   int64 `json:"addonCostCents,omitempty"`

	CreatedByUserID  string     `gorm:"size:36;index" json:"createdByUserId,omitempty"`
	CreatedByEmail   string     `gorm:"size:255" json:"createdByEmail,omitempty"`
	SoldByUserID     string     `gorm:"size:36" json:"soldByUserId,omitempty"`
	SoldByEmail      string     `gorm:"size:255" json:"soldByEmail,omitempty"`
	SoldAt           *time.Time `json:"soldAt,omitempty"`
	RemittedByUserID string     `gorm:"size:36" json:"remittedByUserId,omitempty"`
	RemittedByEmail  string     `gorm:"size:255" json:"remittedByEmail,omitempty"`
	RemittedAt       *time.Time `json:"remittedAt,omitempty"`
	PaidByUserID     string     `gorm:"size:36" json:"paidByUserId,omitempty"`
	PaidByEmail      string     `gorm:"size:255" json:"paidByEmail,omitempty"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`

	Status    string    `gorm:"size:16;not null;index" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DeriveWarrantyID computes the immutable warranty identifier from the
// contract identifier: "WTY-" plus the first 12 hex characters of the UUID,
// upper-cased. It depends on nothing mutable.
func DeriveWarrantyID(contractID string) string {
	compact := strings.ReplaceAll(contractID, "-", "")
	if len(compact) > 12 {
		compact = compact[:12]
	}
	return "WTY-" + strings.ToUpper(compact)
}

// RetailCents is the revenue attributed to the contract: base price plus
// addon retail.
func (c *Contract) RetailCents() int64 {
	return c.PricingBasePriceCents + c.AddonRetailCents
}

// CostCents is the dealer cost of the contract: dealer cost plus addon cost.
func (c *Contract) CostCents() int64 {
	return c.PricingDealerCostCents + c.AddonCostCents
}

// SellerEmail is the normalized grouping key for per-seller rollups: the
// seller email when present, falling back to the creator email.
func (c *Contract) SellerEmail() string {
	email := c.SoldByEmail
	if email == "" {
		email = c.CreatedByEmail
	}
	return strings.ToLower(strings.TrimSpace(email))
}
