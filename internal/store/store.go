// Package store defines the four-operation capability interface of the
// lifecycle engine (list/get/create/update per entity kind) and the shared
// patch semantics both backends must implement identically. The embedded
// backend lives in store/embedded, the remote one in store/remote; a
// conformance suite in this package runs against both.
package store

import (
	"context"
	"errors"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/models"
)

// Typed errors surfaced by both backends. ErrInvalidTransition comes from
// the lifecycle package.
var (
	ErrNotFound           = errors.New("record not found")
	ErrLocked             = errors.New("record locked: non-status edits require initial state")
	ErrValidation         = errors.New("validation failed")
	ErrAlreadyExists      = errors.New("record already exists")
	ErrBackendUnavailable = errors.New("storage backend unavailable")
)

// ContractStore is the engine's only boundary for contracts.
type ContractStore interface {
	List(ctx context.Context) ([]models.Contract, error)
	Get(ctx context.Context, id string) (models.Contract, error)
	Create(ctx context.Context, in ContractInput) (models.Contract, error)
	Update(ctx context.Context, id string, patch ContractPatch) (models.Contract, error)
}

// BatchStore is the engine's only boundary for batches.
type BatchStore interface {
	List(ctx context.Context) ([]models.Batch, error)
	Get(ctx context.Context, id string) (models.Batch, error)
	Create(ctx context.Context, in BatchInput) (models.Batch, error)
	Update(ctx context.Context, id string, patch BatchPatch) (models.Batch, error)
}

// RemittanceStore is the engine's only boundary for remittances.
type RemittanceStore interface {
	List(ctx context.Context) ([]models.Remittance, error)
	Get(ctx context.Context, id string) (models.Remittance, error)
	Create(ctx context.Context, in RemittanceInput) (models.Remittance, error)
	Update(ctx context.Context, id string, patch RemittancePatch) (models.Remittance, error)
}

// Memberships answers which dealer a user belongs to. The embedded backend
// persists these as their own kind; the remote backend reads the users table.
type Memberships interface {
	DealerIDFor(ctx context.Context, userID string) (string, bool)
}

// ProductOwnership answers which provider publishes a product. Contracts
// sold against a published product may omit the provider id; ownership
// checks resolve it through the catalog instead.
type ProductOwnership interface {
	ProviderIDForProduct(ctx context.Context, productID string) (string, bool)
}

// Stores bundles one backend's implementations.
type Stores struct {
	Contracts   ContractStore
	Batches     BatchStore
	Remittances RemittanceStore
	Memberships Memberships
	Products    ProductOwnership
}

// ContractInput carries caller-supplied fields for contract creation.
// Status, id, warranty id, and timestamps are server-assigned; any caller
// idea of status is ignored and the record starts in DRAFT.
type ContractInput struct {
	ContractNumber string

	CustomerName       string
	CustomerEmail      string
	CustomerPhone      string
	CustomerAddress    string
	CustomerCity       string
	CustomerProvince   string
	CustomerPostalCode string

	VIN                 string
	VehicleYear         int
	VehicleMake         string
	VehicleModel        string
	VehicleTrim         string
	VehicleMileageKm    int
	VehicleBodyClass    string
	VehicleEngine       string
	VehicleTransmission string

	DealerID         string
	ProviderID       string
	ProductID        string
	ProductPricingID string

	PricingTermMonths      int
	PricingTermKm          int
	PricingDeductibleCents int64
	PricingBasePriceCents  int64
	PricingDealerCostCents int64
	AddonRetailCents       int64
	AddonCostCents         int64

	CreatedByUserID string
	CreatedByEmail  string
}

// BatchInput carries caller-supplied fields for batch creation. Batches
// always start OPEN and UNPAID with empty, mutable membership.
type BatchInput struct {
	BatchNumber string
	DealerID    string
	TaxRatePct  float64
}

// RemittanceInput carries caller-supplied fields for remittance creation.
// Remittances always start DUE.
type RemittanceInput struct {
	RemittanceNumber string
	DealerID         string
	AmountCents      int64
	CreatedByUserID  string
	CreatedByEmail   string
}
