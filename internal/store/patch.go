package store

import (
	"fmt"
	"time"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/lifecycle"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/models"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/validation"
)

// Patches are tagged unions: a patch is either a status change or a field
// edit, never both. The "non-status edits only in the initial state" rule is
// enforced here once, by type, and both backends call these helpers so their
// behavior cannot drift.

// ContractPatch is either ContractStatusChange or ContractFieldEdit.
type ContractPatch interface{ contractPatch() }

// ContractStatusChange requests a single forward step of the contract chain.
// The acting user is stamped into the matching attribution fields.
type ContractStatusChange struct {
	Status   string
	ByUserID string
	ByEmail  string
}

func (ContractStatusChange) contractPatch() {}

// ContractFieldEdit is a partial edit of non-status fields. Nil pointers
// leave the current value untouched. Only legal while the contract is DRAFT.
type ContractFieldEdit struct {
	ContractNumber *string `json:"contractNumber,omitempty"`

	CustomerName       *string `json:"customerName,omitempty"`
	CustomerEmail      *string `json:"customerEmail,omitempty"`
	CustomerPhone      *string `json:"customerPhone,omitempty"`
	CustomerAddress    *string `json:"customerAddress,omitempty"`
	CustomerCity       *string `json:"customerCity,omitempty"`
	CustomerProvince   *string `json:"customerProvince,omitempty"`
	CustomerPostalCode *string `json:"customerPostalCode,omitempty"`

	VIN                 *string `json:"vin,omitempty"`
	VehicleYear         *int    `json:"vehicleYear,omitempty"`
	VehicleMake         *string `json:"vehicleMake,omitempty"`
	VehicleModel        *string `json:"vehicleModel,omitempty"`
	VehicleTrim         *string `json:"vehicleTrim,omitempty"`
	VehicleMileageKm    *int    `json:"vehicleMileageKm,omitempty"`
	VehicleBodyClass    *string `json:"vehicleBodyClass,omitempty"`
	VehicleEngine       *string `json:"vehicleEngine,omitempty"`
	VehicleTransmission *string `json:"vehicleTransmission,omitempty"`

	DealerID         *string `json:"dealerId,omitempty"`
	ProviderID       *string `json:"providerId,omitempty"`
	ProductID        *string `json:"productId,omitempty"`
	ProductPricingID *string `json:"productPricingId,omitempty"`

	PricingTermMonths      *int   `json:"pricingTermMonths,omitempty"`
	PricingTermKm          *int   `json:"pricingTermKm,omitempty"`
	PricingDeductibleCents *int64 `json:"pricingDeductibleCents,omitempty"`
	PricingBasePriceCents  *int64 `json:"pricingBasePriceCents,omitempty"`
	PricingDealerCostCents *int64 `json:"pricingDealerCostCents,omitempty"`
	AddonRetailCents       *int64 `json:"addonRetailCents,omitempty"`
	AddonCostCents         *int64 `json:"addonCostCents,omitempty"`
}

func (ContractFieldEdit) contractPatch() {}

// BatchPatch is BatchStatusChange, BatchPaymentChange, or BatchFieldEdit.
type BatchPatch interface{ batchPatch() }

// BatchStatusChange moves the batch along OPEN -> CLOSED.
type BatchStatusChange struct {
	Status string
}

func (BatchStatusChange) batchPatch() {}

// BatchPaymentChange moves the independent payment axis UNPAID -> PAID.
// Only legal once the batch is CLOSED.
type BatchPaymentChange struct {
	PaymentStatus string
}

func (BatchPaymentChange) batchPatch() {}

// BatchFieldEdit mutates membership and totals. Only legal while OPEN;
// closing a batch freezes both.
type BatchFieldEdit struct {
	DealerID      *string   `json:"dealerId,omitempty"`
	ContractIDs   *[]string `json:"contractIds,omitempty"`
	SubtotalCents *int64    `json:"subtotalCents,omitempty"`
	TaxRatePct    *float64  `json:"taxRatePct,omitempty"`
	TaxCents      *int64    `json:"taxCents,omitempty"`
	TotalCents    *int64    `json:"totalCents,omitempty"`
}

func (BatchFieldEdit) batchPatch() {}

// RemittancePatch is either RemittanceStatusChange or RemittanceFieldEdit.
type RemittancePatch interface{ remittancePatch() }

// RemittanceStatusChange moves the remittance along DUE -> PAID.
type RemittanceStatusChange struct {
	Status string
}

func (RemittanceStatusChange) remittancePatch() {}

// RemittanceFieldEdit mutates amount/number. Only legal while DUE.
type RemittanceFieldEdit struct {
	RemittanceNumber *string `json:"remittanceNumber,omitempty"`
	AmountCents      *int64  `json:"amountCents,omitempty"`
}

func (RemittanceFieldEdit) remittancePatch() {}

// ApplyContractPatch mutates c in place according to the patch rules and
// stamps UpdatedAt (also for no-op status requests, so idempotent retries
// remain visible in the record history).
func ApplyContractPatch(c *models.Contract, patch ContractPatch, now time.Time) error {
	switch p := patch.(type) {
	case ContractStatusChange:
		if err := lifecycle.Validate(lifecycle.KindContract, c.Status, p.Status); err != nil {
			return err
		}
		if p.Status != c.Status {
			at := now
			switch p.Status {
			case models.ContractStatusSold:
				c.SoldByUserID, c.SoldByEmail, c.SoldAt = p.ByUserID, p.ByEmail, &at
			case models.ContractStatusRemitted:
				c.RemittedByUserID, c.RemittedByEmail, c.RemittedAt = p.ByUserID, p.ByEmail, &at
			case models.ContractStatusPaid:
				c.PaidByUserID, c.PaidByEmail, c.PaidAt = p.ByUserID, p.ByEmail, &at
			}
			c.Status = p.Status
		}
	case ContractFieldEdit:
		if c.Status != lifecycle.Initial(lifecycle.KindContract) {
			return fmt.Errorf("%w: contract %s is %s", ErrLocked, c.ID, c.Status)
		}
		applyContractFields(c, p)
	default:
		return fmt.Errorf("%w: unsupported contract patch %T", ErrValidation, patch)
	}
	c.UpdatedAt = now
	return nil
}

func applyContractFields(c *models.Contract, p ContractFieldEdit) {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setCents := func(dst *int64, src *int64) {
		if src != nil {
			*dst = *src
		}
	}

	setStr(&c.ContractNumber, p.ContractNumber)
	setStr(&c.CustomerName, p.CustomerName)
	setStr(&c.CustomerEmail, p.CustomerEmail)
	setStr(&c.CustomerPhone, p.CustomerPhone)
	setStr(&c.CustomerAddress, p.CustomerAddress)
	setStr(&c.CustomerCity, p.CustomerCity)
	setStr(&c.CustomerProvince, p.CustomerProvince)
	setStr(&c.CustomerPostalCode, p.CustomerPostalCode)
	setStr(&c.VIN, p.VIN)
	setInt(&c.VehicleYear, p.VehicleYear)
	setStr(&c.VehicleMake, p.VehicleMake)
	setStr(&c.VehicleModel, p.VehicleModel)
	setStr(&c.VehicleTrim, p.VehicleTrim)
	setInt(&c.VehicleMileageKm, p.VehicleMileageKm)
	setStr(&c.VehicleBodyClass, p.VehicleBodyClass)
	setStr(&c.VehicleEngine, p.VehicleEngine)
	setStr(&c.VehicleTransmission, p.VehicleTransmission)
	setStr(&c.DealerID, p.DealerID)
	setStr(&c.ProviderID, p.ProviderID)
	setStr(&c.ProductID, p.ProductID)
	setStr(&c.ProductPricingID, p.ProductPricingID)
	setInt(&c.PricingTermMonths, p.PricingTermMonths)
	setInt(&c.PricingTermKm, p.PricingTermKm)
	setCents(&c.PricingDeductibleCents, p.PricingDeductibleCents)
	setCents(&c.PricingBasePriceCents, p.PricingBasePriceCents)
	setCents(&c.PricingDealerCostCents, p.PricingDealerCostCents)
	setCents(&c.AddonRetailCents, p.AddonRetailCents)
	setCents(&c.AddonCostCents, p.AddonCostCents)
}

// ApplyBatchPatch mutates b in place according to the patch rules.
func ApplyBatchPatch(b *models.Batch, patch BatchPatch, now time.Time) error {
	switch p := patch.(type) {
	case BatchStatusChange:
		if err := lifecycle.Validate(lifecycle.KindBatch, b.Status, p.Status); err != nil {
			return err
		}
		b.Status = p.Status
	case BatchPaymentChange:
		if p.PaymentStatus != b.PaymentStatus && b.Status != models.BatchStatusClosed {
			return fmt.Errorf("%w: batch %s must be CLOSED before payment status changes", lifecycle.ErrInvalidTransition, b.ID)
		}
		if err := lifecycle.Validate(lifecycle.KindBatchPayment, b.PaymentStatus, p.PaymentStatus); err != nil {
			return err
		}
		if p.PaymentStatus != b.PaymentStatus && p.PaymentStatus == models.BatchPaymentPaid {
			at := now
			b.PaidAt = &at
		}
		b.PaymentStatus = p.PaymentStatus
	case BatchFieldEdit:
		if b.Status != lifecycle.Initial(lifecycle.KindBatch) {
			return fmt.Errorf("%w: batch %s is %s", ErrLocked, b.ID, b.Status)
		}
		if p.DealerID != nil {
			b.DealerID = *p.DealerID
		}
		if p.ContractIDs != nil {
			b.ContractIDs = append([]string(nil), (*p.ContractIDs)...)
		}
		if p.SubtotalCents != nil {
			b.SubtotalCents = *p.SubtotalCents
		}
		if p.TaxRatePct != nil {
			b.TaxRatePct = *p.TaxRatePct
		}
		if p.TaxCents != nil {
			b.TaxCents = *p.TaxCents
		}
		if p.TotalCents != nil {
			b.TotalCents = *p.TotalCents
		}
	default:
		return fmt.Errorf("%w: unsupported batch patch %T", ErrValidation, patch)
	}
	b.UpdatedAt = now
	return nil
}

// ApplyRemittancePatch mutates r in place according to the patch rules.
func ApplyRemittancePatch(r *models.Remittance, patch RemittancePatch, now time.Time) error {
	switch p := patch.(type) {
	case RemittanceStatusChange:
		if err := lifecycle.Validate(lifecycle.KindRemittance, r.Status, p.Status); err != nil {
			return err
		}
		r.Status = p.Status
	case RemittanceFieldEdit:
		if r.Status != lifecycle.Initial(lifecycle.KindRemittance) {
			return fmt.Errorf("%w: remittance %s is %s", ErrLocked, r.ID, r.Status)
		}
		if p.RemittanceNumber != nil {
			r.RemittanceNumber = *p.RemittanceNumber
		}
		if p.AmountCents != nil {
			r.AmountCents = *p.AmountCents
		}
	default:
		return fmt.Errorf("%w: unsupported remittance patch %T", ErrValidation, patch)
	}
	r.UpdatedAt = now
	return nil
}

// ValidateContractInput checks required fields before either backend writes.
func ValidateContractInput(in ContractInput) error {
	v := make(validation.Violations)
	validation.Required("contractNumber", in.ContractNumber, v)
	validation.Required("customerName", in.CustomerName, v)
	validation.NonNegativeCents("pricingBasePriceCents", in.PricingBasePriceCents, v)
	validation.NonNegativeCents("pricingDealerCostCents", in.PricingDealerCostCents, v)
	if !v.Empty() {
		return fmt.Errorf("%w: %v", ErrValidation, v.Fields())
	}
	return nil
}

// ValidateBatchInput checks required fields before either backend writes.
func ValidateBatchInput(in BatchInput) error {
	v := make(validation.Violations)
	validation.Required("batchNumber", in.BatchNumber, v)
	validation.RangePct("taxRatePct", in.TaxRatePct, 0, 100, v)
	if !v.Empty() {
		return fmt.Errorf("%w: %v", ErrValidation, v.Fields())
	}
	return nil
}

// ValidateRemittanceInput checks required fields before either backend writes.
func ValidateRemittanceInput(in RemittanceInput) error {
	v := make(validation.Violations)
	validation.Required("remittanceNumber", in.RemittanceNumber, v)
	validation.PositiveCents("amountCents", in.AmountCents, v)
	if !v.Empty() {
		return fmt.Errorf("%w: %v", ErrValidation, v.Fields())
	}
	return nil
}

// NewContract assembles the server-assigned contract record for create.
// Both backends share this so id, warranty id, status, and timestamps are
// derived identically.
func NewContract(id string, in ContractInput, now time.Time) models.Contract {
	return models.Contract{
		ID:             id,
		WarrantyID:     models.DeriveWarrantyID(id),
		ContractNumber: in.ContractNumber,

		CustomerName:       in.CustomerName,
		CustomerEmail:      in.CustomerEmail,
		CustomerPhone:      in.CustomerPhone,
		CustomerAddress:    in.CustomerAddress,
		CustomerCity:       in.CustomerCity,
		CustomerProvince:   in.CustomerProvince,
		CustomerPostalCode: in.CustomerPostalCode,

		VIN:                 in.VIN,
		VehicleYear:         in.VehicleYear,
		VehicleMake:         in.VehicleMake,
		VehicleModel:        in.VehicleModel,
		VehicleTrim:         in.VehicleTrim,
		VehicleMileageKm:    in.VehicleMileageKm,
		VehicleBodyClass:    in.VehicleBodyClass,
		VehicleEngine:       in.VehicleEngine,
		VehicleTransmission: in.VehicleTransmission,

		DealerID:         in.DealerID,
		ProviderID:       in.ProviderID,
		ProductID:        in.ProductID,
		ProductPricingID: in.ProductPricingID,

		PricingTermMonths:      in.PricingTermMonths,
		PricingTermKm:          in.PricingTermKm,
		PricingDeductibleCents: in.PricingDeductibleCents,
		PricingBasePriceCents:  in.PricingBasePriceCents,
		PricingDealerCostCents: in.PricingDealerCostCents,
		AddonRetailCents:       in.AddonRetailCents,
		AddonCostCents:         in.AddonCostCents,

		CreatedByUserID: in.CreatedByUserID,
		CreatedByEmail:  in.CreatedByEmail,

		Status:    lifecycle.Initial(lifecycle.KindContract),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewBatch assembles the server-assigned batch record for create.
func NewBatch(id string, in BatchInput, now time.Time) models.Batch {
	return models.Batch{
		ID:            id,
		BatchNumber:   in.BatchNumber,
		DealerID:      in.DealerID,
		Status:        lifecycle.Initial(lifecycle.KindBatch),
		PaymentStatus: lifecycle.Initial(lifecycle.KindBatchPayment),
		ContractIDs:   []string{},
		TaxRatePct:    in.TaxRatePct,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// NewRemittance assembles the server-assigned remittance record for create.
func NewRemittance(id string, in RemittanceInput, now time.Time) models.Remittance {
	return models.Remittance{
		ID:               id,
		RemittanceNumber: in.RemittanceNumber,
		DealerID:         in.DealerID,
		AmountCents:      in.AmountCents,
		Status:           lifecycle.Initial(lifecycle.KindRemittance),
		CreatedByUserID:  in.CreatedByUserID,
		CreatedByEmail:   in.CreatedByEmail,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
