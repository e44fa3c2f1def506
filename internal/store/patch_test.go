package store

import (
	"errors"
	"testing"
	"time"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/lifecycle"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/models"
)

func strptr(s string) *string { return &s }

func TestApplyContractPatch_StatusStampsAttribution(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := models.Contract{ID: "c1", Status: models.ContractStatusDraft}

	if err := ApplyContractPatch(&c, ContractStatusChange{Status: models.ContractStatusSold, ByUserID: "u1", ByEmail: "u1@dealer.ca"}, now); err != nil {
		t.Fatalf("sell: %v", err)
	}
	if c.Status != models.ContractStatusSold {
		t.Errorf("status = %q, want SOLD", c.Status)
	}
	if c.SoldByUserID != "u1" || c.SoldByEmail != "u1@dealer.ca" || c.SoldAt == nil || !c.SoldAt.Equal(now) {
		t.Errorf("sold attribution not stamped: %+v", c)
	}
	if !c.UpdatedAt.Equal(now) {
		t.Errorf("updatedAt = %v, want %v", c.UpdatedAt, now)
	}
}

func TestApplyContractPatch_NoOpStatusStillStampsUpdatedAt(t *testing.T) {
	now := time.Now().UTC()
	c := models.Contract{ID: "c1", Status: models.ContractStatusSold, SoldByUserID: "orig"}

	if err := ApplyContractPatch(&c, ContractStatusChange{Status: models.ContractStatusSold, ByUserID: "other"}, now); err != nil {
		t.Fatalf("no-op: %v", err)
	}
	if c.SoldByUserID != "orig" {
		t.Errorf("no-op must not restamp attribution, got %q", c.SoldByUserID)
	}
	if !c.UpdatedAt.Equal(now) {
		t.Errorf("no-op must stamp updatedAt")
	}
}

func TestApplyContractPatch_FieldEditLockedAfterDraft(t *testing.T) {
	for _, status := range []string{models.ContractStatusSold, models.ContractStatusRemitted, models.ContractStatusPaid} {
		c := models.Contract{ID: "c1", Status: status, CustomerName: "Original"}
		err := ApplyContractPatch(&c, ContractFieldEdit{CustomerName: strptr("X")}, time.Now())
		if !errors.Is(err, ErrLocked) {
			t.Errorf("status %s: expected ErrLocked, got %v", status, err)
		}
		if c.CustomerName != "Original" {
			t.Errorf("status %s: locked edit must not mutate record", status)
		}
	}
}

func TestApplyContractPatch_FieldEditPartialMerge(t *testing.T) {
	c := models.Contract{ID: "c1", Status: models.ContractStatusDraft, CustomerName: "Original", VIN: "1HGCM82633A004352"}

	if err := ApplyContractPatch(&c, ContractFieldEdit{CustomerName: strptr("Updated")}, time.Now()); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if c.CustomerName != "Updated" {
		t.Errorf("CustomerName = %q, want Updated", c.CustomerName)
	}
	if c.VIN != "1HGCM82633A004352" {
		t.Errorf("nil pointer fields must stay untouched, VIN = %q", c.VIN)
	}
}

func TestApplyContractPatch_SkipStep(t *testing.T) {
	c := models.Contract{ID: "c1", Status: models.ContractStatusDraft}
	err := ApplyContractPatch(&c, ContractStatusChange{Status: models.ContractStatusPaid}, time.Now())
	if !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestApplyBatchPatch_PaymentRequiresClosed(t *testing.T) {
	b := models.Batch{ID: "b1", Status: models.BatchStatusOpen, PaymentStatus: models.BatchPaymentUnpaid}
	err := ApplyBatchPatch(&b, BatchPaymentChange{PaymentStatus: models.BatchPaymentPaid}, time.Now())
	if !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition for open batch, got %v", err)
	}

	b.Status = models.BatchStatusClosed
	now := time.Now().UTC()
	if err := ApplyBatchPatch(&b, BatchPaymentChange{PaymentStatus: models.BatchPaymentPaid}, now); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if b.PaidAt == nil || !b.PaidAt.Equal(now) {
		t.Errorf("paidAt not stamped")
	}

	// Re-marking an already paid batch is rejected, not silently accepted.
	err = ApplyBatchPatch(&b, BatchPaymentChange{PaymentStatus: models.BatchPaymentUnpaid}, time.Now())
	if !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition for PAID->UNPAID, got %v", err)
	}
}

func TestApplyBatchPatch_FieldEditFrozenOnceClosed(t *testing.T) {
	b := models.Batch{ID: "b1", Status: models.BatchStatusClosed, PaymentStatus: models.BatchPaymentUnpaid, TotalCents: 12000}
	total := int64(99)
	err := ApplyBatchPatch(&b, BatchFieldEdit{TotalCents: &total}, time.Now())
	if !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked, got %v", err)
	}
	if b.TotalCents != 12000 {
		t.Errorf("frozen totals must not change")
	}
}

func TestApplyRemittancePatch(t *testing.T) {
	r := models.Remittance{ID: "r1", Status: models.RemittanceStatusDue, AmountCents: 5000}

	amount := int64(7000)
	if err := ApplyRemittancePatch(&r, RemittanceFieldEdit{AmountCents: &amount}, time.Now()); err != nil {
		t.Fatalf("edit while due: %v", err)
	}
	if r.AmountCents != 7000 {
		t.Errorf("AmountCents = %d, want 7000", r.AmountCents)
	}

	if err := ApplyRemittancePatch(&r, RemittanceStatusChange{Status: models.RemittanceStatusPaid}, time.Now()); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	err := ApplyRemittancePatch(&r, RemittanceFieldEdit{AmountCents: &amount}, time.Now())
	if !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked after PAID, got %v", err)
	}
}

func TestValidateInputs(t *testing.T) {
	if err := ValidateContractInput(ContractInput{CustomerName: "A"}); !errors.Is(err, ErrValidation) {
		t.Errorf("missing contract number: expected ErrValidation, got %v", err)
	}
	if err := ValidateContractInput(ContractInput{ContractNumber: "CN-1", CustomerName: "A"}); err != nil {
		t.Errorf("valid input: got %v", err)
	}
	if err := ValidateBatchInput(BatchInput{}); !errors.Is(err, ErrValidation) {
		t.Errorf("missing batch number: expected ErrValidation, got %v", err)
	}
	if err := ValidateRemittanceInput(RemittanceInput{RemittanceNumber: "RM-1"}); !errors.Is(err, ErrValidation) {
		t.Errorf("zero amount: expected ErrValidation, got %v", err)
	}
}

func TestNewContract_IgnoresCallerStatusAndDerives(t *testing.T) {
	now := time.Now().UTC()
	c := NewContract("6ba7b810-9dad-11d1-80b4-00c04fd430c8", ContractInput{ContractNumber: "CN-1", CustomerName: "A"}, now)
	if c.Status != models.ContractStatusDraft {
		t.Errorf("new contracts must start DRAFT, got %q", c.Status)
	}
	if c.WarrantyID != "WTY-6BA7B8109DAD" {
		t.Errorf("warrantyId = %q", c.WarrantyID)
	}
	if !c.CreatedAt.Equal(now) || !c.UpdatedAt.Equal(now) {
		t.Errorf("timestamps not assigned")
	}
}
