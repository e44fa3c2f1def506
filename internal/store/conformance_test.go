package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/lifecycle"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/models"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/store"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/store/embedded"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/store/remote"
)

// The conformance suite runs the same assertions against both backends so
// behavioral drift between them is caught mechanically.

func newEmbeddedStores(t *testing.T) store.Stores {
	t.Helper()
	s, err := embedded.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()), nil)
	if err != nil {
		t.Fatalf("open embedded store: %v", err)
	}
	return s.Stores()
}

func newRemoteStores(t *testing.T) store.Stores {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Contract{}, &models.Batch{}, &models.Remittance{}, &models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	s, err := remote.New(db)
	if err != nil {
		t.Fatalf("new remote store: %v", err)
	}
	return s.Stores()
}

func TestStoreConformance(t *testing.T) {
	backends := []struct {
		name  string
		setup func(t *testing.T) store.Stores
	}{
		{"embedded", newEmbeddedStores},
		{"remote", newRemoteStores},
	}
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			t.Run("ContractRoundTrip", func(t *testing.T) { testContractRoundTrip(t, backend.setup(t)) })
			t.Run("ContractListOrder", func(t *testing.T) { testContractListOrder(t, backend.setup(t)) })
			t.Run("ContractLifecycleScenario", func(t *testing.T) { testContractLifecycleScenario(t, backend.setup(t)) })
			t.Run("ContractNoOpStatus", func(t *testing.T) { testContractNoOpStatus(t, backend.setup(t)) })
			t.Run("UpdateMissing", func(t *testing.T) { testUpdateMissing(t, backend.setup(t)) })
			t.Run("CreateValidation", func(t *testing.T) { testCreateValidation(t, backend.setup(t)) })
			t.Run("BatchReconciliation", func(t *testing.T) { testBatchReconciliation(t, backend.setup(t)) })
			t.Run("RemittanceOneWay", func(t *testing.T) { testRemittanceOneWay(t, backend.setup(t)) })
		})
	}
}

func testContractInput() store.ContractInput {
	return store.ContractInput{
		ContractNumber:         "CN-1001",
		CustomerName:           "Jordan Park",
		CustomerEmail:          "jordan@example.com",
		VIN:                    "1HGCM82633A004352",
		VehicleYear:            2021,
		VehicleMake:            "Honda",
		VehicleModel:           "Accord",
		DealerID:               "dealer-1",
		ProviderID:             "provider-1",
		ProductID:              "product-1",
		ProductPricingID:       "plan-1",
		PricingTermMonths:      36,
		PricingTermKm:          60000,
		PricingBasePriceCents:  50000,
		PricingDealerCostCents: 30000,
		CreatedByUserID:        "user-1",
		CreatedByEmail:         "staff@dealer.ca",
	}
}

func testContractRoundTrip(t *testing.T, s store.Stores) {
	ctx := context.Background()
	in := testContractInput()

	created, err := s.Contracts.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected server-assigned id")
	}
	if created.Status != models.ContractStatusDraft {
		t.Errorf("status = %q, want DRAFT", created.Status)
	}
	if created.WarrantyID != models.DeriveWarrantyID(created.ID) {
		t.Errorf("warrantyId = %q, want derivation of id", created.WarrantyID)
	}

	got, err := s.Contracts.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ContractNumber != in.ContractNumber || got.CustomerName != in.CustomerName ||
		got.VIN != in.VIN || got.PricingBasePriceCents != in.PricingBasePriceCents ||
		got.DealerID != in.DealerID || got.CreatedByEmail != in.CreatedByEmail {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("createdAt drifted: %v vs %v", got.CreatedAt, created.CreatedAt)
	}
}

func testContractListOrder(t *testing.T, s store.Stores) {
	ctx := context.Background()
	var ids []string
	for i := 0; i < 3; i++ {
		in := testContractInput()
		in.ContractNumber = fmt.Sprintf("CN-%d", i)
		c, err := s.Contracts.Create(ctx, in)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		ids = append(ids, c.ID)
		time.Sleep(5 * time.Millisecond)
	}

	list, err := s.Contracts.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len(list) = %d, want 3", len(list))
	}
	// Newest first.
	for i, want := range []string{ids[2], ids[1], ids[0]} {
		if list[i].ID != want {
			t.Errorf("list[%d].ID = %s, want %s", i, list[i].ID, want)
		}
	}
}

func testContractLifecycleScenario(t *testing.T, s store.Stores) {
	ctx := context.Background()
	c, err := s.Contracts.Create(ctx, testContractInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	c, err = s.Contracts.Update(ctx, c.ID, store.ContractStatusChange{Status: models.ContractStatusSold, ByUserID: "user-1", ByEmail: "staff@dealer.ca"})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if c.Status != models.ContractStatusSold || c.SoldAt == nil || c.SoldByEmail != "staff@dealer.ca" {
		t.Errorf("sold contract not stamped: %+v", c)
	}

	name := "X"
	_, err = s.Contracts.Update(ctx, c.ID, store.ContractFieldEdit{CustomerName: &name})
	if !errors.Is(err, store.ErrLocked) {
		t.Errorf("edit after sale: expected ErrLocked, got %v", err)
	}

	_, err = s.Contracts.Update(ctx, c.ID, store.ContractStatusChange{Status: models.ContractStatusPaid})
	if !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Errorf("skip to PAID: expected ErrInvalidTransition, got %v", err)
	}

	c, err = s.Contracts.Update(ctx, c.ID, store.ContractStatusChange{Status: models.ContractStatusRemitted, ByUserID: "user-2", ByEmail: "admin@dealer.ca"})
	if err != nil {
		t.Fatalf("remit: %v", err)
	}
	if c.Status != models.ContractStatusRemitted || c.RemittedAt == nil {
		t.Errorf("remitted contract not stamped: %+v", c)
	}
	// The sale attribution survives later transitions.
	if c.SoldByUserID != "user-1" {
		t.Errorf("sold attribution lost: %+v", c)
	}
}

func testContractNoOpStatus(t *testing.T, s store.Stores) {
	ctx := context.Background()
	c, err := s.Contracts.Create(ctx, testContractInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	before := c.UpdatedAt
	time.Sleep(5 * time.Millisecond)

	c, err = s.Contracts.Update(ctx, c.ID, store.ContractStatusChange{Status: models.ContractStatusDraft})
	if err != nil {
		t.Fatalf("no-op update: %v", err)
	}
	if !c.UpdatedAt.After(before) {
		t.Errorf("no-op update must stamp updatedAt: before=%v after=%v", before, c.UpdatedAt)
	}
	if c.Status != models.ContractStatusDraft {
		t.Errorf("status = %q, want DRAFT", c.Status)
	}
}

func testUpdateMissing(t *testing.T, s store.Stores) {
	ctx := context.Background()
	_, err := s.Contracts.Update(ctx, "nope", store.ContractStatusChange{Status: models.ContractStatusSold})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("contract: expected ErrNotFound, got %v", err)
	}
	_, err = s.Batches.Update(ctx, "nope", store.BatchStatusChange{Status: models.BatchStatusClosed})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("batch: expected ErrNotFound, got %v", err)
	}
	_, err = s.Remittances.Get(ctx, "nope")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("remittance: expected ErrNotFound, got %v", err)
	}
}

func testCreateValidation(t *testing.T, s store.Stores) {
	ctx := context.Background()
	_, err := s.Contracts.Create(ctx, store.ContractInput{CustomerName: "No Number"})
	if !errors.Is(err, store.ErrValidation) {
		t.Errorf("blank contract number: expected ErrValidation, got %v", err)
	}
	_, err = s.Remittances.Create(ctx, store.RemittanceInput{RemittanceNumber: "RM-1", AmountCents: 0})
	if !errors.Is(err, store.ErrValidation) {
		t.Errorf("zero amount: expected ErrValidation, got %v", err)
	}
}

func testBatchReconciliation(t *testing.T, s store.Stores) {
	ctx := context.Background()
	b, err := s.Batches.Create(ctx, store.BatchInput{BatchNumber: "B-1", DealerID: "dealer-1", TaxRatePct: 13})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Status != models.BatchStatusOpen || b.PaymentStatus != models.BatchPaymentUnpaid {
		t.Fatalf("new batch axes wrong: %+v", b)
	}

	// Accumulate membership and totals while open.
	ids := []string{"c1", "c2"}
	subtotal, tax, total := int64(10000), int64(1300), int64(11300)
	b, err = s.Batches.Update(ctx, b.ID, store.BatchFieldEdit{
		ContractIDs: &ids, SubtotalCents: &subtotal, TaxCents: &tax, TotalCents: &total,
	})
	if err != nil {
		t.Fatalf("accumulate: %v", err)
	}

	// Payment may not advance while the batch is open.
	_, err = s.Batches.Update(ctx, b.ID, store.BatchPaymentChange{PaymentStatus: models.BatchPaymentPaid})
	if !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Errorf("pay while open: expected ErrInvalidTransition, got %v", err)
	}

	b, err = s.Batches.Update(ctx, b.ID, store.BatchStatusChange{Status: models.BatchStatusClosed})
	if err != nil {
		t.Fatalf("close: %v", err)
	}

	// Membership is frozen once closed.
	more := []string{"c1", "c2", "c3"}
	_, err = s.Batches.Update(ctx, b.ID, store.BatchFieldEdit{ContractIDs: &more})
	if !errors.Is(err, store.ErrLocked) {
		t.Errorf("edit closed batch: expected ErrLocked, got %v", err)
	}

	b, err = s.Batches.Update(ctx, b.ID, store.BatchPaymentChange{PaymentStatus: models.BatchPaymentPaid})
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if b.PaidAt == nil || b.TotalCents != 11300 || !b.Contains("c2") {
		t.Errorf("paid batch wrong: %+v", b)
	}

	// Re-marking paid is rejected, not silently accepted.
	_, err = s.Batches.Update(ctx, b.ID, store.BatchPaymentChange{PaymentStatus: models.BatchPaymentUnpaid})
	if !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Errorf("unpay: expected ErrInvalidTransition, got %v", err)
	}
}

func testRemittanceOneWay(t *testing.T, s store.Stores) {
	ctx := context.Background()
	r, err := s.Remittances.Create(ctx, store.RemittanceInput{RemittanceNumber: "RM-4", DealerID: "dealer-1", AmountCents: 12000})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.Status != models.RemittanceStatusDue {
		t.Fatalf("status = %q, want DUE", r.Status)
	}

	r, err = s.Remittances.Update(ctx, r.ID, store.RemittanceStatusChange{Status: models.RemittanceStatusPaid})
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	_, err = s.Remittances.Update(ctx, r.ID, store.RemittanceStatusChange{Status: models.RemittanceStatusDue})
	if !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Errorf("reopen: expected ErrInvalidTransition, got %v", err)
	}
	amount := int64(1)
	_, err = s.Remittances.Update(ctx, r.ID, store.RemittanceFieldEdit{AmountCents: &amount})
	if !errors.Is(err, store.ErrLocked) {
		t.Errorf("edit paid remittance: expected ErrLocked, got %v", err)
	}
}
