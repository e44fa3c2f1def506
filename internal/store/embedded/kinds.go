package embedded

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/lifecycle"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/models"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/store"
)

// Compile-time checks that the embedded backend satisfies the store contract.
var (
	_ store.ContractStore    = (*contractStore)(nil)
	_ store.BatchStore       = (*batchStore)(nil)
	_ store.RemittanceStore  = (*remittanceStore)(nil)
	_ store.Memberships      = (*membershipStore)(nil)
	_ store.ProductOwnership = (*productStore)(nil)
)

// ─────────────────────────────────────────────────────────────────────────────
// Contracts
// ─────────────────────────────────────────────────────────────────────────────

type contractStore struct{ s *Store }

// sanitizeContract applies defensive defaults to a stored record. Returns
// false when the record fails the minimal required-field check and must
// vanish from List results.
func sanitizeContract(c *models.Contract, now time.Time) bool {
	if c.Status == "" || !lifecycle.Known(lifecycle.KindContract, c.Status) {
		c.Status = lifecycle.Initial(lifecycle.KindContract)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	return strings.TrimSpace(c.ContractNumber) != "" && strings.TrimSpace(c.CustomerName) != ""
}

func (cs *contractStore) List(ctx context.Context) ([]models.Contract, error) {
	raw, err := readBlob[models.Contract](cs.s.db.WithContext(ctx), kindContracts)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	out := make([]models.Contract, 0, len(raw))
	for i := range raw {
		if sanitizeContract(&raw[i], now) {
			out = append(out, raw[i])
			continue
		}
		cs.s.droppedContracts.Add(1)
		cs.s.log.Warn("dropping malformed contract from list", zap.String("id", raw[i].ID))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (cs *contractStore) Get(ctx context.Context, id string) (models.Contract, error) {
	raw, err := readBlob[models.Contract](cs.s.db.WithContext(ctx), kindContracts)
	if err != nil {
		return models.Contract{}, err
	}
	now := time.Now().UTC()
	for i := range raw {
		if raw[i].ID == id {
			sanitizeContract(&raw[i], now)
			return raw[i], nil
		}
	}
	return models.Contract{}, fmt.Errorf("%w: contract %s", store.ErrNotFound, id)
}

func (cs *contractStore) Create(ctx context.Context, in store.ContractInput) (models.Contract, error) {
	if err := store.ValidateContractInput(in); err != nil {
		return models.Contract{}, err
	}
	rec := store.NewContract(uuid.NewString(), in, time.Now().UTC())
	err := cs.s.mutate(func(tx *gorm.DB) error {
		items, err := readBlob[models.Contract](tx, kindContracts)
		if err != nil {
			return err
		}
		items = append(items, rec)
		return writeBlob(tx, kindContracts, items)
	})
	if err != nil {
		return models.Contract{}, err
	}
	return rec, nil
}

func (cs *contractStore) Update(ctx context.Context, id string, patch store.ContractPatch) (models.Contract, error) {
	var updated models.Contract
	err := cs.s.mutate(func(tx *gorm.DB) error {
		items, err := readBlob[models.Contract](tx, kindContracts)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for i := range items {
			if items[i].ID != id {
				continue
			}
			sanitizeContract(&items[i], now)
			if err := store.ApplyContractPatch(&items[i], patch, now); err != nil {
				return err
			}
			updated = items[i]
			return writeBlob(tx, kindContracts, items)
		}
		return fmt.Errorf("%w: contract %s", store.ErrNotFound, id)
	})
	if err != nil {
		return models.Contract{}, err
	}
	return updated, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Batches
// ─────────────────────────────────────────────────────────────────────────────

type batchStore struct{ s *Store }

func sanitizeBatch(b *models.Batch, now time.Time) bool {
	if b.Status == "" || !lifecycle.Known(lifecycle.KindBatch, b.Status) {
		b.Status = lifecycle.Initial(lifecycle.KindBatch)
	}
	if b.PaymentStatus == "" || !lifecycle.Known(lifecycle.KindBatchPayment, b.PaymentStatus) {
		b.PaymentStatus = lifecycle.Initial(lifecycle.KindBatchPayment)
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = now
	}
	return strings.TrimSpace(b.BatchNumber) != ""
}

func (bs *batchStore) List(ctx context.Context) ([]models.Batch, error) {
	raw, err := readBlob[models.Batch](bs.s.db.WithContext(ctx), kindBatches)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	out := make([]models.Batch, 0, len(raw))
	for i := range raw {
		if sanitizeBatch(&raw[i], now) {
			out = append(out, raw[i])
			continue
		}
		bs.s.droppedBatches.Add(1)
		bs.s.log.Warn("dropping malformed batch from list", zap.String("id", raw[i].ID))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (bs *batchStore) Get(ctx context.Context, id string) (models.Batch, error) {
	raw, err := readBlob[models.Batch](bs.s.db.WithContext(ctx), kindBatches)
	if err != nil {
		return models.Batch{}, err
	}
	now := time.Now().UTC()
	for i := range raw {
		if raw[i].ID == id {
			sanitizeBatch(&raw[i], now)
			return raw[i], nil
		}
	}
	return models.Batch{}, fmt.Errorf("%w: batch %s", store.ErrNotFound, id)
}

func (bs *batchStore) Create(ctx context.Context, in store.BatchInput) (models.Batch, error) {
	if err := store.ValidateBatchInput(in); err != nil {
		return models.Batch{}, err
	}
	rec := store.NewBatch(uuid.NewString(), in, time.Now().UTC())
	err := bs.s.mutate(func(tx *gorm.DB) error {
		items, err := readBlob[models.Batch](tx, kindBatches)
		if err != nil {
			return err
		}
		items = append(items, rec)
		return writeBlob(tx, kindBatches, items)
	})
	if err != nil {
		return models.Batch{}, err
	}
	return rec, nil
}

func (bs *batchStore) Update(ctx context.Context, id string, patch store.BatchPatch) (models.Batch, error) {
	var updated models.Batch
	err := bs.s.mutate(func(tx *gorm.DB) error {
		items, err := readBlob[models.Batch](tx, kindBatches)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for i := range items {
			if items[i].ID != id {
				continue
			}
			sanitizeBatch(&items[i], now)
			if err := store.ApplyBatchPatch(&items[i], patch, now); err != nil {
				return err
			}
			updated = items[i]
			return writeBlob(tx, kindBatches, items)
		}
		return fmt.Errorf("%w: batch %s", store.ErrNotFound, id)
	})
	if err != nil {
		return models.Batch{}, err
	}
	return updated, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Remittances
// ─────────────────────────────────────────────────────────────────────────────

type remittanceStore struct{ s *Store }

func sanitizeRemittance(r *models.Remittance, now time.Time) bool {
	if r.Status == "" || !lifecycle.Known(lifecycle.KindRemittance, r.Status) {
		r.Status = lifecycle.Initial(lifecycle.KindRemittance)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now
	}
	return strings.TrimSpace(r.RemittanceNumber) != ""
}

func (rs *remittanceStore) List(ctx context.Context) ([]models.Remittance, error) {
	raw, err := readBlob[models.Remittance](rs.s.db.WithContext(ctx), kindRemittances)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	out := make([]models.Remittance, 0, len(raw))
	for i := range raw {
		if sanitizeRemittance(&raw[i], now) {
			out = append(out, raw[i])
			continue
		}
		rs.s.droppedRemittances.Add(1)
		rs.s.log.Warn("dropping malformed remittance from list", zap.String("id", raw[i].ID))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (rs *remittanceStore) Get(ctx context.Context, id string) (models.Remittance, error) {
	raw, err := readBlob[models.Remittance](rs.s.db.WithContext(ctx), kindRemittances)
	if err != nil {
		return models.Remittance{}, err
	}
	now := time.Now().UTC()
	for i := range raw {
		if raw[i].ID == id {
			sanitizeRemittance(&raw[i], now)
			return raw[i], nil
		}
	}
	return models.Remittance{}, fmt.Errorf("%w: remittance %s", store.ErrNotFound, id)
}

func (rs *remittanceStore) Create(ctx context.Context, in store.RemittanceInput) (models.Remittance, error) {
	if err := store.ValidateRemittanceInput(in); err != nil {
		return models.Remittance{}, err
	}
	rec := store.NewRemittance(uuid.NewString(), in, time.Now().UTC())
	err := rs.s.mutate(func(tx *gorm.DB) error {
		items, err := readBlob[models.Remittance](tx, kindRemittances)
		if err != nil {
			return err
		}
		items = append(items, rec)
		return writeBlob(tx, kindRemittances, items)
	})
	if err != nil {
		return models.Remittance{}, err
	}
	return rec, nil
}

func (rs *remittanceStore) Update(ctx context.Context, id string, patch store.RemittancePatch) (models.Remittance, error) {
	var updated models.Remittance
	err := rs.s.mutate(func(tx *gorm.DB) error {
		items, err := readBlob[models.Remittance](tx, kindRemittances)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for i := range items {
			if items[i].ID != id {
				continue
			}
			sanitizeRemittance(&items[i], now)
			if err := store.ApplyRemittancePatch(&items[i], patch, now); err != nil {
				return err
			}
			updated = items[i]
			return writeBlob(tx, kindRemittances, items)
		}
		return fmt.Errorf("%w: remittance %s", store.ErrNotFound, id)
	})
	if err != nil {
		return models.Remittance{}, err
	}
	return updated, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Dealer memberships
// ─────────────────────────────────────────────────────────────────────────────

type membershipStore struct{ s *Store }

func (ms *membershipStore) DealerIDFor(ctx context.Context, userID string) (string, bool) {
	items, err := readBlob[models.DealerMembership](ms.s.db.WithContext(ctx), kindMemberships)
	if err != nil {
		return "", false
	}
	for _, m := range items {
		if m.UserID == userID && m.DealerID != "" {
			return m.DealerID, true
		}
	}
	return "", false
}

// PutMembership records a user->dealer mapping, replacing any existing
// mapping for the user.
func (s *Store) PutMembership(ctx context.Context, userID, userEmail, dealerID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(dealerID) == "" {
		return fmt.Errorf("%w: membership needs userId and dealerId", store.ErrValidation)
	}
	return s.mutate(func(tx *gorm.DB) error {
		items, err := readBlob[models.DealerMembership](tx, kindMemberships)
		if err != nil {
			return err
		}
		kept := items[:0]
		for _, m := range items {
			if m.UserID != userID {
				kept = append(kept, m)
			}
		}
		kept = append(kept, models.DealerMembership{
			ID:        uuid.NewString(),
			UserID:    userID,
			UserEmail: userEmail,
			DealerID:  dealerID,
			CreatedAt: time.Now().UTC(),
		})
		return writeBlob(tx, kindMemberships, kept)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Product catalog
// ─────────────────────────────────────────────────────────────────────────────

type productStore struct{ s *Store }

func (ps *productStore) ProviderIDForProduct(ctx context.Context, productID string) (string, bool) {
	if productID == "" {
		return "", false
	}
	items, err := readBlob[models.Product](ps.s.db.WithContext(ctx), kindProducts)
	if err != nil {
		return "", false
	}
	for _, p := range items {
		if p.ID == productID && p.ProviderID != "" {
			return p.ProviderID, true
		}
	}
	return "", false
}

// PutProduct records a catalog product, replacing any existing record with
// the same id.
func (s *Store) PutProduct(ctx context.Context, p models.Product) error {
	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product needs id and name", store.ErrValidation)
	}
	return s.mutate(func(tx *gorm.DB) error {
		items, err := readBlob[models.Product](tx, kindProducts)
		if err != nil {
			return err
		}
		kept := items[:0]
		for _, existing := range items {
			if existing.ID != p.ID {
				kept = append(kept, existing)
			}
		}
		now := time.Now().UTC()
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now
		kept = append(kept, p)
		return writeBlob(tx, kindProducts, kept)
	})
}
