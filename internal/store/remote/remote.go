// Package remote implements the store interfaces against a remote postgres
// backend. Operations are row-scoped network calls; unlike the embedded
// backend there is no whole-collection rewrite, so writers to different
// records never clobber each other.
package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/models"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/store"
)

// Store is the remote backend core shared by the per-kind stores.
type Store struct {
	db *gorm.DB
}

// Connect opens a postgres connection for the lifecycle tables.
func Connect(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: empty postgres DSN", store.ErrBackendUnavailable)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrBackendUnavailable, err)
	}
	return New(db)
}

// New wraps an existing gorm handle (tests pass sqlite here; the queries
// stay portable for that reason).
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, store.ErrBackendUnavailable
	}
	return &Store{db: db}, nil
}

// Stores bundles this backend's per-kind implementations.
func (s *Store) Stores() store.Stores {
	return store.Stores{
		Contracts:   &contractStore{s},
		Batches:     &batchStore{s},
		Remittances: &remittanceStore{s},
		Memberships: &membershipStore{s},
		Products:    &productStore{s},
	}
}

// translate maps backend errors onto the store taxonomy, wrapping the
// original error verbatim.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", store.ErrNotFound, op)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s: %v", store.ErrAlreadyExists, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// Compile-time checks that the remote backend satisfies the store contract.
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

// addonColumns are newer than the rest of the contracts schema; installs
// that have not run the latest migration reject inserts naming them.
var addonColumns = []string{"AddonRetailCents", "AddonCostCents"}

func (cs *contractStore) List(ctx context.Context) ([]models.Contract, error) {
	var items []models.Contract
	err := cs.s.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error
	if err != nil {
		return nil, translate("list contracts", err)
	}
	return items, nil
}

func (cs *contractStore) Get(ctx context.Context, id string) (models.Contract, error) {
	var rec models.Contract
	err := cs.s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		return models.Contract{}, translate(fmt.Sprintf("get contract %s", id), err)
	}
	return rec, nil
}

func (cs *contractStore) Create(ctx context.Context, in store.ContractInput) (models.Contract, error) {
	if err := store.ValidateContractInput(in); err != nil {
		return models.Contract{}, err
	}
	rec := store.NewContract(uuid.NewString(), in, time.Now().UTC())

	// Extended insert first; fall back to the base column set for installs
	// missing the addon snapshot columns. The returned record keeps the
	// client-known addon values either way.
	err := cs.s.db.WithContext(ctx).Create(&rec).Error
	if err != nil {
		base := rec
		if fallbackErr := cs.s.db.WithContext(ctx).Omit(addonColumns...).Create(&base).Error; fallbackErr != nil {
			return models.Contract{}, translate("create contract", err)
		}
		base.AddonRetailCents = in.AddonRetailCents
		base.AddonCostCents = in.AddonCostCents
		rec = base
	}
	return rec, nil
}

func (cs *contractStore) Update(ctx context.Context, id string, patch store.ContractPatch) (models.Contract, error) {
	var rec models.Contract
	if err := cs.s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return models.Contract{}, translate(fmt.Sprintf("update contract %s", id), err)
	}
	if err := store.ApplyContractPatch(&rec, patch, time.Now().UTC()); err != nil {
		return models.Contract{}, err
	}
	if err := cs.s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return models.Contract{}, translate(fmt.Sprintf("update contract %s", id), err)
	}
	return rec, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Batches
// ─────────────────────────────────────────────────────────────────────────────

type batchStore struct{ s *Store }

func (bs *batchStore) List(ctx context.Context) ([]models.Batch, error) {
	var items []models.Batch
	err := bs.s.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error
	if err != nil {
		return nil, translate("list batches", err)
	}
	return items, nil
}

func (bs *batchStore) Get(ctx context.Context, id string) (models.Batch, error) {
	var rec models.Batch
	err := bs.s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		return models.Batch{}, translate(fmt.Sprintf("get batch %s", id), err)
	}
	return rec, nil
}

func (bs *batchStore) Create(ctx context.Context, in store.BatchInput) (models.Batch, error) {
	if err := store.ValidateBatchInput(in); err != nil {
		return models.Batch{}, err
	}
	rec := store.NewBatch(uuid.NewString(), in, time.Now().UTC())
	if err := bs.s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return models.Batch{}, translate("create batch", err)
	}
	return rec, nil
}

func (bs *batchStore) Update(ctx context.Context, id string, patch store.BatchPatch) (models.Batch, error) {
	var rec models.Batch
	if err := bs.s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return models.Batch{}, translate(fmt.Sprintf("update batch %s", id), err)
	}
	if err := store.ApplyBatchPatch(&rec, patch, time.Now().UTC()); err != nil {
		return models.Batch{}, err
	}
	if err := bs.s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return models.Batch{}, translate(fmt.Sprintf("update batch %s", id), err)
	}
	return rec, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Remittances
// ─────────────────────────────────────────────────────────────────────────────

type remittanceStore struct{ s *Store }

func (rs *remittanceStore) List(ctx context.Context) ([]models.Remittance, error) {
	var items []models.Remittance
	err := rs.s.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error
	if err != nil {
		return nil, translate("list remittances", err)
	}
	return items, nil
}

func (rs *remittanceStore) Get(ctx context.Context, id string) (models.Remittance, error) {
	var rec models.Remittance
	err := rs.s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		return models.Remittance{}, translate(fmt.Sprintf("get remittance %s", id), err)
	}
	return rec, nil
}

func (rs *remittanceStore) Create(ctx context.Context, in store.RemittanceInput) (models.Remittance, error) {
	if err := store.ValidateRemittanceInput(in); err != nil {
		return models.Remittance{}, err
	}
	rec := store.NewRemittance(uuid.NewString(), in, time.Now().UTC())
	if err := rs.s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return models.Remittance{}, translate("create remittance", err)
	}
	return rec, nil
}

func (rs *remittanceStore) Update(ctx context.Context, id string, patch store.RemittancePatch) (models.Remittance, error) {
	var rec models.Remittance
	if err := rs.s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return models.Remittance{}, translate(fmt.Sprintf("update remittance %s", id), err)
	}
	if err := store.ApplyRemittancePatch(&rec, patch, time.Now().UTC()); err != nil {
		return models.Remittance{}, err
	}
	if err := rs.s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return models.Remittance{}, translate(fmt.Sprintf("update remittance %s", id), err)
	}
	return rec, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Dealer memberships (users table)
// ─────────────────────────────────────────────────────────────────────────────

type membershipStore struct{ s *Store }

func (ms *membershipStore) DealerIDFor(ctx context.Context, userID string) (string, bool) {
	var user models.User
	if err := ms.s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return "", false
	}
	return user.DealerID, user.DealerID != ""
}

// ─────────────────────────────────────────────────────────────────────────────
// Product catalog (products table)
// ─────────────────────────────────────────────────────────────────────────────

type productStore struct{ s *Store }

func (ps *productStore) ProviderIDForProduct(ctx context.Context, productID string) (string, bool) {
	if productID == "" {
		return "", false
	}
	var product models.Product
	if err := ps.s.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		return "", false
	}
	return product.ProviderID, product.ProviderID != ""
}
