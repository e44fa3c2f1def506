package services

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/lifecycle"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/auth"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/gate"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/models"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/policy"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/reports"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/sequence"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/store"
)

// BatchService drives batch reconciliation: membership while open, frozen
// totals at close, and the independent payment axis afterward.
type BatchService struct {
	batches   store.BatchStore
	contracts store.ContractStore
	guard     *policy.Guard
	seq       *sequence.Generator
	log       *zap.Logger
}

func NewBatchService(batches store.BatchStore, contracts store.ContractStore, guard *policy.Guard, seq *sequence.Generator, log *zap.Logger) *BatchService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BatchService{batches: batches, contracts: contracts, guard: guard, seq: seq, log: log}
}

// List returns the batches the actor may see, newest first.
func (s *BatchService) List(ctx context.Context, actor auth.Actor) ([]models.Batch, error) {
	if err := s.guard.Authorize(ctx, actor, gate.ActionList, policy.ResourceBatch, nil); err != nil {
		return nil, err
	}
	all, err := s.batches.List(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]models.Batch, 0, len(all))
	for i := range all {
		if s.guard.CanView(ctx, actor, policy.ResourceBatch, &all[i]) {
			visible = append(visible, all[i])
		}
	}
	return visible, nil
}

// Get returns one batch, reading as absent when the actor may not see it.
func (s *BatchService) Get(ctx context.Context, actor auth.Actor, id string) (models.Batch, error) {
	b, err := s.batches.Get(ctx, id)
	if err != nil {
		return models.Batch{}, err
	}
	if !s.guard.CanView(ctx, actor, policy.ResourceBatch, &b) {
		return models.Batch{}, store.ErrNotFound
	}
	return b, nil
}

// Create opens a new batch for the actor's dealer.
func (s *BatchService) Create(ctx context.Context, actor auth.Actor, in store.BatchInput) (models.Batch, error) {
	if err := s.guard.Authorize(ctx, actor, gate.ActionCreate, policy.ResourceBatch, nil); err != nil {
		return models.Batch{}, err
	}
	if in.BatchNumber == "" && s.seq != nil {
		in.BatchNumber = s.seq.NextBatch()
	}
	if in.DealerID == "" {
		in.DealerID = actor.DealerID
	}
	b, err := s.batches.Create(ctx, in)
	if err != nil {
		return models.Batch{}, err
	}
	s.log.Info("batch created", zap.String("id", b.ID), zap.String("dealerId", b.DealerID))
	return b, nil
}

// AddContract appends a contract to an open batch. The contract must be one
// the actor can see; a contract may sit in several batches, nothing here
// checks cross-batch exclusivity.
func (s *BatchService) AddContract(ctx context.Context, actor auth.Actor, batchID, contractID string) (models.Batch, error) {
	b, err := s.visibleForUpdate(ctx, actor, batchID)
	if err != nil {
		return models.Batch{}, err
	}
	c, err := s.contracts.Get(ctx, contractID)
	if err != nil {
		return models.Batch{}, err
	}
	if !s.guard.CanView(ctx, actor, policy.ResourceContract, &c) {
		return models.Batch{}, store.ErrNotFound
	}
	if b.Contains(contractID) {
		return b, nil
	}
	members := append([]string(b.ContractIDs), contractID)
	return s.batches.Update(ctx, batchID, store.BatchFieldEdit{ContractIDs: &members})
}

// taxCents applies ratePct to a cent amount entirely in integer basis
// points; cent values never pass through floating point. Rounds half up.
func taxCents(subtotal int64, ratePct float64) int64 {
	rateBps := int64(math.Round(ratePct * 100))
	if rateBps <= 0 || subtotal <= 0 {
		return 0
	}
	return (subtotal*rateBps + 5000) / 10000
}

// Close freezes the batch: totals are computed from the member contracts'
// dealer cost (what the dealer owes), tax is applied at the batch rate, and
// the status moves to CLOSED. Member contracts the store cannot load
// contribute nothing rather than blocking the close.
func (s *BatchService) Close(ctx context.Context, actor auth.Actor, id string) (models.Batch, error) {
	b, err := s.visibleForUpdate(ctx, actor, id)
	if err != nil {
		return models.Batch{}, err
	}

	var subtotal int64
	for _, contractID := range b.ContractIDs {
		c, err := s.contracts.Get(ctx, contractID)
		if err != nil {
			s.log.Warn("batch member contract unavailable at close",
				zap.String("batchId", id),
				zap.String("contractId", contractID),
				zap.Error(err))
			continue
		}
		subtotal += c.CostCents()
	}
	tax := taxCents(subtotal, b.TaxRatePct)
	total := subtotal + tax

	if _, err := s.batches.Update(ctx, id, store.BatchFieldEdit{
		SubtotalCents: &subtotal,
		TaxCents:      &tax,
		TotalCents:    &total,
	}); err != nil {
		return models.Batch{}, err
	}
	closed, err := s.batches.Update(ctx, id, store.BatchStatusChange{Status: models.BatchStatusClosed})
	if err != nil {
		return models.Batch{}, err
	}
	s.log.Info("batch closed",
		zap.String("id", id),
		zap.Int64("totalCents", closed.TotalCents),
		zap.String("actor", actor.ID))
	return closed, nil
}

// MarkPaid settles a closed batch. Re-issuing against an already PAID batch
// is rejected here even though the store treats a same-status request as a
// no-op; payment settlement stays auditable.
func (s *BatchService) MarkPaid(ctx context.Context, actor auth.Actor, id string) (models.Batch, error) {
	b, err := s.visibleForUpdate(ctx, actor, id)
	if err != nil {
		return models.Batch{}, err
	}
	if b.PaymentStatus == models.BatchPaymentPaid {
		return models.Batch{}, fmt.Errorf("%w: batch %s already paid", lifecycle.ErrInvalidTransition, id)
	}
	b, err = s.batches.Update(ctx, id, store.BatchPaymentChange{PaymentStatus: models.BatchPaymentPaid})
	if err != nil {
		return models.Batch{}, err
	}
	s.log.Info("batch paid", zap.String("id", id), zap.String("actor", actor.ID))
	return b, nil
}

// Outstanding sums what the given dealer still owes across its visible
// closed-but-unpaid batches.
func (s *BatchService) Outstanding(ctx context.Context, actor auth.Actor, dealerID string) (int64, error) {
	batches, err := s.List(ctx, actor)
	if err != nil {
		return 0, err
	}
	return reports.OutstandingCents(batches, dealerID), nil
}

func (s *BatchService) visibleForUpdate(ctx context.Context, actor auth.Actor, id string) (models.Batch, error) {
	b, err := s.batches.Get(ctx, id)
	if err != nil {
		return models.Batch{}, err
	}
	if !s.guard.CanView(ctx, actor, policy.ResourceBatch, &b) {
		return models.Batch{}, store.ErrNotFound
	}
	if err := s.guard.Authorize(ctx, actor, gate.ActionUpdate, policy.ResourceBatch, &b); err != nil {
		return models.Batch{}, err
	}
	return b, nil
}
