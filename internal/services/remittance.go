package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/auth"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/gate"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/models"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/policy"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/sequence"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/store"
)

// RemittanceService drives the dealer payment instruments: created DUE,
// settled PAID, never backward.
type RemittanceService struct {
	store store.RemittanceStore
	guard *policy.Guard
	seq   *sequence.Generator
	log   *zap.Logger
}

func NewRemittanceService(s store.RemittanceStore, guard *policy.Guard, seq *sequence.Generator, log *zap.Logger) *RemittanceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RemittanceService{store: s, guard: guard, seq: seq, log: log}
}

// List returns the remittances the actor may see, newest first.
func (s *RemittanceService) List(ctx context.Context, actor auth.Actor) ([]models.Remittance, error) {
	if err := s.guard.Authorize(ctx, actor, gate.ActionList, policy.ResourceRemittance, nil); err != nil {
		return nil, err
	}
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]models.Remittance, 0, len(all))
	for i := range all {
		if s.guard.CanView(ctx, actor, policy.ResourceRemittance, &all[i]) {
			visible = append(visible, all[i])
		}
	}
	return visible, nil
}

// Get returns one remittance, reading as absent when out of reach.
func (s *RemittanceService) Get(ctx context.Context, actor auth.Actor, id string) (models.Remittance, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Remittance{}, err
	}
	if !s.guard.CanView(ctx, actor, policy.ResourceRemittance, &r) {
		return models.Remittance{}, store.ErrNotFound
	}
	return r, nil
}

// Create records a new DUE remittance attributed to the actor.
func (s *RemittanceService) Create(ctx context.Context, actor auth.Actor, in store.RemittanceInput) (models.Remittance, error) {
	if err := s.guard.Authorize(ctx, actor, gate.ActionCreate, policy.ResourceRemittance, nil); err != nil {
		return models.Remittance{}, err
	}
	if in.RemittanceNumber == "" && s.seq != nil {
		in.RemittanceNumber = s.seq.NextRemittance()
	}
	in.CreatedByUserID = actor.ID
	in.CreatedByEmail = actor.Email
	if in.DealerID == "" {
		in.DealerID = actor.DealerID
	}
	r, err := s.store.Create(ctx, in)
	if err != nil {
		return models.Remittance{}, err
	}
	s.log.Info("remittance created",
		zap.String("id", r.ID),
		zap.Int64("amountCents", r.AmountCents),
		zap.String("actor", actor.ID))
	return r, nil
}

// MarkPaid settles a due remittance.
func (s *RemittanceService) MarkPaid(ctx context.Context, actor auth.Actor, id string) (models.Remittance, error) {
	if _, err := s.visibleForUpdate(ctx, actor, id); err != nil {
		return models.Remittance{}, err
	}
	r, err := s.store.Update(ctx, id, store.RemittanceStatusChange{Status: models.RemittanceStatusPaid})
	if err != nil {
		return models.Remittance{}, err
	}
	s.log.Info("remittance paid", zap.String("id", id), zap.String("actor", actor.ID))
	return r, nil
}

// Edit adjusts number or amount while the remittance is still DUE.
func (s *RemittanceService) Edit(ctx context.Context, actor auth.Actor, id string, edit store.RemittanceFieldEdit) (models.Remittance, error) {
	if _, err := s.visibleForUpdate(ctx, actor, id); err != nil {
		return models.Remittance{}, err
	}
	return s.store.Update(ctx, id, edit)
}

func (s *RemittanceService) visibleForUpdate(ctx context.Context, actor auth.Actor, id string) (models.Remittance, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Remittance{}, err
	}
	if !s.guard.CanView(ctx, actor, policy.ResourceRemittance, &r) {
		return models.Remittance{}, store.ErrNotFound
	}
	if err := s.guard.Authorize(ctx, actor, gate.ActionUpdate, policy.ResourceRemittance, &r); err != nil {
		return models.Remittance{}, err
	}
	return r, nil
}
