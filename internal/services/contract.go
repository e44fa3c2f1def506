// Package services holds the application operations: each call authorizes
// the explicit actor through the guard, then drives the store. Read denials
// surface as not-found so cross-dealer record existence never leaks; write
// denials on records the actor can see surface as forbidden.
package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/auth"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/gate"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/models"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/policy"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/reports"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/sequence"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/store"
)

// ContractService drives the contract lifecycle.
type ContractService struct {
	store store.ContractStore
	guard *policy.Guard
	seq   *sequence.Generator
	log   *zap.Logger
}

func NewContractService(s store.ContractStore, guard *policy.Guard, seq *sequence.Generator, log *zap.Logger) *ContractService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContractService{store: s, guard: guard, seq: seq, log: log}
}

// List returns the contracts the actor may see, newest first.
func (s *ContractService) List(ctx context.Context, actor auth.Actor) ([]models.Contract, error) {
	if err := s.guard.Authorize(ctx, actor, gate.ActionList, policy.ResourceContract, nil); err != nil {
		return nil, err
	}
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]models.Contract, 0, len(all))
	for i := range all {
		if s.guard.CanView(ctx, actor, policy.ResourceContract, &all[i]) {
			visible = append(visible, all[i])
		}
	}
	return visible, nil
}

// Get returns one contract. A record the actor may not see reads as absent.
func (s *ContractService) Get(ctx context.Context, actor auth.Actor, id string) (models.Contract, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Contract{}, err
	}
	if !s.guard.CanView(ctx, actor, policy.ResourceContract, &c) {
		return models.Contract{}, store.ErrNotFound
	}
	return c, nil
}

// Create opens a new DRAFT contract attributed to the actor. The contract
// number is minted server-side when the caller leaves it blank.
func (s *ContractService) Create(ctx context.Context, actor auth.Actor, in store.ContractInput) (models.Contract, error) {
	if err := s.guard.Authorize(ctx, actor, gate.ActionCreate, policy.ResourceContract, nil); err != nil {
		return models.Contract{}, err
	}
	if in.ContractNumber == "" && s.seq != nil {
		in.ContractNumber = s.seq.NextContract()
	}
	in.CreatedByUserID = actor.ID
	in.CreatedByEmail = actor.Email
	if in.DealerID == "" {
		in.DealerID = actor.DealerID
	}
	c, err := s.store.Create(ctx, in)
	if err != nil {
		return models.Contract{}, err
	}
	s.log.Info("contract created",
		zap.String("id", c.ID),
		zap.String("warrantyId", c.WarrantyID),
		zap.String("actor", actor.ID))
	return c, nil
}

// ChangeStatus advances the contract one step and stamps the actor into the
// matching attribution fields. Invalid steps are rejected by the store.
func (s *ContractService) ChangeStatus(ctx context.Context, actor auth.Actor, id, status string) (models.Contract, error) {
	if _, err := s.visibleForUpdate(ctx, actor, id); err != nil {
		return models.Contract{}, err
	}
	c, err := s.store.Update(ctx, id, store.ContractStatusChange{
		Status:   status,
		ByUserID: actor.ID,
		ByEmail:  actor.Email,
	})
	if err != nil {
		return models.Contract{}, err
	}
	s.log.Info("contract status changed",
		zap.String("id", id),
		zap.String("status", status),
		zap.String("actor", actor.ID))
	return c, nil
}

// Edit applies a partial non-status edit. The store rejects edits once the
// contract has left DRAFT.
func (s *ContractService) Edit(ctx context.Context, actor auth.Actor, id string, edit store.ContractFieldEdit) (models.Contract, error) {
	if _, err := s.visibleForUpdate(ctx, actor, id); err != nil {
		return models.Contract{}, err
	}
	return s.store.Update(ctx, id, edit)
}

// visibleForUpdate loads the record, hides it from actors who may not view
// it, then checks update permission against the loaded record.
func (s *ContractService) visibleForUpdate(ctx context.Context, actor auth.Actor, id string) (models.Contract, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Contract{}, err
	}
	if !s.guard.CanView(ctx, actor, policy.ResourceContract, &c) {
		return models.Contract{}, store.ErrNotFound
	}
	if err := s.guard.Authorize(ctx, actor, gate.ActionUpdate, policy.ResourceContract, &c); err != nil {
		return models.Contract{}, err
	}
	return c, nil
}

// ReportFilter narrows report input. Zero time boundaries leave that side
// open; empty DealerID means no dealer scoping.
type ReportFilter struct {
	DealerID string
	Start    time.Time
	End      time.Time
}

// Totals summarizes the contracts the actor may see within the filter.
func (s *ContractService) Totals(ctx context.Context, actor auth.Actor, f ReportFilter) (reports.Totals, error) {
	contracts, err := s.reportSet(ctx, actor, f)
	if err != nil {
		return reports.Totals{}, err
	}
	return reports.Summarize(contracts), nil
}

// SellerRollup groups the actor's visible contracts by seller.
func (s *ContractService) SellerRollup(ctx context.Context, actor auth.Actor, f ReportFilter) ([]reports.SellerRollup, error) {
	contracts, err := s.reportSet(ctx, actor, f)
	if err != nil {
		return nil, err
	}
	return reports.RollupBySeller(contracts), nil
}

func (s *ContractService) reportSet(ctx context.Context, actor auth.Actor, f ReportFilter) ([]models.Contract, error) {
	contracts, err := s.List(ctx, actor)
	if err != nil {
		return nil, err
	}
	if f.DealerID != "" {
		scoped := contracts[:0]
		for _, c := range contracts {
			if c.DealerID == f.DealerID {
				scoped = append(scoped, c)
			}
		}
		contracts = scoped
	}
	return reports.FilterByDate(contracts, f.Start, f.End), nil
}
