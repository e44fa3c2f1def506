package policy

import (
	"context"
	"strings"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/auth"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/gate"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/models"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/store"
)

// dealerOf resolves the actor's dealer: the directly attached dealer id, or
// transitively the recorded membership mapping (embedded-store mode keeps
// these as their own kind).
func dealerOf(ctx context.Context, actor auth.Actor, memberships store.Memberships) string {
	if actor.DealerID != "" {
		return actor.DealerID
	}
	if memberships != nil {
		if dealerID, ok := memberships.DealerIDFor(ctx, actor.ID); ok {
			return dealerID
		}
	}
	return ""
}

func sameEmail(a, b string) bool {
	return a != "" && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ContractPolicy enforces the role precedence rules for contracts.
// First match wins:
//  1. platform admins see everything
//  2. dealer admins reach their dealer's records or their own creations
//  3. dealer staff reach only records they personally created
//  4. providers get read-only reach into contracts referencing them,
//     directly by provider id or through one of their published products
type ContractPolicy struct {
	Memberships store.Memberships
	Products    store.ProductOwnership
}

func (p *ContractPolicy) Can(ctx context.Context, actor auth.Actor, action gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	c, ok := resource.(*models.Contract)
	if !ok {
		return false
	}

	switch {
	case actor.IsPlatformAdmin():
		return true
	case actor.Role == auth.RoleDealerAdmin:
		dealerID := dealerOf(ctx, actor, p.Memberships)
		if dealerID != "" && dealerID == c.DealerID {
			return true
		}
		return c.CreatedByUserID == actor.ID || sameEmail(c.CreatedByEmail, actor.Email)
	case actor.Role == auth.RoleDealerStaff:
		return c.CreatedByUserID == actor.ID || sameEmail(c.CreatedByEmail, actor.Email)
	case actor.Role == auth.RoleProvider:
		if action != gate.ActionView && action != gate.ActionList {
			return false
		}
		if actor.ProviderID == "" {
			return false
		}
		if actor.ProviderID == c.ProviderID {
			return true
		}
		// Contracts sold against a published product may leave the provider
		// id blank; resolve it through the catalog.
		if p.Products != nil && c.ProductID != "" {
			if providerID, ok := p.Products.ProviderIDForProduct(ctx, c.ProductID); ok {
				return providerID == actor.ProviderID
			}
		}
		return false
	default:
		return false
	}
}

// BatchPolicy enforces batch ownership. A batch belongs to a dealer via its
// stored dealer id or, failing that, by set-membership: any member contract
// belonging to the dealer's contract set claims the batch.
type BatchPolicy struct {
	Memberships store.Memberships
	Contracts   store.ContractStore
}

func (p *BatchPolicy) Can(ctx context.Context, actor auth.Actor, action gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	b, ok := resource.(*models.Batch)
	if !ok {
		return false
	}

	switch {
	case actor.IsPlatformAdmin():
		return true
	case actor.Role == auth.RoleDealerAdmin:
		dealerID := dealerOf(ctx, actor, p.Memberships)
		if dealerID == "" {
			return false
		}
		if b.DealerID == dealerID {
			return true
		}
		return p.memberContractBelongsTo(ctx, b, dealerID)
	default:
		// Batches are a dealer-admin surface; staff and providers have no
		// batch permissions in their profiles either.
		return false
	}
}

func (p *BatchPolicy) memberContractBelongsTo(ctx context.Context, b *models.Batch, dealerID string) bool {
	if p.Contracts == nil {
		return false
	}
	for _, id := range b.ContractIDs {
		c, err := p.Contracts.Get(ctx, id)
		if err != nil {
			continue
		}
		if c.DealerID == dealerID {
			return true
		}
	}
	return false
}

// RemittancePolicy enforces remittance reach: platform admins always, dealer
// roles for their dealer's remittances or their own, providers never (no
// provider linkage on remittances beyond the dealer relationship).
type RemittancePolicy struct {
	Memberships store.Memberships
}

func (p *RemittancePolicy) Can(ctx context.Context, actor auth.Actor, action gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	r, ok := resource.(*models.Remittance)
	if !ok {
		return false
	}

	switch {
	case actor.IsPlatformAdmin():
		return true
	case actor.Role == auth.RoleDealerAdmin:
		dealerID := dealerOf(ctx, actor, p.Memberships)
		if dealerID != "" && dealerID == r.DealerID {
			return true
		}
		return r.CreatedByUserID == actor.ID || sameEmail(r.CreatedByEmail, actor.Email)
	case actor.Role == auth.RoleDealerStaff:
		return r.CreatedByUserID == actor.ID || sameEmail(r.CreatedByEmail, actor.Email)
	default:
		return false
	}
}
