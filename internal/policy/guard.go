package policy

import (
	"context"
	"errors"
	"time"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/auth"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/gate"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/store"
)

// ErrForbidden is returned when an actor's profile or the ownership policy
// denies an operation. Read denials are surfaced to clients as not-found so
// record existence does not leak across dealers; that mapping happens at the
// transport boundary, the guard itself always says forbidden.
var ErrForbidden = errors.New("forbidden")

// profileTTL bounds how stale a cached role profile may be after a role
// change before checks pick up the new profile.
const profileTTL = 5 * time.Minute

// Guard is the authorization checkpoint services consult before every store
// operation. It combines the static role profiles with per-resource
// ownership policies.
type Guard struct {
	gate *gate.Gate[auth.Actor]
}

// NewGuard builds a guard over the given stores. The membership mapping,
// contract lookups, and catalog ownership feed the per-resource policies;
// batch ownership is derived from member contracts when the batch record
// carries no dealer id, and provider reach into contracts falls back to the
// product's publisher when the contract omits the provider id.
func NewGuard(memberships store.Memberships, contracts store.ContractStore, products store.ProductOwnership) *Guard {
	g := gate.New[auth.Actor](gate.NewCachedResolver[auth.Actor](roleResolver{}, profileTTL))
	g.Register(ResourceContract, &ContractPolicy{Memberships: memberships, Products: products})
	g.Register(ResourceBatch, &BatchPolicy{Memberships: memberships, Contracts: contracts})
	g.Register(ResourceRemittance, &RemittancePolicy{Memberships: memberships})
	return &Guard{gate: g}
}

// Authorize checks the actor may perform action on the given resource.
// resource may be nil for list/create checks, in which case only the role
// profile is consulted.
func (g *Guard) Authorize(ctx context.Context, actor auth.Actor, action gate.Action, resourceType string, resource any) error {
	if err := g.gate.Authorize(ctx, actor, action, resourceType, resource); err != nil {
		return ErrForbidden
	}
	return nil
}

// CanView reports whether the actor may see the given record. List
// operations filter with this rather than erroring per record.
func (g *Guard) CanView(ctx context.Context, actor auth.Actor, resourceType string, resource any) bool {
	return g.gate.Can(ctx, actor, gate.ActionView, resourceType, resource)
}
