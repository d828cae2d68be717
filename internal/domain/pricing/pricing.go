// Package pricing maps catalog products onto a tenant's price tiers.
//
// A product is not linked to a tier by a stored key. Its tier is computed on
// every lookup as (internal_id mod tier_count) + 1, so the mapping is stable
// for as long as the number of tiers does not change.
package pricing

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/catalog"
)

var (
	// ErrNoPricesAvailable is returned when the price table is empty. It
	// signals broken tenant data rather than a bad request.
	ErrNoPricesAvailable = errors.New("no prices available")
	// ErrPriceNotFound is returned when the computed tier id has no row,
	// meaning tier ids are not the contiguous sequence 1..N.
	ErrPriceNotFound = errors.New("price not found")
)

// Tier is one price point of the price table.
type Tier struct {
	ID        int
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// Repository provides read access to the price table.
type Repository interface {
	CountTiers(ctx context.Context) (int, error)
	// GetTier returns ErrPriceNotFound when no tier has the given id.
	GetTier(ctx context.Context, id int) (*Tier, error)
}

// TierIndex returns the tier id assigned to a product with the given
// internal id when n tiers exist. n must be positive.
func TierIndex(internalID int64, n int) int {
	idx := internalID % int64(n)
	if idx < 0 {
		idx += int64(n)
	}
	return int(idx) + 1
}

// Resolver computes unit prices for products.
type Resolver struct {
	repo Repository
}

// NewResolver creates a Resolver over the given price table.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// ResolvePrice returns the unit price of p.
func (r *Resolver) ResolvePrice(ctx context.Context, p *catalog.Product) (decimal.Decimal, error) {
	tier, err := r.ResolveTier(ctx, p)
	if err != nil {
		return decimal.Zero, err
	}
	return tier.Amount, nil
}

// ResolveTier returns the price tier p maps to.
func (r *Resolver) ResolveTier(ctx context.Context, p *catalog.Product) (*Tier, error) {
	n, err := r.repo.CountTiers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "count price tiers")
	}
	if n == 0 {
		return nil, ErrNoPricesAvailable
	}

	id := TierIndex(p.InternalID, n)
	tier, err := r.repo.GetTier(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPriceNotFound) {
			return nil, errors.Wrapf(ErrPriceNotFound, "tier %d of %d", id, n)
		}
		return nil, errors.Wrapf(err, "get price tier %d", id)
	}
	return tier, nil
}
