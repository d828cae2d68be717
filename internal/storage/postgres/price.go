package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/pricing"
)

const (
	countPriceTiersSQL = `SELECT count(*) FROM price_tiers`

	getPriceTierSQL = `SELECT tier_id, amount, created_at FROM price_tiers WHERE tier_id = $1`
)

var _ pricing.Repository = (*PriceRepository)(nil)

// PriceRepository implements pricing.Repository backed by PostgreSQL.
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository returns a PriceRepository that uses the given pool.
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// CountTiers returns the number of price tiers.
func (r *PriceRepository) CountTiers(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countPriceTiersSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting price tiers: %w", err)
	}
	return n, nil
}

// GetTier returns the tier with the given id.
func (r *PriceRepository) GetTier(ctx context.Context, id int) (*pricing.Tier, error) {
	rows, err := r.pool.Query(ctx, getPriceTierSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting price tier %d: %w", id, err)
	}

	t, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (pricing.Tier, error) {
		var t pricing.Tier
		err := row.Scan(&t.ID, &t.Amount, &t.CreatedAt)
		return t, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pricing.ErrPriceNotFound
		}
		return nil, fmt.Errorf("getting price tier %d: %w", id, err)
	}
	return &t, nil
}
