package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/discount"
)

const listDiscountTiersSQL = `SELECT tier_id, cost_from, cost_to, percent_off, created_at
	FROM discount_tiers ORDER BY tier_id`

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// ListTiers returns the discount schedule ordered by tier id.
func (r *DiscountRepository) ListTiers(ctx context.Context) ([]discount.Tier, error) {
	rows, err := r.pool.Query(ctx, listDiscountTiersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing discount tiers: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (discount.Tier, error) {
		var t discount.Tier
		err := row.Scan(&t.ID, &t.CostFrom, &t.CostTo, &t.PercentOff, &t.CreatedAt)
		return t, err
	})
}
