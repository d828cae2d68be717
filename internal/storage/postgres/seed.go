package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/seed"
)

var _ seed.Store = (*SeedStore)(nil)

// SeedStore implements seed.Store with one database transaction per call.
type SeedStore struct {
	pool *pgxpool.Pool
}

// NewSeedStore returns a SeedStore that uses the given pool.
func NewSeedStore(pool *pgxpool.Pool) *SeedStore {
	return &SeedStore{pool: pool}
}

// InTx runs fn in a transaction that is committed when fn returns nil.
func (s *SeedStore) InTx(ctx context.Context, fn func(ctx context.Context, tx seed.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, seedTx{tx: tx})
	})
}

type seedTx struct {
	tx pgx.Tx
}

func (t seedTx) Count(ctx context.Context, table seed.Table) (int, error) {
	var n int
	query := "SELECT count(*) FROM " + pgx.Identifier{string(table)}.Sanitize()
	if err := t.tx.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

func (t seedTx) InsertProducts(ctx context.Context, products []seed.Product) error {
	return t.copy(ctx, seed.TableProducts,
		[]string{"external_id", "name", "publisher", "genre", "subject_code", "serial_number", "postal_code"},
		len(products), func(i int) []any {
			p := products[i]
			var postal *string
			if p.PostalCode != "" {
				postal = &p.PostalCode
			}
			return []any{p.ExternalID, p.Name, p.Publisher, p.Genre, p.SubjectCode, p.SerialNumber, postal}
		})
}

func (t seedTx) InsertPriceTiers(ctx context.Context, tiers []seed.PriceTier) error {
	return t.copy(ctx, seed.TablePriceTiers, []string{"tier_id", "amount"},
		len(tiers), func(i int) []any {
			return []any{tiers[i].ID, tiers[i].Amount}
		})
}

func (t seedTx) InsertZones(ctx context.Context, zones []seed.Zone) error {
	return t.copy(ctx, seed.TableDeliveryZones, []string{"postal_code", "lead_time_days"},
		len(zones), func(i int) []any {
			return []any{zones[i].PostalCode, zones[i].LeadTimeDays}
		})
}

func (t seedTx) InsertDiscountTiers(ctx context.Context, tiers []seed.DiscountTier) error {
	return t.copy(ctx, seed.TableDiscountTiers, []string{"cost_from", "cost_to", "percent_off"},
		len(tiers), func(i int) []any {
			return []any{tiers[i].CostFrom, tiers[i].CostTo, tiers[i].PercentOff}
		})
}

// copy streams n rows into table. Rows are inserted in index order, so
// serial ids follow the order of the seed data.
func (t seedTx) copy(ctx context.Context, table seed.Table, columns []string, n int, row func(int) []any) error {
	if n == 0 {
		return nil
	}
	_, err := t.tx.CopyFrom(ctx, pgx.Identifier{string(table)}, columns,
		pgx.CopyFromSlice(n, func(i int) ([]any, error) { return row(i), nil }))
	if err != nil {
		return fmt.Errorf("copying into %s: %w", table, err)
	}
	return nil
}
