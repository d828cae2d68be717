package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/delivery"
)

const (
	findZoneSQL = `SELECT postal_code, lead_time_days, created_at FROM delivery_zones
		WHERE postal_code = $1 ORDER BY zone_id LIMIT 1`

	listPostalCodesSQL = `SELECT DISTINCT postal_code FROM delivery_zones`
)

var _ delivery.Repository = (*ZoneRepository)(nil)

// ZoneRepository implements delivery.Repository backed by PostgreSQL.
type ZoneRepository struct {
	pool *pgxpool.Pool
}

// NewZoneRepository returns a ZoneRepository that uses the given pool.
func NewZoneRepository(pool *pgxpool.Pool) *ZoneRepository {
	return &ZoneRepository{pool: pool}
}

// FindByPostalCode returns the first zone registered for the postal code, or
// nil when there is none.
func (r *ZoneRepository) FindByPostalCode(ctx context.Context, postalCode string) (*delivery.Zone, error) {
	rows, err := r.pool.Query(ctx, findZoneSQL, postalCode)
	if err != nil {
		return nil, fmt.Errorf("finding zone %q: %w", postalCode, err)
	}

	z, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (delivery.Zone, error) {
		var z delivery.Zone
		err := row.Scan(&z.PostalCode, &z.LeadTimeDays, &z.CreatedAt)
		return z, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding zone %q: %w", postalCode, err)
	}
	return &z, nil
}

// ListPostalCodes returns every distinct postal code with a zone.
func (r *ZoneRepository) ListPostalCodes(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, listPostalCodesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing postal codes: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
