package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/catalog"
)

const productColumns = `internal_id, external_id, name, publisher, genre, subject_code,
	serial_number, COALESCE(postal_code, ''), created_at`

const (
	getProductByInternalIDSQL = `SELECT ` + productColumns + ` FROM products WHERE internal_id = $1`

	getProductByExternalIDSQL = `SELECT ` + productColumns + ` FROM products WHERE external_id = $1`

	getProductByNameSQL = `SELECT ` + productColumns + ` FROM products WHERE name = $1
		ORDER BY internal_id LIMIT 1`
)

var _ catalog.Repository = (*ProductRepository)(nil)

// ProductRepository implements catalog.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// GetByInternalID returns the product with the given storage id.
func (r *ProductRepository) GetByInternalID(ctx context.Context, id int64) (*catalog.Product, error) {
	return r.getOne(ctx, fmt.Sprintf("internal id %d", id), getProductByInternalIDSQL, id)
}

// GetByExternalID returns the product with the given client-facing id.
func (r *ProductRepository) GetByExternalID(ctx context.Context, externalID string) (*catalog.Product, error) {
	return r.getOne(ctx, fmt.Sprintf("external id %q", externalID), getProductByExternalIDSQL, externalID)
}

// GetByName returns the product with the lowest internal id among those
// whose name matches exactly.
func (r *ProductRepository) GetByName(ctx context.Context, name string) (*catalog.Product, error) {
	return r.getOne(ctx, fmt.Sprintf("name %q", name), getProductByNameSQL, name)
}

func (r *ProductRepository) getOne(ctx context.Context, desc, query string, arg any) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("getting product by %s: %w", desc, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product by %s: %w", desc, err)
	}
	return &p, nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.InternalID, &p.ExternalID, &p.Name, &p.Publisher, &p.Genre, &p.SubjectCode,
		&p.SerialNumber, &p.PostalCode, &p.CreatedAt,
	)
	return p, err
}
