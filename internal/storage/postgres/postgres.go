// Package postgres implements the tenant repositories on PostgreSQL.
//
// Every tenant lives in its own schema. Pools created by NewPool pin
// search_path to that schema, so queries use unqualified table names.
package postgres

import (
	"context"
	"fmt"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/db"
)

// NewPool creates a pgxpool.Pool bound to the given schema, with
// shopspring/decimal support for NUMERIC columns.
func NewPool(ctx context.Context, databaseURL, namespace string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	cfg.ConnConfig.RuntimeParams["search_path"] = namespace
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	return pool, nil
}

// RunMigrations creates the tenant schema if needed and applies the embedded
// DDL inside it.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, namespace string) error {
	createSchema := "CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{namespace}.Sanitize()
	if _, err := pool.Exec(ctx, createSchema); err != nil {
		return fmt.Errorf("creating schema %q: %w", namespace, err)
	}
	if _, err := pool.Exec(ctx, db.Schema); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Repositories holds every repository of one tenant.
type Repositories struct {
	Products  *ProductRepository
	Prices    *PriceRepository
	Zones     *ZoneRepository
	Discounts *DiscountRepository
	Seed      *SeedStore
}

// NewRepositories builds all repositories over pool.
func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Products:  NewProductRepository(pool),
		Prices:    NewPriceRepository(pool),
		Zones:     NewZoneRepository(pool),
		Discounts: NewDiscountRepository(pool),
		Seed:      NewSeedStore(pool),
	}
}
