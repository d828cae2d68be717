package app

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/domain/seed"
	"github.com/xenking/storefront/internal/domain/store"
	"github.com/xenking/storefront/internal/domain/tenant"
	"github.com/xenking/storefront/internal/storage/postgres"
)

// Tenant is a bootstrapped tenant ready to serve requests.
type Tenant struct {
	Config tenant.Config
	Pool   *pgxpool.Pool
	Engine *store.Engine
}

// Tenants is the set of bootstrapped tenants.
type Tenants []*Tenant

// Close releases every tenant pool.
func (ts Tenants) Close() {
	for _, t := range ts {
		if t != nil && t.Pool != nil {
			t.Pool.Close()
		}
	}
}

// Engines returns the tenant engines in order.
func (ts Tenants) Engines() []*store.Engine {
	out := make([]*store.Engine, len(ts))
	for i, t := range ts {
		out[i] = t.Engine
	}
	return out
}

// Bootstrap connects, migrates, seeds and warms every configured tenant
// concurrently. Any tenant failure cancels the rest, closes opened pools and
// is returned.
func Bootstrap(ctx context.Context, cfg *Config) (Tenants, error) {
	configs, err := cfg.TenantConfigs()
	if err != nil {
		return nil, err
	}

	tenants := make(Tenants, len(configs))
	g, gctx := errgroup.WithContext(ctx)
	for i, tc := range configs {
		g.Go(func() error {
			t, err := bootstrapTenant(gctx, tc, cfg.TenantDatabaseURL(tc.Name))
			if t != nil {
				tenants[i] = t
			}
			if err != nil {
				return errors.Wrapf(err, "tenant %s", tc.Name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		tenants.Close()
		return nil, err
	}
	return tenants, nil
}

// bootstrapTenant returns the tenant with its pool set as soon as the pool
// exists, so the caller can close it on failure.
func bootstrapTenant(ctx context.Context, tc tenant.Config, databaseURL string) (*Tenant, error) {
	lg := zctx.From(ctx).With(zap.String("tenant", tc.Name))
	ctx = zctx.Base(ctx, lg)

	if err := tc.Validate(); err != nil {
		return nil, err
	}

	pool, err := postgres.NewPool(ctx, databaseURL, tc.Namespace)
	if err != nil {
		return nil, errors.Wrap(err, "create db pool")
	}
	t := &Tenant{Config: tc, Pool: pool}

	if err := postgres.RunMigrations(ctx, pool, tc.Namespace); err != nil {
		return t, errors.Wrap(err, "run migrations")
	}

	repos := postgres.NewRepositories(pool)
	if _, err := seed.NewSeeder(repos.Seed).Seed(ctx, tc.Name, tc.Seed); err != nil {
		return t, err
	}

	t.Engine = store.NewEngine(tc, store.Repositories{
		Products:  repos.Products,
		Prices:    repos.Prices,
		Zones:     repos.Zones,
		Discounts: repos.Discounts,
	})
	if err := t.Engine.Warm(ctx); err != nil {
		return t, err
	}

	lg.Info("Tenant ready", zap.String("namespace", tc.Namespace))
	return t, nil
}
