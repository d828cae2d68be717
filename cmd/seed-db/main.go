// Command seed-db migrates and seeds tenant schemas, then exits.
//
// It reads the same configuration as the API server, so the tenant list,
// database URLs and fixtures file come from STORE_ variables, config.yaml or
// flags such as --tenants and --fixtures.
package main

import (
	"context"

	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	appkg "github.com/xenking/storefront/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, _ *app.Telemetry) error {
		cfg, err := appkg.LoadConfig()
		if err != nil {
			return err
		}

		tenants, err := appkg.Bootstrap(zctx.Base(ctx, lg), cfg)
		if err != nil {
			return err
		}
		defer tenants.Close()

		lg.Info("Seed completed", zap.Int("tenants", len(tenants)))
		return nil
	})
}
