// Package store composes the per-tenant domain services into one engine.
//
// Every tenant is served by the same Engine type; tenants differ only in the
// repositories and configuration they are built with.
package store

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/delivery"
	"github.com/xenking/storefront/internal/domain/discount"
	"github.com/xenking/storefront/internal/domain/pricing"
	"github.com/xenking/storefront/internal/domain/tenant"
)

// Stock bounds, inclusive.
const (
	MinStock = 5
	MaxStock = 100
)

// ErrInvalidQuantity is returned when a quote is requested for fewer than
// one unit.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Repositories bundles the storage a tenant engine reads from.
type Repositories struct {
	Products  catalog.Repository
	Prices    pricing.Repository
	Zones     delivery.Repository
	Discounts discount.Repository
}

// PricedProduct is a product with its resolved unit price.
type PricedProduct struct {
	Product   *catalog.Product
	UnitPrice decimal.Decimal
}

// Quote is the full price breakdown for a quantity of one product.
type Quote struct {
	Product         *catalog.Product
	Quantity        int
	UnitPrice       decimal.Decimal
	Total           decimal.Decimal
	DiscountPercent decimal.Decimal
	Reduced         decimal.Decimal
	Payable         decimal.Decimal
}

// Engine serves catalog, pricing, discount and delivery queries of one tenant.
type Engine struct {
	tenant    tenant.Config
	lookup    *catalog.Lookup
	prices    *pricing.Resolver
	discounts *discount.Resolver
	delivery  *delivery.Checker
	stock     func() int
}

// Option configures an Engine.
type Option func(*Engine)

// WithStockSource replaces the random stock generator.
func WithStockSource(fn func() int) Option {
	return func(e *Engine) { e.stock = fn }
}

// NewEngine builds the engine of cfg over repos.
func NewEngine(cfg tenant.Config, repos Repositories, opts ...Option) *Engine {
	e := &Engine{
		tenant:    cfg,
		lookup:    catalog.NewLookup(repos.Products),
		prices:    pricing.NewResolver(repos.Prices),
		discounts: discount.NewResolver(repos.Discounts),
		delivery:  delivery.NewChecker(repos.Zones),
		stock:     randomStock,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func randomStock() int {
	return MinStock + rand.IntN(MaxStock-MinStock+1) //nolint:gosec // not security sensitive
}

// Tenant returns the tenant configuration the engine was built with.
func (e *Engine) Tenant() tenant.Config { return e.tenant }

// Warm primes caches that depend on seeded data. Call it after seeding.
func (e *Engine) Warm(ctx context.Context) error {
	if _, err := e.delivery.Warm(ctx); err != nil {
		return fmt.Errorf("warm delivery filter: %w", err)
	}
	return nil
}

// FindProduct returns the product selected by ref.
func (e *Engine) FindProduct(ctx context.Context, ref catalog.Ref) (*catalog.Product, error) {
	p, err := e.lookup.Find(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", ref, err)
	}
	return p, nil
}

// Price returns the product selected by ref with its unit price.
func (e *Engine) Price(ctx context.Context, ref catalog.Ref) (*PricedProduct, error) {
	p, err := e.FindProduct(ctx, ref)
	if err != nil {
		return nil, err
	}
	price, err := e.prices.ResolvePrice(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("resolve price of %s: %w", p.ExternalID, err)
	}
	return &PricedProduct{Product: p, UnitPrice: price}, nil
}

// Discount applies the tenant's discount schedule to total. A total outside
// every bracket gets zero percent off.
func (e *Engine) Discount(ctx context.Context, total decimal.Decimal) (discount.Result, error) {
	return e.discounts.Resolve(ctx, total)
}

// Quote prices quantity units of the product selected by ref and applies the
// discount bracket of the resulting total.
func (e *Engine) Quote(ctx context.Context, ref catalog.Ref, quantity int) (*Quote, error) {
	if quantity < 1 {
		return nil, errors.Wrapf(ErrInvalidQuantity, "got %d", quantity)
	}

	priced, err := e.Price(ctx, ref)
	if err != nil {
		return nil, err
	}

	total := priced.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	res, err := e.Discount(ctx, total)
	if err != nil {
		return nil, err
	}

	return &Quote{
		Product:         priced.Product,
		Quantity:        quantity,
		UnitPrice:       priced.UnitPrice,
		Total:           total,
		DiscountPercent: res.PercentOff,
		Reduced:         res.Reduced,
		Payable:         res.Payable,
	}, nil
}

// CheckDelivery classifies a standalone postal code.
func (e *Engine) CheckDelivery(ctx context.Context, postalCode string) (delivery.Result, error) {
	return e.delivery.CheckPostalCode(ctx, postalCode)
}

// CheckDeliveryForProduct classifies the registered postal code of the
// product selected by ref.
func (e *Engine) CheckDeliveryForProduct(ctx context.Context, ref catalog.Ref) (delivery.Result, error) {
	p, err := e.FindProduct(ctx, ref)
	if err != nil {
		return delivery.Result{}, err
	}
	if p.PostalCode == "" {
		return delivery.Result{}, errors.Wrapf(delivery.ErrNoPostalCode, "product %s", p.ExternalID)
	}
	return e.delivery.CheckPostalCode(ctx, p.PostalCode)
}

// Stock returns the stock level of the product selected by ref. Inventory is
// not tracked; the level is random in [MinStock, MaxStock] on every call.
func (e *Engine) Stock(ctx context.Context, ref catalog.Ref) (int, error) {
	if _, err := e.FindProduct(ctx, ref); err != nil {
		return 0, err
	}
	return e.stock(), nil
}
