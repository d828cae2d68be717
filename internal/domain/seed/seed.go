// Package seed populates a tenant's tables with initial data.
//
// Seeding is idempotent per table: rows are inserted only into tables that
// are empty. A table holding any row is skipped entirely, even when it holds
// fewer rows than the seed data. All tables of a tenant are seeded in one
// transaction; any failure rolls the whole tenant back.
package seed

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Table names a seeded table.
type Table string

// Seeded tables in insertion order.
const (
	TableProducts      Table = "products"
	TablePriceTiers    Table = "price_tiers"
	TableDeliveryZones Table = "delivery_zones"
	TableDiscountTiers Table = "discount_tiers"
)

// Tables lists every seeded table in insertion order.
var Tables = []Table{TableProducts, TablePriceTiers, TableDeliveryZones, TableDiscountTiers}

// Product is a catalog row to insert. Its internal id is assigned by storage.
type Product struct {
	ExternalID   string `json:"external_id"`
	Name         string `json:"name"`
	Publisher    string `json:"publisher"`
	Genre        string `json:"genre"`
	SubjectCode  string `json:"subject_code"`
	SerialNumber int    `json:"serial_number"`
	PostalCode   string `json:"postal_code,omitempty"`
}

// PriceTier is a price row to insert with an explicit id.
type PriceTier struct {
	ID     int
	Amount decimal.Decimal
}

// Zone is a deliverability row to insert.
type Zone struct {
	PostalCode   string `json:"pincode"`
	LeadTimeDays int    `json:"delivery_time"`
}

// DiscountTier is a discount schedule row to insert.
type DiscountTier struct {
	CostFrom   decimal.Decimal `json:"cost_from"`
	CostTo     decimal.Decimal `json:"cost_to"`
	PercentOff decimal.Decimal `json:"percent_off"`
}

// Data is the complete seed set of one tenant.
type Data struct {
	Products  []Product         `json:"products"`
	Prices    []decimal.Decimal `json:"prices"`
	Zones     []Zone            `json:"deliverables"`
	Discounts []DiscountTier    `json:"discounts"`
}

// PriceTiers returns the prices as tiers numbered 1..N in order. Pricing
// relies on this contiguous numbering.
func (d Data) PriceTiers() []PriceTier {
	tiers := make([]PriceTier, len(d.Prices))
	for i, amount := range d.Prices {
		tiers[i] = PriceTier{ID: i + 1, Amount: amount}
	}
	return tiers
}

// Validate checks the seed set for values storage would reject or that
// would break pricing and discount invariants.
func (d Data) Validate() error {
	seen := make(map[string]struct{}, len(d.Products))
	for i, p := range d.Products {
		if p.ExternalID == "" {
			return errors.Errorf("product %d: empty external id", i)
		}
		if _, dup := seen[p.ExternalID]; dup {
			return errors.Errorf("product %d: duplicate external id %q", i, p.ExternalID)
		}
		seen[p.ExternalID] = struct{}{}
		if p.Name == "" {
			return errors.Errorf("product %q: empty name", p.ExternalID)
		}
	}
	if len(d.Prices) == 0 {
		return errors.New("no prices: pricing needs at least one tier")
	}
	for i, amount := range d.Prices {
		if !amount.IsPositive() {
			return errors.Errorf("price %d: amount %s is not positive", i+1, amount)
		}
	}
	for i, z := range d.Zones {
		if z.PostalCode == "" {
			return errors.Errorf("zone %d: empty postal code", i)
		}
		if z.LeadTimeDays < 0 {
			return errors.Errorf("zone %q: negative lead time %d", z.PostalCode, z.LeadTimeDays)
		}
	}
	hundred := decimal.NewFromInt(100)
	for i, t := range d.Discounts {
		if !t.CostFrom.LessThan(t.CostTo) {
			return errors.Errorf("discount %d: cost_from %s is not below cost_to %s", i, t.CostFrom, t.CostTo)
		}
		if t.PercentOff.IsNegative() || t.PercentOff.GreaterThan(hundred) {
			return errors.Errorf("discount %d: percent_off %s outside 0..100", i, t.PercentOff)
		}
	}
	return nil
}

// Error reports a failed tenant seed. Nothing of the tenant's seed was
// committed when it is returned.
type Error struct {
	Tenant string
	// Table is empty when the failure is not tied to one table.
	Table Table
	Err   error
}

func (e *Error) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("seed tenant %s: %v", e.Tenant, e.Err)
	}
	return fmt.Sprintf("seed tenant %s table %s: %v", e.Tenant, e.Table, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Tx is the transactional view of a tenant's storage used during seeding.
type Tx interface {
	Count(ctx context.Context, table Table) (int, error)
	InsertProducts(ctx context.Context, products []Product) error
	InsertPriceTiers(ctx context.Context, tiers []PriceTier) error
	InsertZones(ctx context.Context, zones []Zone) error
	InsertDiscountTiers(ctx context.Context, tiers []DiscountTier) error
}

// Store runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Report summarizes a successful seed.
type Report struct {
	Inserted map[Table]int
	Skipped  []Table
}

// Seeder seeds one tenant's storage.
type Seeder struct {
	store Store
}

// NewSeeder creates a Seeder writing through store.
func NewSeeder(store Store) *Seeder {
	return &Seeder{store: store}
}

// Seed inserts data into every empty table of the tenant. It returns a
// *Error when validation or any statement fails.
func (s *Seeder) Seed(ctx context.Context, tenant string, data Data) (*Report, error) {
	if err := data.Validate(); err != nil {
		return nil, &Error{Tenant: tenant, Err: err}
	}

	var report *Report
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		r := &Report{Inserted: make(map[Table]int, len(Tables))}
		for _, table := range Tables {
			n, err := seedTable(ctx, tx, table, data)
			if err != nil {
				return &Error{Tenant: tenant, Table: table, Err: err}
			}
			if n < 0 {
				r.Skipped = append(r.Skipped, table)
				continue
			}
			r.Inserted[table] = n
		}
		report = r
		return nil
	})
	if err != nil {
		var seedErr *Error
		if errors.As(err, &seedErr) {
			return nil, seedErr
		}
		return nil, &Error{Tenant: tenant, Err: err}
	}

	zctx.From(ctx).Info("Tenant seeded",
		zap.String("tenant", tenant),
		zap.Any("inserted", report.Inserted),
		zap.Any("skipped", report.Skipped),
	)
	return report, nil
}

// seedTable inserts the rows of one table. It returns -1 when the table
// already had rows and was skipped.
func seedTable(ctx context.Context, tx Tx, table Table, data Data) (int, error) {
	count, err := tx.Count(ctx, table)
	if err != nil {
		return 0, errors.Wrap(err, "count rows")
	}
	if count > 0 {
		return -1, nil
	}

	switch table {
	case TableProducts:
		return len(data.Products), tx.InsertProducts(ctx, data.Products)
	case TablePriceTiers:
		return len(data.Prices), tx.InsertPriceTiers(ctx, data.PriceTiers())
	case TableDeliveryZones:
		return len(data.Zones), tx.InsertZones(ctx, data.Zones)
	case TableDiscountTiers:
		return len(data.Discounts), tx.InsertDiscountTiers(ctx, data.Discounts)
	default:
		return 0, errors.Errorf("unknown table %q", table)
	}
}
