package store

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/delivery"
	"github.com/xenking/storefront/internal/domain/discount"
	"github.com/xenking/storefront/internal/domain/pricing"
	"github.com/xenking/storefront/internal/domain/tenant"
)

// --- Mock implementations ---

type mockProducts struct {
	products []catalog.Product
	err      error
}

func (m *mockProducts) find(match func(catalog.Product) bool) (*catalog.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.products {
		if match(m.products[i]) {
			return &m.products[i], nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (m *mockProducts) GetByInternalID(_ context.Context, id int64) (*catalog.Product, error) {
	return m.find(func(p catalog.Product) bool { return p.InternalID == id })
}

func (m *mockProducts) GetByExternalID(_ context.Context, id string) (*catalog.Product, error) {
	return m.find(func(p catalog.Product) bool { return p.ExternalID == id })
}

func (m *mockProducts) GetByName(_ context.Context, name string) (*catalog.Product, error) {
	return m.find(func(p catalog.Product) bool { return p.Name == name })
}

type mockPrices struct {
	amounts []string
}

func (m *mockPrices) CountTiers(context.Context) (int, error) { return len(m.amounts), nil }

func (m *mockPrices) GetTier(_ context.Context, id int) (*pricing.Tier, error) {
	if id < 1 || id > len(m.amounts) {
		return nil, pricing.ErrPriceNotFound
	}
	return &pricing.Tier{ID: id, Amount: decimal.RequireFromString(m.amounts[id-1])}, nil
}

type mockZones struct {
	zones []delivery.Zone
}

func (m *mockZones) FindByPostalCode(_ context.Context, code string) (*delivery.Zone, error) {
	for i := range m.zones {
		if m.zones[i].PostalCode == code {
			return &m.zones[i], nil
		}
	}
	return nil, nil
}

func (m *mockZones) ListPostalCodes(context.Context) ([]string, error) {
	codes := make([]string, len(m.zones))
	for i, z := range m.zones {
		codes[i] = z.PostalCode
	}
	return codes, nil
}

type mockDiscounts struct {
	tiers []discount.Tier
	err   error
}

func (m *mockDiscounts) ListTiers(context.Context) ([]discount.Tier, error) {
	return m.tiers, m.err
}

// --- Helpers ---

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *mockDiscounts) {
	t.Helper()
	discounts := &mockDiscounts{tiers: []discount.Tier{
		{ID: 1, CostFrom: dec("0"), CostTo: dec("800"), PercentOff: dec("0")},
		{ID: 2, CostFrom: dec("800"), CostTo: dec("1200"), PercentOff: dec("5")},
		{ID: 3, CostFrom: dec("1200"), CostTo: dec("1800"), PercentOff: dec("10")},
	}}
	repos := Repositories{
		Products: &mockProducts{products: []catalog.Product{
			{InternalID: 4, ExternalID: "amazon_java_001", Name: "Java: The Complete Reference", PostalCode: "110001"},
			{InternalID: 5, ExternalID: "amazon_java_002", Name: "Effective Java", PostalCode: "400001"},
			{InternalID: 6, ExternalID: "amazon_java_003", Name: "Head First Java"},
			{InternalID: 7, ExternalID: "amazon_dsa_001", Name: "Introduction to Algorithms", PostalCode: "999999"},
		}},
		Prices: &mockPrices{amounts: []string{"599.99", "799.99", "999.99"}},
		Zones: &mockZones{zones: []delivery.Zone{
			{PostalCode: "110001", LeadTimeDays: 1},
			{PostalCode: "400001", LeadTimeDays: 3},
		}},
		Discounts: discounts,
	}
	cfg := tenant.Config{Name: tenant.Amazon, DisplayName: "Amazon", Namespace: "amazon", ExternalIDField: "amazon_id"}
	return NewEngine(cfg, repos, opts...), discounts
}

// --- Tests ---

func TestEngine_Price(t *testing.T) {
	e, _ := newTestEngine(t)

	got, err := e.Price(context.Background(), catalog.ByInternalID(4))
	require.NoError(t, err)
	assert.Equal(t, "amazon_java_001", got.Product.ExternalID)
	assert.True(t, dec("799.99").Equal(got.UnitPrice), "4 mod 3 + 1 = tier 2")

	got, err = e.Price(context.Background(), catalog.ByName("Head First Java"))
	require.NoError(t, err)
	assert.True(t, dec("599.99").Equal(got.UnitPrice), "6 mod 3 + 1 = tier 1")
}

func TestEngine_Discount(t *testing.T) {
	tests := []struct {
		total       string
		wantPercent string
		wantPayable string
		wantTier    int64
	}{
		{total: "0", wantPercent: "0", wantPayable: "0", wantTier: 1},
		{total: "799.99", wantPercent: "0", wantPayable: "799.99", wantTier: 1},
		{total: "800", wantPercent: "5", wantPayable: "760", wantTier: 2},
		{total: "1199.99", wantPercent: "5", wantPayable: "1139.9905", wantTier: 2},
		{total: "1200", wantPercent: "10", wantPayable: "1080", wantTier: 3},
		{total: "1800", wantPercent: "0", wantPayable: "1800"},
	}

	e, _ := newTestEngine(t)
	for _, tt := range tests {
		t.Run(tt.total, func(t *testing.T) {
			got, err := e.Discount(context.Background(), dec(tt.total))
			require.NoError(t, err)
			assert.True(t, dec(tt.wantPercent).Equal(got.PercentOff), "percent %s", got.PercentOff)
			assert.True(t, dec(tt.wantPayable).Equal(got.Payable), "payable %s", got.Payable)
			assert.True(t, got.Total.Sub(got.Reduced).Equal(got.Payable))
			if tt.wantTier == 0 {
				assert.Nil(t, got.Tier, "upper bound is exclusive")
				return
			}
			require.NotNil(t, got.Tier)
			assert.Equal(t, tt.wantTier, got.Tier.ID)
		})
	}
}

func TestEngine_Discount_StorageError(t *testing.T) {
	e, discounts := newTestEngine(t)
	discounts.err = errors.New("connection reset")

	_, err := e.Discount(context.Background(), dec("900"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list discount tiers")
}

func TestEngine_Price_NotFound(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Price(context.Background(), catalog.ByExternalID("nope"))
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestEngine_Quote(t *testing.T) {
	e, _ := newTestEngine(t)

	q, err := e.Quote(context.Background(), catalog.ByInternalID(5), 1)
	require.NoError(t, err)
	assert.True(t, dec("999.99").Equal(q.UnitPrice))
	assert.True(t, dec("999.99").Equal(q.Total))
	assert.True(t, dec("5").Equal(q.DiscountPercent))
	assert.Equal(t, "50.00", q.Reduced.StringFixed(2))
	assert.Equal(t, "949.99", q.Payable.StringFixed(2))
	assert.True(t, q.Total.Equal(q.Payable.Add(q.Reduced)))

	q, err = e.Quote(context.Background(), catalog.ByInternalID(4), 2)
	require.NoError(t, err)
	assert.True(t, dec("1599.98").Equal(q.Total))
	assert.True(t, dec("10").Equal(q.DiscountPercent))
	assert.Equal(t, 2, q.Quantity)
}

func TestEngine_Quote_OutsideSchedule(t *testing.T) {
	e, _ := newTestEngine(t)
	q, err := e.Quote(context.Background(), catalog.ByInternalID(5), 10)
	require.NoError(t, err)
	assert.True(t, q.DiscountPercent.IsZero())
	assert.True(t, q.Total.Equal(q.Payable))
}

func TestEngine_Quote_InvalidQuantity(t *testing.T) {
	e, _ := newTestEngine(t)
	for _, qty := range []int{0, -3} {
		_, err := e.Quote(context.Background(), catalog.ByInternalID(4), qty)
		require.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestEngine_Quote_DiscountError(t *testing.T) {
	e, discounts := newTestEngine(t)
	discounts.err = errors.New("connection reset")

	_, err := e.Quote(context.Background(), catalog.ByInternalID(4), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list discount tiers")
}

func TestEngine_CheckDeliveryForProduct(t *testing.T) {
	tests := []struct {
		name       string
		ref        catalog.Ref
		wantStatus delivery.Status
		wantErr    error
	}{
		{name: "same day", ref: catalog.ByInternalID(4), wantStatus: delivery.SameDay},
		{name: "deliverable", ref: catalog.ByExternalID("amazon_java_002"), wantStatus: delivery.Deliverable},
		{name: "unknown zone", ref: catalog.ByInternalID(7), wantStatus: delivery.NotDeliverable},
		{name: "no postal code", ref: catalog.ByInternalID(6), wantErr: delivery.ErrNoPostalCode},
		{name: "missing product", ref: catalog.ByInternalID(99), wantErr: catalog.ErrNotFound},
	}

	e, _ := newTestEngine(t)
	require.NoError(t, e.Warm(context.Background()))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.CheckDeliveryForProduct(context.Background(), tt.ref)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
		})
	}
}

func TestEngine_CheckDelivery(t *testing.T) {
	e, _ := newTestEngine(t)
	got, err := e.CheckDelivery(context.Background(), "400001")
	require.NoError(t, err)
	assert.Equal(t, delivery.Deliverable, got.Status)
	assert.Equal(t, 3, got.LeadTimeDays)
}

func TestEngine_Stock(t *testing.T) {
	e, _ := newTestEngine(t)
	for range 200 {
		n, err := e.Stock(context.Background(), catalog.ByInternalID(4))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, MinStock)
		assert.LessOrEqual(t, n, MaxStock)
	}

	_, err := e.Stock(context.Background(), catalog.ByInternalID(42))
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestEngine_StockSource(t *testing.T) {
	e, _ := newTestEngine(t, WithStockSource(func() int { return 17 }))
	n, err := e.Stock(context.Background(), catalog.ByInternalID(5))
	require.NoError(t, err)
	assert.Equal(t, 17, n)
}
