package seed

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- In-memory transactional store ---

type memTables struct {
	products  []Product
	prices    []PriceTier
	zones     []Zone
	discounts []DiscountTier
}

func (m memTables) clone() memTables {
	return memTables{
		products:  append([]Product(nil), m.products...),
		prices:    append([]PriceTier(nil), m.prices...),
		zones:     append([]Zone(nil), m.zones...),
		discounts: append([]DiscountTier(nil), m.discounts...),
	}
}

type memStore struct {
	committed memTables
	failOn    Table
	commits   int
	rollbacks int
}

type memTx struct {
	tables *memTables
	failOn Table
}

func (s *memStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	work := s.committed.clone()
	if err := fn(ctx, &memTx{tables: &work, failOn: s.failOn}); err != nil {
		s.rollbacks++
		return err
	}
	s.committed = work
	s.commits++
	return nil
}

func (tx *memTx) Count(_ context.Context, table Table) (int, error) {
	switch table {
	case TableProducts:
		return len(tx.tables.products), nil
	case TablePriceTiers:
		return len(tx.tables.prices), nil
	case TableDeliveryZones:
		return len(tx.tables.zones), nil
	case TableDiscountTiers:
		return len(tx.tables.discounts), nil
	}
	return 0, errors.New("unknown table")
}

func (tx *memTx) InsertProducts(_ context.Context, products []Product) error {
	if tx.failOn == TableProducts {
		return errors.New("unique violation")
	}
	tx.tables.products = append(tx.tables.products, products...)
	return nil
}

func (tx *memTx) InsertPriceTiers(_ context.Context, tiers []PriceTier) error {
	if tx.failOn == TablePriceTiers {
		return errors.New("check violation")
	}
	tx.tables.prices = append(tx.tables.prices, tiers...)
	return nil
}

func (tx *memTx) InsertZones(_ context.Context, zones []Zone) error {
	if tx.failOn == TableDeliveryZones {
		return errors.New("check violation")
	}
	tx.tables.zones = append(tx.tables.zones, zones...)
	return nil
}

func (tx *memTx) InsertDiscountTiers(_ context.Context, tiers []DiscountTier) error {
	if tx.failOn == TableDiscountTiers {
		return errors.New("check violation")
	}
	tx.tables.discounts = append(tx.tables.discounts, tiers...)
	return nil
}

// --- Helpers ---

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testData() Data {
	return Data{
		Products: []Product{
			{ExternalID: "py_001", Name: "Python Crash Course", Publisher: "No Starch Press", Genre: "python", SubjectCode: "py", SerialNumber: 1},
			{ExternalID: "py_002", Name: "Effective Python", Publisher: "Addison-Wesley", Genre: "python", SubjectCode: "py", SerialNumber: 2},
		},
		Prices: []decimal.Decimal{dec("599.99"), dec("799.99"), dec("999.99")},
		Zones:  []Zone{{PostalCode: "110001", LeadTimeDays: 1}},
		Discounts: []DiscountTier{
			{CostFrom: dec("0"), CostTo: dec("800"), PercentOff: dec("0")},
			{CostFrom: dec("800"), CostTo: dec("1200"), PercentOff: dec("5")},
		},
	}
}

func counts(m memTables) [4]int {
	return [4]int{len(m.products), len(m.prices), len(m.zones), len(m.discounts)}
}

// --- Tests ---

func TestSeed_EmptyStore(t *testing.T) {
	store := &memStore{}
	report, err := NewSeeder(store).Seed(context.Background(), "amazon", testData())
	require.NoError(t, err)

	assert.Equal(t, [4]int{2, 3, 1, 2}, counts(store.committed))
	assert.Equal(t, 2, report.Inserted[TableProducts])
	assert.Equal(t, 3, report.Inserted[TablePriceTiers])
	assert.Empty(t, report.Skipped)

	for i, tier := range store.committed.prices {
		assert.Equal(t, i+1, tier.ID, "price tiers must be numbered 1..N")
	}
}

func TestSeed_Idempotent(t *testing.T) {
	store := &memStore{}
	s := NewSeeder(store)

	_, err := s.Seed(context.Background(), "amazon", testData())
	require.NoError(t, err)
	first := counts(store.committed)

	report, err := s.Seed(context.Background(), "amazon", testData())
	require.NoError(t, err)

	assert.Equal(t, first, counts(store.committed))
	assert.Empty(t, report.Inserted)
	assert.Equal(t, Tables, report.Skipped)
}

func TestSeed_PartialTableIsSkipped(t *testing.T) {
	store := &memStore{committed: memTables{
		prices: []PriceTier{{ID: 1, Amount: dec("10")}},
	}}

	report, err := NewSeeder(store).Seed(context.Background(), "sapna", testData())
	require.NoError(t, err)

	assert.Len(t, store.committed.prices, 1, "non-empty table is not topped up")
	assert.Len(t, store.committed.products, 2)
	assert.Equal(t, []Table{TablePriceTiers}, report.Skipped)
}

func TestSeed_FailureRollsBack(t *testing.T) {
	for _, table := range Tables {
		t.Run(string(table), func(t *testing.T) {
			store := &memStore{failOn: table}
			_, err := NewSeeder(store).Seed(context.Background(), "flipkart", testData())

			var seedErr *Error
			require.ErrorAs(t, err, &seedErr)
			assert.Equal(t, "flipkart", seedErr.Tenant)
			assert.Equal(t, table, seedErr.Table)
			assert.Equal(t, [4]int{}, counts(store.committed), "nothing may be committed")
			assert.Equal(t, 1, store.rollbacks)
			assert.Zero(t, store.commits)
		})
	}
}

func TestSeed_InvalidData(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Data)
		msg    string
	}{
		{name: "no prices", mutate: func(d *Data) { d.Prices = nil }, msg: "no prices"},
		{name: "non positive price", mutate: func(d *Data) { d.Prices[1] = dec("0") }, msg: "not positive"},
		{name: "duplicate external id", mutate: func(d *Data) { d.Products[1].ExternalID = "py_001" }, msg: "duplicate external id"},
		{name: "empty external id", mutate: func(d *Data) { d.Products[0].ExternalID = "" }, msg: "empty external id"},
		{name: "inverted interval", mutate: func(d *Data) { d.Discounts[0].CostTo = dec("0") }, msg: "not below"},
		{name: "percent over 100", mutate: func(d *Data) { d.Discounts[1].PercentOff = dec("101") }, msg: "outside 0..100"},
		{name: "negative lead time", mutate: func(d *Data) { d.Zones[0].LeadTimeDays = -1 }, msg: "negative lead time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := testData()
			tt.mutate(&data)
			store := &memStore{}

			_, err := NewSeeder(store).Seed(context.Background(), "amazon", data)

			var seedErr *Error
			require.ErrorAs(t, err, &seedErr)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Zero(t, store.commits+store.rollbacks, "no transaction for invalid data")
		})
	}
}

func TestLoadFixtures(t *testing.T) {
	const doc = `{
		"amazon": {
			"products": [{"external_id": "x_1", "name": "Go in Action", "publisher": "Manning", "genre": "go", "subject_code": "go", "serial_number": 1}],
			"prices": ["450.50", 500],
			"deliverables": [{"pincode": "110001", "delivery_time": 1}],
			"discounts": [{"cost_from": 0, "cost_to": "1000", "percent_off": 2.5}]
		}
	}`

	dir := t.TempDir()

	plain := filepath.Join(dir, "fixtures.json")
	require.NoError(t, os.WriteFile(plain, []byte(doc), 0o600))

	var buf bytes.Buffer
	gz := pgzip.NewWriter(&buf)
	_, err := gz.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	compressed := filepath.Join(dir, "fixtures.json.gz")
	require.NoError(t, os.WriteFile(compressed, buf.Bytes(), 0o600))

	for _, path := range []string{plain, compressed} {
		fx, err := LoadFixtures(path)
		require.NoError(t, err, path)
		data, ok := fx["amazon"]
		require.True(t, ok)
		require.Len(t, data.Products, 1)
		assert.Equal(t, "Go in Action", data.Products[0].Name)
		assert.True(t, dec("450.5").Equal(data.Prices[0]))
		assert.True(t, dec("2.5").Equal(data.Discounts[0].PercentOff))
		assert.Equal(t, 1, data.Zones[0].LeadTimeDays)
	}
}

func TestDecodeFixtures_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		msg  string
	}{
		{name: "negative price", doc: `{"sapna": {"prices": [-1]}}`, msg: "not positive"},
		{name: "missing prices", doc: `{"amazon": {"products": [{"external_id": "a", "name": "A"}]}}`, msg: "no prices"},
		{name: "empty prices", doc: `{"amazon": {"prices": []}}`, msg: "no prices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx, err := DecodeFixtures(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Nil(t, fx)
			assert.Contains(t, err.Error(), "fixtures for")
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
