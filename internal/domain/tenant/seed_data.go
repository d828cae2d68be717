package tenant

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/seed"
)

type book struct {
	suffix  string
	name    string
	pub     string
	genre   string
	subject string
	serial  int
}

var books = []book{
	{"py_001", "Python Crash Course", "No Starch Press", "python", "py", 1},
	{"py_002", "Automate the Boring Stuff with Python", "No Starch Press", "python", "py", 2},
	{"py_003", "Effective Python", "Addison-Wesley", "python", "py", 3},
	{"java_001", "Java: The Complete Reference", "Oracle Press", "java", "java", 1},
	{"java_002", "Effective Java", "Addison-Wesley", "java", "java", 2},
	{"java_003", "Head First Java", "O'Reilly Media", "java", "java", 3},
	{"dsa_001", "Introduction to Algorithms", "MIT Press", "data_structures_algorithms", "dsa", 1},
	{"dsa_002", "Algorithms Unlocked", "MIT Press", "data_structures_algorithms", "dsa", 2},
	{"dsa_003", "Data Structures and Algorithms in Python", "Wiley", "data_structures_algorithms", "dsa", 3},
	{"aiml_001", "Hands-On Machine Learning", "O'Reilly Media", "artificial_intelligence_machine_learning", "aiml", 1},
	{"aiml_002", "Pattern Recognition and Machine Learning", "Springer", "artificial_intelligence_machine_learning", "aiml", 2},
	{"aiml_003", "Deep Learning", "MIT Press", "artificial_intelligence_machine_learning", "aiml", 3},
}

// products builds the shared book list. postalCodes, when non-empty, is
// assigned round-robin as each product's registered postal code.
func products(idPrefix string, postalCodes []string) []seed.Product {
	out := make([]seed.Product, len(books))
	for i, b := range books {
		out[i] = seed.Product{
			ExternalID:   idPrefix + b.suffix,
			Name:         b.name,
			Publisher:    b.pub,
			Genre:        b.genre,
			SubjectCode:  b.subject,
			SerialNumber: b.serial,
		}
		if len(postalCodes) > 0 {
			out[i].PostalCode = postalCodes[i%len(postalCodes)]
		}
	}
	return out
}

func amounts(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func discounts(rows ...[3]string) []seed.DiscountTier {
	out := make([]seed.DiscountTier, len(rows))
	for i, r := range rows {
		out[i] = seed.DiscountTier{
			CostFrom:   decimal.RequireFromString(r[0]),
			CostTo:     decimal.RequireFromString(r[1]),
			PercentOff: decimal.RequireFromString(r[2]),
		}
	}
	return out
}

var standardPrices = []string{
	"599.99", "799.99", "999.99", "1299.99", "1499.99", "1699.99",
	"1899.99", "2099.99", "2299.99", "2499.99", "2699.99", "2899.99",
}

var standardZones = []seed.Zone{
	{PostalCode: "110001", LeadTimeDays: 2},
	{PostalCode: "400001", LeadTimeDays: 3},
	{PostalCode: "560001", LeadTimeDays: 4},
	{PostalCode: "700001", LeadTimeDays: 5},
	{PostalCode: "600001", LeadTimeDays: 3},
}

var standardDiscounts = [][3]string{
	{"0", "800", "0"},
	{"800", "1200", "5"},
	{"1200", "1800", "10"},
	{"1800", "2500", "15"},
	{"2500", "10000", "20"},
}

func amazonSeed() seed.Data {
	return seed.Data{
		Products:  products("amazon_", nil),
		Prices:    amounts(standardPrices...),
		Zones:     append([]seed.Zone(nil), standardZones...),
		Discounts: discounts(standardDiscounts...),
	}
}

func sapnaSeed() seed.Data {
	return seed.Data{
		Products:  products("", nil),
		Prices:    amounts(standardPrices...),
		Zones:     append([]seed.Zone(nil), standardZones...),
		Discounts: discounts(standardDiscounts...),
	}
}

func flipkartSeed() seed.Data {
	zones := []seed.Zone{
		{PostalCode: "110001", LeadTimeDays: 1},
		{PostalCode: "400001", LeadTimeDays: 2},
		{PostalCode: "560001", LeadTimeDays: 3},
		{PostalCode: "700001", LeadTimeDays: 4},
		{PostalCode: "600001", LeadTimeDays: 2},
		{PostalCode: "110002", LeadTimeDays: 1},
		{PostalCode: "400002", LeadTimeDays: 1},
		{PostalCode: "560002", LeadTimeDays: 2},
		{PostalCode: "700002", LeadTimeDays: 3},
		{PostalCode: "600002", LeadTimeDays: 2},
	}
	codes := make([]string, len(zones))
	for i, z := range zones {
		codes[i] = z.PostalCode
	}

	return seed.Data{
		Products: products("", codes),
		Prices: amounts(
			"579.99", "759.99", "949.99", "1249.99", "1429.99", "1629.99",
			"1819.99", "2019.99", "2219.99", "2399.99", "2599.99", "2799.99",
		),
		Zones: zones,
		Discounts: discounts(
			[3]string{"0", "750", "0"},
			[3]string{"750", "1150", "7"},
			[3]string{"1150", "1750", "12"},
			[3]string{"1750", "2400", "18"},
			[3]string{"2400", "10000", "25"},
		),
	}
}
