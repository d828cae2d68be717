// Package tenant describes the store tenants served by the engine.
//
// Tenants differ only in configuration: storage namespace, the name of the
// client-facing id field and seed data. Every tenant runs the same engine.
package tenant

import (
	"regexp"
	"slices"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/seed"
)

// Built-in tenant names.
const (
	Amazon   = "amazon"
	Flipkart = "flipkart"
	Sapna    = "sapna"
)

var namespaceRe = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// Config is the static description of one tenant.
type Config struct {
	// Name is the tenant key used in URLs and configuration.
	Name string
	// DisplayName appears in the service banner.
	DisplayName string
	// Namespace is the storage schema holding the tenant's tables.
	Namespace string
	// ExternalIDField names the client-facing product id in requests and
	// responses, for example "amazon_id".
	ExternalIDField string
	Seed            seed.Data
}

// Banner returns the root endpoint message.
func (c Config) Banner() string {
	return c.DisplayName + " Management System API - All endpoints ready!"
}

// Validate checks that the config can be used to build storage and routes.
func (c Config) Validate() error {
	if c.Name == "" {
		return errors.New("tenant name is empty")
	}
	if !namespaceRe.MatchString(c.Namespace) {
		return errors.Errorf("tenant %s: invalid namespace %q", c.Name, c.Namespace)
	}
	if c.ExternalIDField == "" {
		return errors.Errorf("tenant %s: external id field is empty", c.Name)
	}
	return nil
}

// Defaults returns the built-in tenants in fallback order.
func Defaults() []Config {
	return []Config{
		{
			Name:            Amazon,
			DisplayName:     "Amazon",
			Namespace:       "amazon",
			ExternalIDField: "amazon_id",
			Seed:            amazonSeed(),
		},
		{
			Name:            Flipkart,
			DisplayName:     "Flipkart",
			Namespace:       "flipkart",
			ExternalIDField: "flipkart_id",
			Seed:            flipkartSeed(),
		},
		{
			Name:            Sapna,
			DisplayName:     "Sapna",
			Namespace:       "sapna",
			ExternalIDField: "sapna_id",
			Seed:            sapnaSeed(),
		},
	}
}

// Select returns the built-in tenants whose names are listed, keeping the
// built-in order. Unknown names are an error.
func Select(names []string) ([]Config, error) {
	all := Defaults()
	for _, name := range names {
		if !slices.ContainsFunc(all, func(c Config) bool { return c.Name == name }) {
			return nil, errors.Errorf("unknown tenant %q", name)
		}
	}
	selected := make([]Config, 0, len(names))
	for _, c := range all {
		if slices.Contains(names, c.Name) {
			selected = append(selected, c)
		}
	}
	if len(selected) == 0 {
		return nil, errors.New("no tenants selected")
	}
	return selected, nil
}
