package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when no product matches a reference.
	ErrNotFound = errors.New("product not found")
	// ErrInvalidRequest is returned when a product reference cannot be built
	// from the supplied parameters.
	ErrInvalidRequest = errors.New("invalid product reference")
)

// Product is a catalog entry of a single store tenant.
//
// InternalID is assigned by storage on insertion and drives price tier
// selection. ExternalID is the client-facing identifier, unique per tenant.
type Product struct {
	InternalID   int64
	ExternalID   string
	Name         string
	Publisher    string
	Genre        string
	SubjectCode  string
	SerialNumber int
	// PostalCode is the product's registered dispatch postal code. Empty for
	// tenants that do not tie deliverability to products.
	PostalCode string
	CreatedAt  time.Time
}

// Repository defines read operations over a tenant's catalog.
type Repository interface {
	GetByInternalID(ctx context.Context, id int64) (*Product, error)
	GetByExternalID(ctx context.Context, externalID string) (*Product, error)
	// GetByName returns the first product (lowest internal id) whose name
	// matches exactly.
	GetByName(ctx context.Context, name string) (*Product, error)
}
