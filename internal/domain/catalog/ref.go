package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// RefKind enumerates the ways a product can be referenced.
type RefKind uint8

const (
	// RefInternalID selects a product by its storage-assigned id.
	RefInternalID RefKind = iota + 1
	// RefExternalID selects a product by its tenant-facing id.
	RefExternalID
	// RefName selects a product by exact name.
	RefName
)

func (k RefKind) String() string {
	switch k {
	case RefInternalID:
		return "internal_id"
	case RefExternalID:
		return "external_id"
	case RefName:
		return "name"
	default:
		return "unknown"
	}
}

// Ref references exactly one product. Build it with ByInternalID,
// ByExternalID, ByName or ResolveRef.
type Ref struct {
	kind       RefKind
	internalID int64
	value      string
}

// ByInternalID references a product by its internal id.
func ByInternalID(id int64) Ref {
	return Ref{kind: RefInternalID, internalID: id}
}

// ByExternalID references a product by its external id.
func ByExternalID(id string) Ref {
	return Ref{kind: RefExternalID, value: id}
}

// ByName references a product by exact, case-sensitive name.
func ByName(name string) Ref {
	return Ref{kind: RefName, value: name}
}

// Kind reports how the reference selects a product.
func (r Ref) Kind() RefKind { return r.kind }

// InternalID returns the internal id of a RefInternalID reference.
func (r Ref) InternalID() int64 { return r.internalID }

// Value returns the external id or name of the reference.
func (r Ref) Value() string { return r.value }

// IsZero reports whether the reference was never set.
func (r Ref) IsZero() bool { return r.kind == 0 }

func (r Ref) String() string {
	if r.kind == RefInternalID {
		return fmt.Sprintf("%s=%d", r.kind, r.internalID)
	}
	return fmt.Sprintf("%s=%q", r.kind, r.value)
}

// ResolveRef builds a reference from raw request parameters. Empty values
// are treated as absent. When several are present the internal id wins, then
// the external id, then the name.
func ResolveRef(internalID, externalID, name string) (Ref, error) {
	if id := strings.TrimSpace(internalID); id != "" {
		v, err := strconv.ParseInt(id, 10, 64)
		if err != nil || v < 1 {
			return Ref{}, errors.Wrapf(ErrInvalidRequest, "id %q is not a positive integer", internalID)
		}
		return ByInternalID(v), nil
	}
	if externalID != "" {
		return ByExternalID(externalID), nil
	}
	if name != "" {
		return ByName(name), nil
	}
	return Ref{}, errors.Wrap(ErrInvalidRequest, "provide either an id or a name")
}

// Lookup resolves product references against a Repository.
type Lookup struct {
	repo Repository
}

// NewLookup creates a Lookup backed by repo.
func NewLookup(repo Repository) *Lookup {
	return &Lookup{repo: repo}
}

// Find returns the product selected by ref.
func (l *Lookup) Find(ctx context.Context, ref Ref) (*Product, error) {
	switch ref.kind {
	case RefInternalID:
		return l.repo.GetByInternalID(ctx, ref.internalID)
	case RefExternalID:
		return l.repo.GetByExternalID(ctx, ref.value)
	case RefName:
		return l.repo.GetByName(ctx, ref.value)
	default:
		return nil, errors.Wrap(ErrInvalidRequest, "empty product reference")
	}
}
