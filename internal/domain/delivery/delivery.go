// Package delivery classifies postal codes into delivery classes.
package delivery

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
)

const filterFPR = 0.01

// ErrNoPostalCode is returned when a product has no registered postal code
// to check deliverability against.
var ErrNoPostalCode = errors.New("product has no registered postal code")

// Zone maps a postal code to a delivery lead time.
type Zone struct {
	PostalCode   string
	LeadTimeDays int
	CreatedAt    time.Time
}

// Status is the delivery class surfaced to clients.
type Status int

const (
	// NotDeliverable means no zone covers the postal code.
	NotDeliverable Status = -1
	// Deliverable means delivery takes more than one day.
	Deliverable Status = 0
	// SameDay means the zone's lead time is exactly one day.
	SameDay Status = 1
)

func (s Status) String() string {
	switch s {
	case SameDay:
		return "SAME_DAY"
	case Deliverable:
		return "DELIVERABLE"
	default:
		return "NOT_DELIVERABLE"
	}
}

// Result is the outcome of a deliverability check.
type Result struct {
	PostalCode   string
	Status       Status
	LeadTimeDays int
}

// Message returns a human-readable description of the result.
func (r Result) Message() string {
	switch r.Status {
	case SameDay:
		return fmt.Sprintf("Same day delivery available for pincode %s", r.PostalCode)
	case Deliverable:
		return fmt.Sprintf("Deliverable to pincode %s in %d days", r.PostalCode, r.LeadTimeDays)
	default:
		return fmt.Sprintf("Not deliverable to pincode %s", r.PostalCode)
	}
}

// Classify maps an optional zone onto a Result for postalCode.
func Classify(postalCode string, zone *Zone) Result {
	if zone == nil {
		return Result{PostalCode: postalCode, Status: NotDeliverable}
	}
	res := Result{PostalCode: postalCode, Status: Deliverable, LeadTimeDays: zone.LeadTimeDays}
	if zone.LeadTimeDays == 1 {
		res.Status = SameDay
	}
	return res
}

// Repository provides read access to the deliverability table.
type Repository interface {
	// FindByPostalCode returns the first zone for the postal code, or nil
	// when none exists.
	FindByPostalCode(ctx context.Context, postalCode string) (*Zone, error)
	ListPostalCodes(ctx context.Context) ([]string, error)
}

// Checker answers deliverability queries.
//
// After Warm, a bloom filter of known postal codes rejects unknown codes
// without touching storage. Zones are only written by seeding, which runs
// before Warm, so the filter never misses a stored code.
type Checker struct {
	repo   Repository
	filter atomic.Pointer[bloom.BloomFilter]
}

// NewChecker creates a Checker over repo. It queries storage for every
// lookup until Warm is called.
func NewChecker(repo Repository) *Checker {
	return &Checker{repo: repo}
}

// Warm loads all postal codes into the negative-lookup filter.
func (c *Checker) Warm(ctx context.Context) (int, error) {
	codes, err := c.repo.ListPostalCodes(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "list postal codes")
	}

	f := bloom.NewWithEstimates(uint(max(len(codes), 1)), filterFPR)
	for _, code := range codes {
		f.AddString(code)
	}
	c.filter.Store(f)
	return len(codes), nil
}

// CheckPostalCode classifies a standalone postal code.
func (c *Checker) CheckPostalCode(ctx context.Context, postalCode string) (Result, error) {
	if f := c.filter.Load(); f != nil && !f.TestString(postalCode) {
		return Classify(postalCode, nil), nil
	}

	zone, err := c.repo.FindByPostalCode(ctx, postalCode)
	if err != nil {
		return Result{}, errors.Wrapf(err, "find zone for %q", postalCode)
	}
	return Classify(postalCode, zone), nil
}
