package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Tier is one bracket of the discount schedule. It covers totals in the
// half-open interval [CostFrom, CostTo).
type Tier struct {
	ID         int64
	CostFrom   decimal.Decimal
	CostTo     decimal.Decimal
	PercentOff decimal.Decimal
	CreatedAt  time.Time
}

// Contains reports whether total falls inside the tier's interval.
func (t Tier) Contains(total decimal.Decimal) bool {
	return t.CostFrom.LessThanOrEqual(total) && total.LessThan(t.CostTo)
}

// Result is the outcome of applying the schedule to a total.
//
// Amounts carry full precision; round them only for presentation.
// Payable.Add(Reduced) always equals the input total.
type Result struct {
	Total      decimal.Decimal
	PercentOff decimal.Decimal
	Reduced    decimal.Decimal
	Payable    decimal.Decimal
	// Tier is the matched bracket, nil when no bracket matched.
	Tier *Tier
}

// Repository provides the discount schedule in a stable order.
type Repository interface {
	ListTiers(ctx context.Context) ([]Tier, error)
}

// Resolve applies the first tier containing total. A total outside every
// tier gets zero percent off; that is not an error.
func Resolve(tiers []Tier, total decimal.Decimal) Result {
	res := Result{Total: total, PercentOff: decimal.Zero}
	for i := range tiers {
		if tiers[i].Contains(total) {
			res.Tier = &tiers[i]
			res.PercentOff = tiers[i].PercentOff
			break
		}
	}
	res.Reduced = total.Mul(res.PercentOff).Div(hundred)
	res.Payable = total.Sub(res.Reduced)
	return res
}

// Resolver applies a tenant's stored discount schedule.
type Resolver struct {
	repo Repository
}

// NewResolver creates a Resolver reading tiers from repo.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve loads the schedule and applies it to total.
func (r *Resolver) Resolve(ctx context.Context, total decimal.Decimal) (Result, error) {
	tiers, err := r.repo.ListTiers(ctx)
	if err != nil {
		return Result{}, errors.Wrap(err, "list discount tiers")
	}
	return Resolve(tiers, total), nil
}
