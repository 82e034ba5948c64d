package promotions

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	Percentage DiscountType = "PERCENTAGE"
	Fixed      DiscountType = "FIXED"
)

// Reason tells the caller why a supplied code did or did not apply.
type Reason string

const (
	ReasonNone       Reason = "none"
	ReasonNotFound   Reason = "not_found"
	ReasonExpired    Reason = "expired"
	ReasonNotStarted Reason = "not_started"
)

var hundred = decimal.NewFromInt(100)

// Check reports whether now lies inside [StartDate, EndDate], both ends
// inclusive. ReasonNone means active.
func (p Promotion) Check(now time.Time) Reason {
	switch {
	case now.Before(p.StartDate):
		return ReasonNotStarted
	case now.After(p.EndDate):
		return ReasonExpired
	}
	return ReasonNone
}

// Apply discounts total and rounds to whole VND. A result below zero is
// clamped to zero and reported through clamped.
func (p Promotion) Apply(total int64) (discounted int64, clamped bool) {
	t := decimal.NewFromInt(total)
	switch p.DiscountType {
	case Percentage:
		t = t.Sub(t.Mul(p.DiscountValue).Div(hundred))
	case Fixed:
		t = t.Sub(p.DiscountValue)
	}
	t = t.Round(0)
	if t.IsNegative() {
		return 0, true
	}
	return t.IntPart(), false
}
