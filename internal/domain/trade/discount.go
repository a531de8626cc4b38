package trade

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/domain/shared"
)

// DiscountType is how a sale discount value is interpreted
type DiscountType string

const (
	DiscountNone       DiscountType = "none"
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

// IsValid returns true if the discount type is known
func (t DiscountType) IsValid() bool {
	switch t {
	case DiscountNone, DiscountFixed, DiscountPercentage:
		return true
	}
	return false
}

// RoundingMode selects how monetary amounts are rounded
type RoundingMode string

const (
	RoundHalfUp   RoundingMode = "half_up"
	RoundBankers  RoundingMode = "bankers"
	RoundTruncate RoundingMode = "truncate"
)

// IsValid returns true if the rounding mode is known
func (m RoundingMode) IsValid() bool {
	switch m {
	case RoundHalfUp, RoundBankers, RoundTruncate:
		return true
	}
	return false
}

var hundred = decimal.NewFromInt(100)

// DiscountPolicy holds the configurable discount and rounding rules.
type DiscountPolicy struct {
	Places int32
	Mode   RoundingMode
	// MaxPercentage caps percentage discounts, 100 when zero
	MaxPercentage decimal.Decimal
}

// DefaultDiscountPolicy rounds half up to two places
func DefaultDiscountPolicy() DiscountPolicy {
	return DiscountPolicy{Places: 2, Mode: RoundHalfUp, MaxPercentage: hundred}
}

// Validate checks the policy parameters
func (p DiscountPolicy) Validate() error {
	if p.Places < 0 || p.Places > 4 {
		return fmt.Errorf("rounding places must be between 0 and 4, got %d", p.Places)
	}
	if !p.Mode.IsValid() {
		return fmt.Errorf("unknown rounding mode %q", p.Mode)
	}
	if p.MaxPercentage.IsNegative() || p.MaxPercentage.GreaterThan(hundred) {
		return fmt.Errorf("max percentage must be between 0 and 100")
	}
	return nil
}

// Round applies the policy rounding to an amount
func (p DiscountPolicy) Round(d decimal.Decimal) decimal.Decimal {
	switch p.Mode {
	case RoundBankers:
		return d.RoundBank(p.Places)
	case RoundTruncate:
		return d.Truncate(p.Places)
	default:
		return d.Round(p.Places)
	}
}

// Amount computes the discount for a subtotal. The result is rounded and never
// exceeds the subtotal.
func (p DiscountPolicy) Amount(subtotal decimal.Decimal, typ DiscountType, value decimal.Decimal) (decimal.Decimal, error) {
	if typ == "" {
		typ = DiscountNone
	}
	if !typ.IsValid() {
		return decimal.Zero, shared.Invalid(fmt.Sprintf("Unknown discount type %q", typ))
	}
	if value.IsNegative() {
		return decimal.Zero, shared.Invalid("Discount value cannot be negative")
	}

	var amount decimal.Decimal
	switch typ {
	case DiscountNone:
		if !value.IsZero() {
			return decimal.Zero, shared.Invalid("Discount value requires a discount type")
		}
		return decimal.Zero, nil
	case DiscountFixed:
		amount = value
	case DiscountPercentage:
		maxPct := p.MaxPercentage
		if maxPct.IsZero() {
			maxPct = hundred
		}
		if value.GreaterThan(maxPct) {
			return decimal.Zero, shared.Invalid(fmt.Sprintf("Percentage discount cannot exceed %s%%", maxPct.String()))
		}
		amount = subtotal.Mul(value).Div(hundred)
	}

	amount = p.Round(amount)
	if amount.GreaterThan(subtotal) {
		return decimal.Zero, shared.Invalid("Discount cannot exceed the sale subtotal")
	}
	return amount, nil
}
