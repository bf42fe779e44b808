package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// MinorUnitExponent is the number of decimal places held by Money.
const MinorUnitExponent = 2

// Money is an amount in minor currency units (cents). It is never a float.
type Money int64

// MaxLineAmount is the largest debit or credit a single journal line may carry.
// Entry totals and balances are still added with overflow checks.
const MaxLineAmount Money = math.MaxInt64 / 4

// AddMoney returns a+b, or false when the sum does not fit in an int64.
func AddMoney(a, b Money) (Money, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

// Decimal converts m to a decimal in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -MinorUnitExponent)
}

// String formats m in major units with a fixed two-digit fraction, e.g. "15.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(MinorUnitExponent)
}

// Abs returns the absolute value of m.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// MoneyFromDecimal rounds a major-unit decimal half away from zero into minor units.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Shift(MinorUnitExponent).Round(0).IntPart())
}

// MultiplyMoney returns round(m * factor) in minor units.
func MultiplyMoney(m Money, factor decimal.Decimal) Money {
	return Money(decimal.NewFromInt(int64(m)).Mul(factor).Round(0).IntPart())
}

// ProrateMoney returns round(m * part / whole). whole must be nonzero.
func ProrateMoney(m Money, part, whole decimal.Decimal) Money {
	return Money(decimal.NewFromInt(int64(m)).Mul(part).Div(whole).Round(0).IntPart())
}
