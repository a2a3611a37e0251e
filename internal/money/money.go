// Package money provides exact decimal arithmetic for monetary amounts.
// Amounts are shopspring decimals stored with two fractional digits; binary
// floats are never used, so accumulation order cannot change a total.
package money

import "github.com/shopspring/decimal"

// Scale is the number of fractional digits kept for monetary amounts.
const Scale = 2

// Zero returns the zero amount.
func Zero() decimal.Decimal {
	return decimal.Zero
}

// FromString parses a decimal amount from its string form.
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses a decimal amount and panics on malformed input.
// Intended for constants and test fixtures only.
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Sum adds the given amounts exactly.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// SplitEven returns the per-part amount when total is divided into parts
// equal pieces, rounded half away from zero to Scale digits.
//
// The remainder is deliberately not redistributed: every part receives the
// same quotient, so parts*SplitEven(total, parts) may differ from total by a
// few hundredths. Callers that need the original value keep it alongside the
// split (installment rows carry the pre-split total).
func SplitEven(total decimal.Decimal, parts int) decimal.Decimal {
	return total.DivRound(decimal.NewFromInt(int64(parts)), Scale)
}
