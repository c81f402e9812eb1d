package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Prices live as integer cents everywhere inside the process. Decimal math
// happens only at the edges: parsing file prices, applying the tax rate,
// rendering receipt amounts.

// ParsePrice converts a decimal price string such as "4.99" into cents.
// Sub-cent precision and negative amounts are rejected.
func ParsePrice(value string) (int, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("parsing price %q: %w", value, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("price %q must not be negative", value)
	}
	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("price %q has sub-cent precision", value)
	}
	return int(shifted.IntPart()), nil
}

// FormatCents renders cents as a dollar amount, e.g. 499 -> "$4.99".
func FormatCents(cents int) string {
	return "$" + decimal.NewFromInt(int64(cents)).Shift(-2).StringFixed(2)
}

// ExtendCents returns the extended price of a line in cents.
func ExtendCents(unitCents, qty int) int {
	return unitCents * qty
}

// TaxCents applies a fractional rate to a subtotal and rounds half away
// from zero to whole cents.
func TaxCents(subtotalCents int, rate decimal.Decimal) int {
	tax := decimal.NewFromInt(int64(subtotalCents)).Mul(rate).Round(0)
	return int(tax.IntPart())
}
