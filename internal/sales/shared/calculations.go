// Package shared holds money arithmetic used by catalog, quotes and reports.
package shared

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/genuino/cotizaciones/internal/platform/httpx"
)

// MoneyScale is the number of decimals stored for amounts (NUMERIC(14,2)).
const MoneyScale = 2

// MaxQuantity is the largest quantity the INTEGER column holds.
const MaxQuantity = math.MaxInt32

// MaxAmount is the exclusive upper bound of a NUMERIC(14,2) amount.
var MaxAmount = decimal.New(1, 12)

// LineSubtotal returns quantity × unitPrice without rounding.
func LineSubtotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Sum adds amounts exactly.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// ValidateUnitPrice rejects negative prices and prices the money columns
// cannot store exactly.
func ValidateUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: unit price must not be negative", httpx.ErrValidation)
	}
	return ValidateAmount("unit price", price)
}

// ValidateAmount rejects amounts with more than two decimals or at or above
// MaxAmount.
func ValidateAmount(name string, amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return fmt.Errorf("%w: %s allows at most %d decimals", httpx.ErrValidation, name, MoneyScale)
	}
	if amount.Abs().GreaterThanOrEqual(MaxAmount) {
		return fmt.Errorf("%w: %s must be below %s", httpx.ErrValidation, name, MaxAmount.String())
	}
	return nil
}

// ValidateQuantity accepts positive quantities that fit the INTEGER column.
func ValidateQuantity(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", httpx.ErrValidation)
	}
	if quantity > MaxQuantity {
		return fmt.Errorf("%w: quantity must not exceed %d", httpx.ErrValidation, MaxQuantity)
	}
	return nil
}

// ParseAmount parses a user supplied decimal amount.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: amount required", httpx.ErrValidation)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", httpx.ErrValidation, raw)
	}
	return d, nil
}
