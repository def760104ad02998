package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in the smallest currency unit (cents).
type Money int64

const minorUnitExp = 2

// MaxAmount is the largest amount accepted from a client, 999999999.99.
const MaxAmount Money = 99_999_999_999

// MoneyFromDecimal converts a major-unit amount (e.g. 9.99) to minor units.
// Amounts with sub-cent precision or beyond MaxAmount are rejected.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	shifted := d.Shift(minorUnitExp)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("%w: amount %s has more than %d decimal places", ErrInvalidInput, d.String(), minorUnitExp)
	}
	if shifted.Abs().GreaterThan(decimal.NewFromInt(int64(MaxAmount))) {
		return 0, fmt.Errorf("%w: amount %s is out of range", ErrInvalidInput, d.String())
	}
	return Money(shifted.IntPart()), nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -minorUnitExp)
}

// Times multiplies a unit price by a quantity.
func (m Money) Times(qty int) Money {
	return m * Money(qty)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(minorUnitExp)
}

// MarshalJSON renders the amount as a JSON number in major units, e.g. 25.00.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or string in major units.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	v, err := MoneyFromDecimal(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
