package models

import (
	"github.com/shopspring/decimal"
)

// Money is a currency amount with two decimal places. It is stored as a SQL decimal and
// travels over JSON as a fixed-point string ("1500.00").
type Money struct {
	decimal.Decimal
}

// MaxMoney is the largest amount a decimal(10,2) column holds.
var MaxMoney = MustMoney("99999999.99")

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

func MustMoney(s string) Money {
	return NewMoney(decimal.RequireFromString(s))
}

func (m Money) String() string {
	return m.StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}

// Overflows reports whether m does not fit a decimal(10,2) column.
func (m Money) Overflows() bool {
	return m.Abs().GreaterThan(MaxMoney.Decimal)
}

// Mul multiplies by a whole quantity.
func (m Money) Mul(qty int) Money {
	return NewMoney(m.Decimal.Mul(decimal.NewFromInt(int64(qty))))
}

// MinorUnits converts to the smallest currency unit, rounding half away from zero.
func (m Money) MinorUnits() int64 {
	return m.Shift(2).Round(0).IntPart()
}
