package models

import (
	"database/sql/driver"

	"github.com/shopspring/decimal"
)

// Money is a fixed-point monetary amount in the wallet currency.
// Arithmetic goes through decimal.Decimal; display and storage round
// half-up to two decimal places.
type Money struct {
	d decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{d: d}
}

func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, &ValidationError{Field: "amount", Reason: "invalid amount"}
	}
	return Money{d: d}, nil
}

func MoneyFromFloat(f float64) Money {
	return Money{d: decimal.NewFromFloat(f)}
}

// MoneyFromCents builds a Money from an integer count of minor units.
func MoneyFromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -2)}
}

func ZeroMoney() Money {
	return Money{d: decimal.Zero}
}

func (m Money) Add(o Money) Money      { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money      { return Money{d: m.d.Sub(o.d)} }
func (m Money) LessThan(o Money) bool  { return m.d.Cmp(o.d) < 0 }
func (m Money) Equal(o Money) bool     { return m.d.Cmp(o.d) == 0 }
func (m Money) IsPositive() bool       { return m.d.IsPositive() }
func (m Money) IsNegative() bool       { return m.d.IsNegative() }
func (m Money) Decimal() decimal.Decimal { return m.d }

// Round2 rounds half-up to the currency minor unit.
func (m Money) Round2() Money {
	return Money{d: m.d.Round(2)}
}

func (m Money) String() string {
	return m.d.Round(2).StringFixed(2)
}

// Validate rejects non-positive amounts. Entry amounts are always
// strictly positive; direction is carried by the entry kind.
func (m Money) Validate() error {
	if !m.d.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "amount must be greater than zero"}
	}
	return nil
}

// MarshalJSON emits a plain JSON number, not decimal's quoted default.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.Round(2).StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return &ValidationError{Field: "amount", Reason: "invalid amount"}
	}
	m.d = d
	return nil
}

// Value/Scan let Money travel through database/sql as a numeric column.
func (m Money) Value() (driver.Value, error) {
	return m.d.Round(2).StringFixed(2), nil
}

func (m *Money) Scan(src interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return err
	}
	m.d = d
	return nil
}
