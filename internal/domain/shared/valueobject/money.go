package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code.
type Currency string

// EGP is the only currency tuition is billed in today.
const (
	EGP             Currency = "EGP"
	DefaultCurrency          = EGP
)

// Money pairs an exact decimal amount with a currency. Values are immutable.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoneyEGP wraps a decimal amount in Egyptian pounds.
func NewMoneyEGP(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: EGP}
}

// NewMoneyEGPFromFloat converts a float amount to pounds. The float is
// converted exactly, so callers binding request payloads should prefer
// string amounts where precision matters.
func NewMoneyEGPFromFloat(amount float64) Money {
	return Money{amount: decimal.NewFromFloat(amount), currency: EGP}
}

// NewMoneyEGPFromString parses a decimal string into pounds.
func NewMoneyEGPFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return Money{amount: d, currency: EGP}, nil
}

// ZeroEGP is the zero amount in pounds.
func ZeroEGP() Money {
	return Money{amount: decimal.Zero, currency: EGP}
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive reports whether the amount is above zero.
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// compare orders m against other. Mixing currencies is an error.
func (m Money) compare(other Money) (int, error) {
	if m.currency != other.currency {
		return 0, fmt.Errorf("cannot compare %s against %s", m.currency, other.currency)
	}
	return m.amount.Cmp(other.amount), nil
}

// LessThan reports whether m is below other.
func (m Money) LessThan(other Money) (bool, error) {
	c, err := m.compare(other)
	if err != nil {
		return false, err
	}
	return c < 0, nil
}

// LessThanOrEqual reports whether m does not exceed other.
func (m Money) LessThanOrEqual(other Money) (bool, error) {
	c, err := m.compare(other)
	if err != nil {
		return false, err
	}
	return c <= 0, nil
}

// GreaterThan reports whether m is above other.
func (m Money) GreaterThan(other Money) (bool, error) {
	c, err := m.compare(other)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// GreaterThanOrEqual reports whether m is at least other.
func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	c, err := m.compare(other)
	if err != nil {
		return false, err
	}
	return c >= 0, nil
}

// String renders the amount with two decimal places and the currency code.
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

// StringFixed renders the amount with a fixed number of decimal places.
func (m Money) StringFixed(places int32) string {
	return m.amount.StringFixed(places)
}

// Float64 returns the amount as a float64. Precision may be lost.
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// moneyJSON is the wire shape of a Money value.
type moneyJSON struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

// MarshalJSON renders the amount as a string to keep it exact on the wire.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount.String(), Currency: m.currency})
}

// UnmarshalJSON parses the wire shape. An empty currency is tolerated here
// and normalized by the handlers that bind requests.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = amount
	m.currency = v.Currency
	return nil
}

// Value stores only the amount; the column is a plain numeric.
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan reads a numeric column back. The currency falls back to
// DefaultCurrency when the receiver does not already carry one.
func (m *Money) Scan(value any) error {
	if value == nil {
		m.amount = decimal.Zero
		m.currency = DefaultCurrency
		return nil
	}

	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	m.amount = amount
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}
