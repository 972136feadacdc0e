// Package core provides money parsing and handling utilities.
//
// This file contains the Amount type used for every monetary value in the
// service. Amounts are signed decimals: positive values are revenues,
// negative values are expenses.
package core

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a signed decimal money value.
//
// It encodes to JSON as a bare number and decodes from either a JSON number
// or a numeric string, so clients sending "12.50" and 12.5 are treated alike.
type Amount struct {
	decimal.Decimal
}

// Bounds on accepted amounts: a float64-sized exponent range and
// decimal128 precision.
const (
	maxAmountExponent = 308
	maxAmountDigits   = 34
)

// ParseAmount converts a decimal string to an Amount.
//
// Leading and trailing whitespace is ignored. Anything that is not a finite
// decimal number (including "NaN" and "Inf") fails with a ValidationError
// on the amount field, as do values beyond ±1e308 or with more than 34
// significant digits.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount(" -99.5") -> -99.5, nil
//	ParseAmount("1e3")    -> 1000, nil
//	ParseAmount("abc")    -> 0, ValidationError
//	ParseAmount("1e400")  -> 0, ValidationError
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, invalidAmount()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, invalidAmount()
	}
	if !inRange(d) {
		return Amount{}, &ValidationError{Field: "amount", Message: "amount is out of range"}
	}
	if d.IsZero() {
		// "0e99999999" keeps its exponent
		d = decimal.Zero
	}
	return Amount{Decimal: d}, nil
}

// inRange checks the significant digits and the power of ten of the leading
// digit without expanding the value.
func inRange(d decimal.Decimal) bool {
	coef := new(big.Int).Abs(d.Coefficient()).String()
	if coef == "0" {
		return true
	}
	digits := strings.TrimRight(coef, "0")
	exp := int64(d.Exponent()) + int64(len(coef)-len(digits))
	if len(digits) > maxAmountDigits {
		return false
	}
	lead := exp + int64(len(digits)) - 1
	return lead <= maxAmountExponent && lead >= -maxAmountExponent
}

// NewAmount builds an Amount from a float. Intended for literals and tests;
// prefer ParseAmount for user input.
func NewAmount(f float64) Amount {
	return Amount{Decimal: decimal.NewFromFloat(f)}
}

// IsRevenue reports whether the amount counts as revenue (strictly positive).
func (a Amount) IsRevenue() bool {
	return a.Decimal.IsPositive()
}

// IsExpense reports whether the amount counts as an expense (strictly negative).
func (a Amount) IsExpense() bool {
	return a.Decimal.IsNegative()
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{Decimal: a.Decimal.Add(b.Decimal)}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return Amount{Decimal: a.Decimal.Sub(b.Decimal)}
}

// Abs returns |a|.
func (a Amount) Abs() Amount {
	return Amount{Decimal: a.Decimal.Abs()}
}

// Float64 returns the amount as a float for charting and display.
// Use the decimal value for any arithmetic.
func (a Amount) Float64() float64 {
	return a.Decimal.InexactFloat64()
}

// MarshalJSON encodes the amount as a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON accepts a JSON number or a string holding a number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return invalidAmount()
		}
	} else if len(data) == 0 || (data[0] != '-' && (data[0] < '0' || data[0] > '9')) {
		// true, false, objects and arrays are not amounts
		return invalidAmount()
	}

	parsed, err := ParseAmount(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func invalidAmount() error {
	return &ValidationError{Field: "amount", Message: "amount must be a number"}
}
