// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and the decimal representation persisted
// in the database.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseSignedAmount parses a spreadsheet amount cell into signed cents.
//
// A leading '+' or '-' is honored, surrounding whitespace and a leading or
// trailing currency symbol (€, $, £) are ignored, and an accounting-style
// parenthesized value "(12.50)" is read as negative. Zero is returned as is;
// rejecting it is the store's job. Exponent forms such as "1e3" are
// accepted and rounded half away from zero to whole cents.
func ParseSignedAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "€$£")
	s = strings.TrimSpace(s)

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	switch {
	case strings.HasPrefix(s, "-"):
		neg = !neg
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	s = strings.TrimSpace(strings.Trim(s, "€$£"))

	cents, err := parseUnsignedCents(s)
	if err != nil {
		return Money{}, ErrInvalidAmountCell
	}
	if neg {
		cents = -cents
	}
	return Money{Cents: cents}, nil
}

func parseUnsignedCents(s string) (int64, error) {
	if s == "" {
		return 0, ErrInvalidAmountCell
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "eE") {
		return parseExponentCents(s)
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmountCell
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return 0, ErrInvalidAmountCell
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmountCell
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmountCell
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmountCell
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmountCell
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// parseExponentCents handles scientific notation. Only plain decimal
// mantissas are accepted, so hex floats, NaN and Inf stay rejected.
func parseExponentCents(s string) (int64, error) {
	for _, r := range s {
		if !unicode.IsDigit(r) && !strings.ContainsRune(".eE+-", r) {
			return 0, ErrInvalidAmountCell
		}
	}
	if !unicode.IsDigit(rune(s[0])) && s[0] != '.' {
		return 0, ErrInvalidAmountCell
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) || v < 0 {
		return 0, ErrInvalidAmountCell
	}
	cents := math.Round(v * 100)
	if cents >= math.MaxInt64 {
		return 0, ErrInvalidAmountCell
	}
	return int64(cents), nil
}

// MoneyFromFloat converts a decimal amount read from the database to cents.
func MoneyFromFloat(v float64) Money {
	return Money{Cents: int64(math.Round(v * 100))}
}

// Float returns the decimal value persisted in the amount column.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount with two decimals and a dot separator, the
// form used in CSV exports.
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	frac := strconv.FormatInt(cents%100, 10)
	if len(frac) == 1 {
		frac = "0" + frac
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + frac
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}
