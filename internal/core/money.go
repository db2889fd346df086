// Package core provides the finance records and their validation.
//
// This file contains functions for parsing user-entered monetary amounts
// into exact decimals.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// amountPlaces is the number of fractional digits kept for entered amounts.
const amountPlaces = 2

// ParseAmount converts a decimal string into a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half-up to two fractional digits. Signs are rejected because direction is
// carried by the transaction kind, never by the amount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("12.345") -> 12.35, nil
//	ParseAmount("-1")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := ParseBound(s)
	if err != nil {
		return decimal.Zero, err
	}
	d = d.Round(amountPlaces)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseBound parses a non-negative decimal such as a filter bound or an
// allocation. Zero is accepted; no rounding is applied.
func ParseBound(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseSigned parses a decimal that may carry a sign, as used by adjustment values.
func ParseSigned(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || strings.ContainsAny(s, "eE") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
