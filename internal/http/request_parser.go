package http

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"spendlens/internal/core"
	"spendlens/internal/query"
)

// ParseFilterSpec reads a FilterSpec from query parameters:
// q, category, type, range, start, end, min, max and sort.
// Amount bounds that are empty or do not parse impose no constraint.
func ParseFilterSpec(values url.Values) query.FilterSpec {
	return query.FilterSpec{
		Search:      values.Get("q"),
		Category:    values.Get("category"),
		Kind:        values.Get("type"),
		TimeRange:   query.TimeRange(values.Get("range")),
		CustomStart: values.Get("start"),
		CustomEnd:   values.Get("end"),
		Min:         parseBound(values.Get("min")),
		Max:         parseBound(values.Get("max")),
		SortBy:      query.SortKey(values.Get("sort")),
	}
}

func parseBound(s string) decimal.NullDecimal {
	d, err := core.ParseBound(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
